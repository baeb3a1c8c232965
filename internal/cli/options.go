// Package cli — options.go holds the flag-to-config merging shared by the
// release, build, and push commands.
//
// Precedence: flags override the config file, the config file overrides
// defaults. The config file is optional — an operator can drive everything
// from flags — but the merged result must always yield a valid image
// reference before any pipeline step runs.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/slipway/internal/config"
	"github.com/mmr-tortoise/slipway/internal/model"
)

// imageFlags holds the flags common to every command that names an image.
type imageFlags struct {
	configPath string // --config: explicit config file path
	registry   string // --registry: registry host
	namespace  string // --namespace: registry identity (account/namespace)
	image      string // --image: image repository name
	tag        string // --tag: image tag
}

// register binds the common image flags onto a command.
func (f *imageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Config file path (default: ./slipway.jsonc)")
	cmd.Flags().StringVar(&f.registry, "registry", "", "Registry host (default: Docker Hub)")
	cmd.Flags().StringVar(&f.namespace, "namespace", "", "Registry identity the image is published under")
	cmd.Flags().StringVar(&f.image, "image", "", "Image repository name")
	cmd.Flags().StringVar(&f.tag, "tag", "", "Image tag (default: latest)")
}

// buildFlags holds the build-step flags layered on top of imageFlags.
type buildFlags struct {
	imageFlags
	platforms  string   // --platforms: comma-separated multi-arch targets
	dockerfile string   // --dockerfile: Dockerfile path
	context    string   // --context: build context directory
	buildArgs  []string // --build-arg: KEY=value pairs, repeatable
	builder    string   // --builder: buildx builder name
}

// register binds the build flags onto a command.
func (f *buildFlags) register(cmd *cobra.Command) {
	f.imageFlags.register(cmd)
	cmd.Flags().StringVar(&f.platforms, "platforms", "", "Comma-separated target platforms (e.g., linux/amd64,linux/arm64)")
	cmd.Flags().StringVar(&f.dockerfile, "dockerfile", "", "Dockerfile path (default: Dockerfile)")
	cmd.Flags().StringVar(&f.context, "context", "", "Build context directory (default: .)")
	cmd.Flags().StringArrayVar(&f.buildArgs, "build-arg", nil, "Build argument as KEY=value (repeatable)")
	cmd.Flags().StringVar(&f.builder, "builder", "", "Buildx builder name for multi-arch builds")
}

// loadMergedConfig loads the config file (explicit path, or discovery in
// the working directory), applies the common flag overrides, and returns
// the validated result.
func loadMergedConfig(f *imageFlags) (*config.Config, error) {
	cfg, err := loadConfigFile(f.configPath)
	if err != nil {
		return nil, err
	}

	// Flags win over file values.
	if f.registry != "" {
		cfg.Registry.Host = f.registry
	}
	if f.namespace != "" {
		cfg.Registry.Namespace = f.namespace
	}
	if f.image != "" {
		cfg.Image = f.image
	}
	if f.tag != "" {
		cfg.Tag = f.tag
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadBuildConfig extends loadMergedConfig with the build-flag overrides.
func loadBuildConfig(f *buildFlags) (*config.Config, error) {
	cfg, err := loadConfigFile(f.configPath)
	if err != nil {
		return nil, err
	}

	if f.registry != "" {
		cfg.Registry.Host = f.registry
	}
	if f.namespace != "" {
		cfg.Registry.Namespace = f.namespace
	}
	if f.image != "" {
		cfg.Image = f.image
	}
	if f.tag != "" {
		cfg.Tag = f.tag
	}
	if f.dockerfile != "" {
		cfg.Dockerfile = f.dockerfile
	}
	if f.context != "" {
		cfg.Context = f.context
	}
	if f.builder != "" {
		cfg.Builder = f.builder
	}
	if f.platforms != "" {
		platforms, err := model.ParsePlatforms(f.platforms)
		if err != nil {
			return nil, model.WrapCLIError(model.KindConfig, "invalid --platforms value", err)
		}
		cfg.Platforms = nil
		for _, p := range platforms {
			cfg.Platforms = append(cfg.Platforms, string(p))
		}
	}
	if len(f.buildArgs) > 0 {
		if cfg.BuildArgs == nil {
			cfg.BuildArgs = make(map[string]string)
		}
		for _, pair := range f.buildArgs {
			key, value, err := splitBuildArg(pair)
			if err != nil {
				return nil, err
			}
			cfg.BuildArgs[key] = value
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigFile loads the named config file, or discovers one in the
// working directory. A missing discovered file yields an empty config so
// that flags alone can drive a run; a missing explicit --config path is
// an error, since the operator asked for that file.
func loadConfigFile(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, model.WrapCLIError(model.KindGeneral, "failed to get current directory", err)
	}

	if found := config.Find(cwd); found != "" {
		VerboseLog("Using config file: %s", found)
		return config.Load(found)
	}

	VerboseLog("No config file found, using flags and defaults")
	return &config.Config{}, nil
}

// splitBuildArg parses a --build-arg KEY=value pair.
func splitBuildArg(pair string) (string, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	if !ok || key == "" {
		return "", "", model.NewCLIError(model.KindConfig,
			fmt.Sprintf("invalid --build-arg %q: expected KEY=value", pair))
	}
	return key, value, nil
}
