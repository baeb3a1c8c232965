// Package config loads and validates the slipway project configuration.
//
// The configuration file (slipway.jsonc) replaces the editable variables
// that used to sit at the top of the build-and-push shell scripts. It is
// JSONC (JSON with Comments), so this package uses github.com/tidwall/jsonc
// to strip comments before parsing with the standard encoding/json library.
//
// Precedence is handled by the CLI layer: flags override file values,
// file values override the defaults applied here.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/slipway/internal/model"
)

// Config is the root of the slipway.jsonc document.
//
// Only the image name and registry namespace are mandatory; everything
// else has a sensible default so a minimal config is just:
//
//	{
//	  "registry": { "namespace": "acme" },
//	  "image": "bakaloria-agent"
//	}
type Config struct {
	// Registry identifies where the image is published.
	Registry RegistryConfig `json:"registry"`

	// Image is the repository name (e.g., "bakaloria-agent").
	Image string `json:"image"`

	// Tag is the image tag. Defaults to "latest".
	Tag string `json:"tag,omitempty"`

	// Dockerfile is the path to the Dockerfile, relative to Context.
	// Defaults to "Dockerfile".
	Dockerfile string `json:"dockerfile,omitempty"`

	// Context is the build context directory. Defaults to ".".
	Context string `json:"context,omitempty"`

	// BuildArgs are passed to the build via --build-arg.
	BuildArgs map[string]string `json:"buildArgs,omitempty"`

	// Platforms lists multi-arch build targets (e.g., ["linux/amd64",
	// "linux/arm64"]). Empty means a native single-arch build.
	Platforms []string `json:"platforms,omitempty"`

	// Builder is the buildx builder name used for multi-arch builds.
	// Defaults to "slipway-builder".
	Builder string `json:"builder,omitempty"`

	// Smoke configures the optional post-build smoke test.
	Smoke *SmokeConfig `json:"smoke,omitempty"`

	// Compose configures the optional compose-file update on success.
	Compose *ComposeConfig `json:"compose,omitempty"`
}

// RegistryConfig identifies the target registry and account.
type RegistryConfig struct {
	// Host is the registry host. Empty means Docker Hub.
	Host string `json:"host,omitempty"`

	// Namespace is the account/namespace the image is published under.
	Namespace string `json:"namespace"`
}

// SmokeConfig describes how to boot and probe the freshly built image.
// The defaults mirror the image's own HEALTHCHECK: GET /health on port
// 8000, retried a few times with a short interval.
type SmokeConfig struct {
	// ContainerPort is the port the service listens on inside the
	// container. Defaults to 8000.
	ContainerPort int `json:"containerPort,omitempty"`

	// HealthPath is the HTTP path probed for readiness. Defaults to "/health".
	HealthPath string `json:"healthPath,omitempty"`

	// Retries is the number of probe attempts before giving up. Defaults to 5.
	Retries int `json:"retries,omitempty"`

	// IntervalSeconds is the delay between probe attempts. Defaults to 3.
	IntervalSeconds int `json:"intervalSeconds,omitempty"`

	// TimeoutSeconds is the per-request HTTP timeout. Defaults to 5.
	TimeoutSeconds int `json:"timeoutSeconds,omitempty"`

	// Env passes environment variables to the smoke container, e.g. the
	// API credential the service expects from its deployment platform.
	Env map[string]string `json:"env,omitempty"`
}

// ComposeConfig names the compose file and service whose image reference
// is rewritten after a successful push.
type ComposeConfig struct {
	// File is the path to the compose YAML file.
	File string `json:"file"`

	// Service is the service whose image field is updated.
	Service string `json:"service"`
}

// DefaultBuilderName is the buildx builder created for multi-arch builds
// when the config does not name one.
const DefaultBuilderName = "slipway-builder"

// Find searches for a slipway config file in the given directory.
//
// The search order:
//  1. <dir>/slipway.jsonc (preferred — comments allowed)
//  2. <dir>/slipway.json
//
// Returns the path of the first file found, or "" if neither exists.
// A missing config is not an error: all values can come from flags.
func Find(dir string) string {
	candidates := []string{
		filepath.Join(dir, "slipway.jsonc"),
		filepath.Join(dir, "slipway.json"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads a config file, strips JSONC comments, parses it, and applies
// defaults. Validation is deferred to Validate so the CLI layer can merge
// flag overrides first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(model.KindConfig,
				fmt.Sprintf("config file not found: %s", path), err)
		}
		return nil, model.WrapCLIError(model.KindConfig,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	// Strip // and /* */ comments and trailing commas before parsing.
	cleanJSON := jsonc.ToJSON(data)

	var cfg Config
	if err := json.Unmarshal(cleanJSON, &cfg); err != nil {
		return nil, model.WrapCLIError(model.KindConfig,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero-valued optional fields. It is idempotent and
// safe to call after flag merging.
func (c *Config) ApplyDefaults() {
	if c.Tag == "" {
		c.Tag = "latest"
	}
	if c.Dockerfile == "" {
		c.Dockerfile = "Dockerfile"
	}
	if c.Context == "" {
		c.Context = "."
	}
	if c.Builder == "" {
		c.Builder = DefaultBuilderName
	}
	if c.Smoke != nil {
		if c.Smoke.ContainerPort == 0 {
			c.Smoke.ContainerPort = 8000
		}
		if c.Smoke.HealthPath == "" {
			c.Smoke.HealthPath = "/health"
		}
		if c.Smoke.Retries == 0 {
			c.Smoke.Retries = 5
		}
		if c.Smoke.IntervalSeconds == 0 {
			c.Smoke.IntervalSeconds = 3
		}
		if c.Smoke.TimeoutSeconds == 0 {
			c.Smoke.TimeoutSeconds = 5
		}
	}
}

// Validate checks the merged configuration for completeness and
// well-formedness. Called after flags have been applied.
func (c *Config) Validate() error {
	if _, err := c.ImageRef(); err != nil {
		return model.WrapCLIError(model.KindConfig, "invalid image configuration", err)
	}
	if _, err := c.PlatformList(); err != nil {
		return model.WrapCLIError(model.KindConfig, "invalid platforms configuration", err)
	}
	if c.Compose != nil {
		if c.Compose.File == "" || c.Compose.Service == "" {
			return model.NewCLIError(model.KindConfig,
				"compose configuration requires both file and service")
		}
	}
	return nil
}

// ImageRef builds the fully-qualified image reference from the registry
// identity, image name, and tag.
func (c *Config) ImageRef() (model.ImageRef, error) {
	ref := model.ImageRef{
		Host:      c.Registry.Host,
		Namespace: c.Registry.Namespace,
		Name:      c.Image,
		Tag:       c.Tag,
	}
	if err := ref.Validate(); err != nil {
		return model.ImageRef{}, err
	}
	return ref, nil
}

// PlatformList parses and validates the configured platforms.
func (c *Config) PlatformList() ([]model.Platform, error) {
	var platforms []model.Platform
	for _, s := range c.Platforms {
		p := model.Platform(s)
		if err := p.Validate(); err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}
