// Package cli — release.go implements the "slipway release" command.
//
// Release is the primary operation: the full build-and-push pipeline that
// replaced the original pair of near-duplicate deploy scripts. The
// single- and multi-arch paths are one procedure differing only in which
// steps get scheduled:
//
//	single-arch:  auth → build → (smoke →) push
//	multi-arch:   auth → builder setup → build-and-push (one invocation)
//
// Step ordering and failure propagation live in internal/release; this
// file only assembles the steps from their real implementations and
// renders the result.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/slipway/internal/compose"
	"github.com/mmr-tortoise/slipway/internal/config"
	"github.com/mmr-tortoise/slipway/internal/docker"
	"github.com/mmr-tortoise/slipway/internal/model"
	"github.com/mmr-tortoise/slipway/internal/release"
)

// releaseFlags holds the flag values for the release command.
type releaseFlags struct {
	buildFlags
	noPush         bool   // --no-push: build only, skip the upload
	smoke          bool   // --smoke: smoke-test the image before pushing
	composeFile    string // --compose-file: compose file to update on success
	composeService string // --compose-service: service whose image is updated
}

// NewReleaseCommand creates the "release" cobra command.
func NewReleaseCommand() *cobra.Command {
	flags := &releaseFlags{}

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Build an image and push it to the registry",
		Long: `Run the full release pipeline: verify registry login, build the image,
optionally smoke-test it, and push it to the registry.

With --platforms, the build targets multiple architectures through a buildx
builder (provisioned automatically) and pushes as part of the same
invocation. Without --platforms, the image is built natively and pushed
separately.

Examples:
  slipway release
  slipway release --tag v1.2.0
  slipway release --platforms linux/amd64,linux/arm64
  slipway release --smoke --compose-file docker-compose.yml --compose-service agent
  slipway release --no-push`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelease(cmd.Context(), flags)
		},
	}

	flags.buildFlags.register(cmd)
	cmd.Flags().BoolVar(&flags.noPush, "no-push", false, "Build only, do not push to the registry")
	cmd.Flags().BoolVar(&flags.smoke, "smoke", false, "Boot the built image and probe its health endpoint before pushing")
	cmd.Flags().StringVar(&flags.composeFile, "compose-file", "", "Compose file whose image reference is updated after a successful push")
	cmd.Flags().StringVar(&flags.composeService, "compose-service", "", "Compose service to update (requires --compose-file)")

	return cmd
}

// runRelease assembles and runs the release pipeline.
func runRelease(ctx context.Context, flags *releaseFlags) error {
	cfg, err := loadBuildConfig(&flags.buildFlags)
	if err != nil {
		return err
	}

	// Compose and smoke flags layer on top of the config file.
	if flags.composeFile != "" || flags.composeService != "" {
		cfg.Compose = &config.ComposeConfig{File: flags.composeFile, Service: flags.composeService}
	}
	if flags.smoke && cfg.Smoke == nil {
		cfg.Smoke = &config.SmokeConfig{}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ref, err := cfg.ImageRef()
	if err != nil {
		return model.WrapCLIError(model.KindConfig, "invalid image configuration", err)
	}
	platforms, err := cfg.PlatformList()
	if err != nil {
		return model.WrapCLIError(model.KindConfig, "invalid platforms configuration", err)
	}

	multiArch := len(platforms) > 0
	push := !flags.noPush
	smokeEnabled := flags.smoke && cfg.Smoke != nil && !multiArch

	runner := docker.NewRunner()
	runner.Dir = cfg.Context

	steps := assembleSteps(cfg, ref, platforms, runner, push, smokeEnabled)

	VerboseLog("Releasing %s (%d pipeline steps)", ref.String(), len(steps))
	runResult, err := release.Run(ctx, steps)
	if err != nil {
		return err
	}

	result := model.ReleaseResult{
		Ref:       ref.String(),
		Platforms: platforms,
		Pushed:    push,
		Steps:     runResult.Completed,
		Duration:  runResult.Duration,
	}

	// Single-arch builds land in the local image store, so enrich the
	// report with the daemon's view of the image. Best effort: the build
	// already succeeded, and a flaky daemon must not fail the release.
	if !multiArch {
		if summary, inspectErr := inspectBuiltImage(ctx, ref); inspectErr == nil {
			result.ImageID = summary.ID
			result.SizeBytes = summary.SizeBytes
		} else {
			VerboseLog("Could not inspect built image: %v", inspectErr)
		}
	}

	// Update the compose file once the image is actually on the registry.
	composeUpdated := ""
	if cfg.Compose != nil && push {
		if err := compose.UpdateFile(cfg.Compose.File, cfg.Compose.Service, ref); err != nil {
			return err
		}
		composeUpdated = cfg.Compose.File
	}

	printReleaseResult(result, composeUpdated)
	return nil
}

// assembleSteps schedules the pipeline steps for the selected path.
func assembleSteps(cfg *config.Config, ref model.ImageRef, platforms []model.Platform, runner docker.Runner, push, smokeEnabled bool) []release.Step {
	buildOpts := docker.BuildOptions{
		Ref:        ref,
		Dockerfile: cfg.Dockerfile,
		Context:    ".",
		BuildArgs:  cfg.BuildArgs,
		Platforms:  platforms,
		Push:       push,
	}

	steps := []release.Step{
		release.NewStep(model.StepAuth, func(ctx context.Context) error {
			return docker.CheckAuth(cfg.Registry.Host)
		}),
	}

	if len(platforms) > 0 {
		// Multi-arch: provision the builder, then build-and-push in one
		// buildx invocation.
		steps = append(steps, release.NewStep(model.StepBuilder, func(ctx context.Context) error {
			return docker.EnsureBuilder(ctx, runner, cfg.Builder)
		}))
		steps = append(steps, release.NewStep(model.StepBuild, func(ctx context.Context) error {
			return docker.Build(ctx, runner, buildOpts)
		}))
		return steps
	}

	// Single-arch: native build, optional smoke test, separate push.
	steps = append(steps, release.NewStep(model.StepBuild, func(ctx context.Context) error {
		return docker.Build(ctx, runner, buildOpts)
	}))

	if smokeEnabled {
		steps = append(steps, release.NewStep(model.StepSmoke, func(ctx context.Context) error {
			return runSmokeTest(ctx, runner, ref, cfg.Smoke)
		}))
	}

	if push {
		steps = append(steps, release.NewStep(model.StepPush, func(ctx context.Context) error {
			return docker.Push(ctx, runner, ref)
		}))
	}

	return steps
}

// inspectBuiltImage fetches the local image's ID and size via the SDK.
func inspectBuiltImage(ctx context.Context, ref model.ImageRef) (model.ImageSummary, error) {
	cli, err := docker.Connect(ctx)
	if err != nil {
		return model.ImageSummary{}, err
	}
	defer func() { _ = cli.Close() }()

	return docker.InspectImage(ctx, cli, ref)
}

// printReleaseResult outputs the release result in text or JSON format.
// The text form prints the fully-qualified image reference exactly once.
func printReleaseResult(result model.ReleaseResult, composeUpdated string) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	if result.Pushed {
		fmt.Printf("Successfully released %s\n", result.Ref)
	} else {
		fmt.Printf("Successfully built %s\n", result.Ref)
	}

	if result.ImageID != "" {
		fmt.Printf("  Image ID: %s\n", result.ImageID)
	}
	if result.SizeBytes > 0 {
		fmt.Printf("  Size:     %s\n", formatSize(result.SizeBytes))
	}
	if len(result.Platforms) > 0 {
		fmt.Printf("  Platforms: %s\n", model.JoinPlatforms(result.Platforms))
	}

	fmt.Println()
	fmt.Println("Next steps:")
	if composeUpdated != "" {
		fmt.Printf("  - compose file %s updated with the new image tag\n", composeUpdated)
	} else if result.Pushed {
		fmt.Println("  - update your compose file to the new image tag")
	}
	if result.Pushed {
		fmt.Println("  - redeploy the service to pick up the new image")
	} else {
		fmt.Println("  - run `slipway push` to upload the image")
	}
}

// formatSize renders a byte count as a human-readable MB/GB figure.
func formatSize(bytes int64) string {
	const mb = 1000 * 1000
	const gb = 1000 * mb
	if bytes >= gb {
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	}
	return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
}
