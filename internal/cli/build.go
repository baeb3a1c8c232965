// Package cli — build.go implements the "slipway build" command.
//
// Build runs the pipeline up to and including the build step, without
// pushing. Useful for verifying the image locally before a release, or in
// CI stages that separate build from publish. Multi-arch builds without a
// push land only in the builder's cache — buildx has nowhere else to put
// a foreign-platform image — so the command warns about that.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/slipway/internal/docker"
	"github.com/mmr-tortoise/slipway/internal/model"
	"github.com/mmr-tortoise/slipway/internal/release"
)

// NewBuildCommand creates the "build" cobra command.
func NewBuildCommand() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the image without pushing",
		Long: `Build the container image locally without uploading it.

Examples:
  slipway build
  slipway build --tag v1.2.0
  slipway build --platforms linux/amd64,linux/arm64`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// runBuild executes the build-only pipeline: builder setup when targeting
// multiple platforms, then the build itself. No auth precheck — nothing
// is uploaded.
func runBuild(ctx context.Context, flags *buildFlags) error {
	cfg, err := loadBuildConfig(flags)
	if err != nil {
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

	runner := docker.NewRunner()
	runner.Dir = cfg.Context

	var steps []release.Step
	if len(platforms) > 0 {
		steps = append(steps, release.NewStep(model.StepBuilder, func(ctx context.Context) error {
			return docker.EnsureBuilder(ctx, runner, cfg.Builder)
		}))
	}
	steps = append(steps, release.NewStep(model.StepBuild, func(ctx context.Context) error {
		return docker.Build(ctx, runner, docker.BuildOptions{
			Ref:        ref,
			Dockerfile: cfg.Dockerfile,
			Context:    ".",
			BuildArgs:  cfg.BuildArgs,
			Platforms:  platforms,
			// Build-only never pushes, even for multi-arch.
			Push: false,
		})
	}))

	runResult, err := release.Run(ctx, steps)
	if err != nil {
		return err
	}

	printReleaseResult(model.ReleaseResult{
		Ref:       ref.String(),
		Platforms: platforms,
		Pushed:    false,
		Steps:     runResult.Completed,
		Duration:  runResult.Duration,
	}, "")

	if len(platforms) > 0 {
		fmt.Println()
		fmt.Println("Note: multi-arch build results stay in the builder cache until pushed.")
	}
	return nil
}
