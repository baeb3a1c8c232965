// Package cli — push.go implements the "slipway push" command.
//
// Push uploads an already-built single-arch image. It runs the same
// authentication precheck as the full pipeline first, so a stale login is
// caught before the upload starts rather than mid-transfer.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/slipway/internal/docker"
	"github.com/mmr-tortoise/slipway/internal/model"
	"github.com/mmr-tortoise/slipway/internal/release"
)

// NewPushCommand creates the "push" cobra command.
func NewPushCommand() *cobra.Command {
	flags := &imageFlags{}

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push a previously built image to the registry",
		Long: `Upload a previously built image to the registry under its tag.

Examples:
  slipway push
  slipway push --tag v1.2.0`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(cmd.Context(), flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// runPush executes the auth precheck followed by the push.
func runPush(ctx context.Context, flags *imageFlags) error {
	cfg, err := loadMergedConfig(flags)
	if err != nil {
		return err
	}

	ref, err := cfg.ImageRef()
	if err != nil {
		return model.WrapCLIError(model.KindConfig, "invalid image configuration", err)
	}

	runner := docker.NewRunner()

	steps := []release.Step{
		release.NewStep(model.StepAuth, func(ctx context.Context) error {
			return docker.CheckAuth(cfg.Registry.Host)
		}),
		release.NewStep(model.StepPush, func(ctx context.Context) error {
			return docker.Push(ctx, runner, ref)
		}),
	}

	if _, err := release.Run(ctx, steps); err != nil {
		return err
	}

	fmt.Printf("Successfully pushed %s\n", ref.String())
	return nil
}
