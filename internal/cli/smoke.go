// Package cli — smoke.go implements the "slipway smoke" command and the
// smoke step used by the release pipeline.
//
// A smoke test boots the built image on a free host port, probes its
// health endpoint on a bounded retry schedule, and tears the container
// down again. The probe mirrors the image's own HEALTHCHECK, so a passing
// smoke test means the pushed image will come up healthy in deployment.
//
// Smoke containers carry slipway.* labels; --cleanup finds and removes
// leftovers from interrupted runs via those labels.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/slipway/internal/config"
	"github.com/mmr-tortoise/slipway/internal/docker"
	"github.com/mmr-tortoise/slipway/internal/model"
	"github.com/mmr-tortoise/slipway/internal/smoke"
)

// smokeFlags holds the flag values for the smoke command.
type smokeFlags struct {
	imageFlags
	cleanup bool // --cleanup: remove leftover smoke containers instead of testing
}

// NewSmokeCommand creates the "smoke" cobra command.
func NewSmokeCommand() *cobra.Command {
	flags := &smokeFlags{}

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Boot the built image and probe its health endpoint",
		Long: `Run the built image in a temporary container, probe its health endpoint
until it answers (or the retry schedule is exhausted), then remove the
container.

Examples:
  slipway smoke
  slipway smoke --tag v1.2.0
  slipway smoke --cleanup`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.cleanup {
				return runSmokeCleanup(cmd.Context())
			}
			return runSmokeCommand(cmd.Context(), flags)
		},
	}

	flags.imageFlags.register(cmd)
	cmd.Flags().BoolVar(&flags.cleanup, "cleanup", false, "Remove leftover smoke containers from interrupted runs")

	return cmd
}

// runSmokeCommand smoke-tests the configured image.
func runSmokeCommand(ctx context.Context, flags *smokeFlags) error {
	cfg, err := loadMergedConfig(&flags.imageFlags)
	if err != nil {
		return err
	}
	if cfg.Smoke == nil {
		cfg.Smoke = &config.SmokeConfig{}
		cfg.ApplyDefaults()
	}

	ref, err := cfg.ImageRef()
	if err != nil {
		return model.WrapCLIError(model.KindConfig, "invalid image configuration", err)
	}

	runner := docker.NewRunner()
	if err := runSmokeTest(ctx, runner, ref, cfg.Smoke); err != nil {
		return err
	}

	fmt.Printf("Smoke test passed for %s\n", ref.String())
	return nil
}

// runSmokeTest boots the image, probes its health endpoint, and tears the
// container down. Shared by the smoke command and the release pipeline's
// smoke step.
func runSmokeTest(ctx context.Context, runner docker.Runner, ref model.ImageRef, smokeCfg *config.SmokeConfig) error {
	hostPort, err := smoke.FreeHostPort()
	if err != nil {
		return model.WrapCLIError(model.KindSmoke, "could not allocate a host port for the smoke container", err)
	}

	VerboseLog("Starting smoke container from %s on host port %d", ref.String(), hostPort)
	containerID, err := docker.RunSmokeContainer(ctx, runner, docker.SmokeRunOptions{
		Ref:           ref,
		HostPort:      hostPort,
		ContainerPort: smokeCfg.ContainerPort,
		Env:           smokeCfg.Env,
		Labels:        docker.BuildSmokeLabels(ref, time.Now()),
	})
	if err != nil {
		return err
	}

	// Teardown runs regardless of the probe outcome. Failures here are
	// logged, not returned — a passed probe with a sluggish teardown is
	// still a passed smoke test, and --cleanup can collect stragglers.
	defer func() {
		teardownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		teardownSmokeContainer(teardownCtx, containerID)
	}()

	sched := smoke.Schedule{
		Retries:  smokeCfg.Retries,
		Interval: time.Duration(smokeCfg.IntervalSeconds) * time.Second,
		Timeout:  time.Duration(smokeCfg.TimeoutSeconds) * time.Second,
	}
	baseURL := fmt.Sprintf("http://localhost:%d", hostPort)

	VerboseLog("Probing %s%s (%d attempts)", baseURL, smokeCfg.HealthPath, sched.Retries)
	return smoke.Probe(ctx, baseURL, smokeCfg.HealthPath, sched)
}

// teardownSmokeContainer stops and removes the smoke container,
// best effort.
func teardownSmokeContainer(ctx context.Context, containerID string) {
	cli, err := docker.Connect(ctx)
	if err != nil {
		VerboseLog("Smoke teardown: %v", err)
		return
	}
	defer func() { _ = cli.Close() }()

	if err := docker.StopContainer(ctx, cli, containerID); err != nil {
		VerboseLog("Smoke teardown: %v", err)
	}
	if err := docker.RemoveContainer(ctx, cli, containerID, true); err != nil {
		VerboseLog("Smoke teardown: %v", err)
	}
}

// runSmokeCleanup removes leftover smoke containers found via labels.
func runSmokeCleanup(ctx context.Context) error {
	cli, err := docker.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	containers, err := docker.ListSmokeContainers(ctx, cli)
	if err != nil {
		return err
	}
	if len(containers) == 0 {
		fmt.Println("No leftover smoke containers found")
		return nil
	}

	for _, c := range containers {
		VerboseLog("Removing smoke container %s (%s, image %s)",
			c.ContainerID, c.Status, c.Labels[docker.LabelImage])
		if err := docker.RemoveContainer(ctx, cli, c.ContainerID, true); err != nil {
			return err
		}
	}

	fmt.Printf("Removed %d leftover smoke container(s)\n", len(containers))
	return nil
}
