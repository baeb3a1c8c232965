// Package cli — builder.go implements the "slipway builder" command.
//
// Builder provisions the cross-platform buildx builder used by multi-arch
// releases. The release pipeline does this automatically; the standalone
// command exists for pre-provisioning in CI images and for checking what
// state the builder is in.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/slipway/internal/config"
	"github.com/mmr-tortoise/slipway/internal/docker"
)

// builderFlags holds the flag values for the builder command.
type builderFlags struct {
	configPath string // --config: explicit config file path
	name       string // --name: builder name override
}

// NewBuilderCommand creates the "builder" cobra command.
func NewBuilderCommand() *cobra.Command {
	flags := &builderFlags{}

	cmd := &cobra.Command{
		Use:   "builder",
		Short: "Provision the cross-platform build context",
		Long: `Ensure the buildx builder used for multi-arch builds exists and is active,
creating it if absent. Safe to run repeatedly.

Examples:
  slipway builder
  slipway builder --name ci-builder`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuilder(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "Config file path (default: ./slipway.jsonc)")
	cmd.Flags().StringVar(&flags.name, "name", "", "Builder name (default: from config, then \"slipway-builder\")")

	return cmd
}

// runBuilder resolves the builder name and ensures it exists.
func runBuilder(ctx context.Context, flags *builderFlags) error {
	name := flags.name
	if name == "" {
		cfg, err := loadConfigFile(flags.configPath)
		if err != nil {
			return err
		}
		cfg.ApplyDefaults()
		name = cfg.Builder
	}
	if name == "" {
		name = config.DefaultBuilderName
	}

	runner := docker.NewRunner()
	if err := docker.EnsureBuilder(ctx, runner, name); err != nil {
		return err
	}

	fmt.Printf("Builder %q is ready and active\n", name)
	return nil
}
