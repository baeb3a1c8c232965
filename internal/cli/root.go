// Package cli implements the cobra-based CLI commands for slipway.
//
// Each subcommand (release, build, push, builder, smoke) is defined in its
// own file within this package. This file defines the root command that
// serves as the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/slipway/internal/model"
)

// Global flag variables shared across all subcommands. These are bound to
// cobra persistent flags on the root command, which makes them available
// to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When true, all output uses structured JSON for machine consumption.
	jsonOutput bool

	// verbose enables detailed logging output for debugging.
	// When true, step-by-step information is printed to stderr.
	verbose bool
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package for --version output.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself does not perform any action — it only provides
// help text and global flags. Actual functionality is provided by the
// subcommands (release, build, push, builder, smoke).
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "slipway",
		Short: "Build and release container images",
		Long: `slipway builds a container image and pushes it to a registry as one
sequential pipeline: authentication precheck, builder provisioning (for
multi-arch builds), build, optional smoke test, push, and a success report.

Configuration lives in slipway.jsonc at the project root; every value can
also be supplied or overridden with flags.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	// PersistentFlags are inherited by all subcommands.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Register subcommands. Each is defined in its own file and returns
	// a *cobra.Command.
	rootCmd.AddCommand(NewReleaseCommand())
	rootCmd.AddCommand(NewBuildCommand())
	rootCmd.AddCommand(NewPushCommand())
	rootCmd.AddCommand(NewBuilderCommand())
	rootCmd.AddCommand(NewSmokeCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes. This is the main
// entry point called from main.go.
//
// The exit-code contract is binary: 0 on success, 1 on any detected
// failure (missing auth, build failure, push failure, anything else).
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.ExitCode()))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitFailure))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode, because stdout is
		// reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
