// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/minicrates/minicrates/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	verbose    bool
	configPath string
	root       string
}

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "minicrates",
		Short: "Generate Cargo packages from Rust source fragments",
		Long: TitleStyle.Render("minicrates") + SubtitleStyle.Render(" - Generate Cargo packages from Rust source fragments") + `

minicrates turns every file matching a glob pattern into its own Cargo
package. Each package gets a deterministic identifier, a Cargo.toml merged
from a base template and the matching Minicrates.toml overrides, and either
an include! shim or a symlink mirror of the fragment's directory.

` + SubtitleStyle.Render("Examples:") + `
  minicrates generate                    Generate packages for **/*.mini.rs
  minicrates generate "examples/*.mini.rs" --strategy mirror
  minicrates generate --cargo            Run from build.rs, printing cargo: directives
  minicrates watch                       Regenerate on every change
  minicrates ids                         Print the identifier table
  minicrates config show                 Show the resolved configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $HOME/.config/minicrates/config.cue)")
	rootCmd.PersistentFlags().StringVar(&flags.root, "root", "", "project root (default is $"+ManifestDirEnv+" or the working directory)")

	rootCmd.AddCommand(newGenerateCommand(app, flags))
	rootCmd.AddCommand(newWatchCommand(app, flags))
	rootCmd.AddCommand(newProbeCommand(app, flags))
	rootCmd.AddCommand(newIDsCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Main runs the CLI against os.Args and returns the process exit code.
func Main() int {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return int(exitErr.Code)
		}
		return int(types.ExitFailure)
	}
	return int(types.ExitSuccess)
}

// Execute runs the CLI and exits the process on failure. Called by main.main().
func Execute() {
	if code := Main(); code != 0 {
		os.Exit(code)
	}
}

// errorHandler leaves ExitErrors alone since App.fail already rendered them.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
