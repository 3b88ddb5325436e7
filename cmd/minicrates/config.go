// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/minicrates/minicrates/internal/config"
	"github.com/minicrates/minicrates/pkg/fspath"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `minicrates config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage minicrates configuration",
		Long: `Manage minicrates configuration.

Configuration is read from the first of:
  - the file given with --config
  - Linux: ~/.config/minicrates/config.cue
    macOS: ~/Library/Application Support/minicrates/config.cue
    Windows: %APPDATA%\minicrates\config.cue
  - minicrates.cue in the project root

MINICRATES_<KEY> environment variables override file values, for example
MINICRATES_OUTPUT_DIR or MINICRATES_WORKSPACE_MAX_HOPS.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), rootFlags)
			if err != nil {
				return app.fail(cmd, defaultIssueStyle, rootFlags.verbose, "load configuration", err)
			}
			path, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: rootFlags.configPath, ProjectDir: string(s.root)})
			if err != nil {
				return app.failSession(cmd, s, "resolve configuration path", err)
			}
			showConfig(app.stdout, s.cfg, path)
			return nil
		},
	})

	var initDir string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig(initDir)
			if err != nil {
				return app.fail(cmd, defaultIssueStyle, rootFlags.verbose, "create configuration", err)
			}
			fmt.Fprintf(app.stdout, "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&initDir, "dir", "", "directory to create config.cue in (default is the user config directory)")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := fspath.Abs(app.projectRoot(rootFlags.root))
			if err != nil {
				return app.fail(cmd, defaultIssueStyle, rootFlags.verbose, "resolve project root", err)
			}
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return app.fail(cmd, defaultIssueStyle, rootFlags.verbose, "resolve configuration directory", err)
			}
			path, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: rootFlags.configPath, ProjectDir: string(root)})
			if err != nil {
				return app.fail(cmd, defaultIssueStyle, rootFlags.verbose, "resolve configuration path", err)
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			if path == "" {
				path = "(none, using defaults)"
			}
			fmt.Fprintf(app.stdout, "Config file: %s\n", path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the resolved configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), rootFlags)
			if err != nil {
				return app.fail(cmd, defaultIssueStyle, rootFlags.verbose, "load configuration", err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(s.cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, cfg *config.Config, path string) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path == "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	}
	fmt.Fprintln(w)

	row := func(indent, key string, value any) {
		fmt.Fprintf(w, "%s%s: %s\n", indent, keyStyle.Render(key), valueStyle.Render(fmt.Sprint(value)))
	}
	row("", "pattern", cfg.Pattern)
	row("", "output_dir", cfg.OutputDir)
	row("", "fragment_suffix", cfg.FragmentSuffix)
	row("", "strategy", cfg.Strategy)
	row("", "override_file", cfg.OverrideFile)
	row("", "package_prefix", cfg.PackagePrefix)
	row("", "crate_types", strings.Join(cfg.CrateTypes, ", "))
	row("", "source_extensions", strings.Join(cfg.SourceExtensions, ", "))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("workspace"))
	row("  ", "manifest", cfg.Workspace.Manifest)
	row("  ", "max_hops", cfg.Workspace.MaxHops)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	row("  ", "color_scheme", cfg.UI.ColorScheme)
	row("  ", "verbose", cfg.UI.Verbose)
}
