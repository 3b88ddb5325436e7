// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/minicrates/minicrates/internal/issue"
	"github.com/minicrates/minicrates/internal/synth"
	"github.com/minicrates/minicrates/pkg/crateids"
	"github.com/minicrates/minicrates/pkg/fspath"
	"github.com/minicrates/minicrates/pkg/types"

	"github.com/spf13/cobra"
)

// nothingToBuild is printed when the pattern matches no fragment.
const nothingToBuild = "Nothing to build."

// generateFlagValues are the flags shared by generate and watch.
type generateFlagValues struct {
	strategy  string
	outputDir string
	cargo     bool
}

func newGenerateCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &generateFlagValues{}

	cmd := &cobra.Command{
		Use:   "generate [pattern]",
		Short: "Generate one package per matching fragment",
		Long: `Generate one Cargo package per fragment matching the pattern.

The pattern is relative to the project root and defaults to the configured
pattern (**/*.mini.rs). With --cargo the command prints cargo: directives so
it can run from a build script:

  // build.rs
  std::process::Command::new("minicrates").args(["generate", "--cargo"])`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, app, rootFlags, flags, args)
		},
	}
	addGenerateFlags(cmd, flags)
	cmd.Flags().BoolVar(&flags.cargo, "cargo", false, "print cargo: build-script directives")

	return cmd
}

func addGenerateFlags(cmd *cobra.Command, flags *generateFlagValues) {
	cmd.Flags().StringVar(&flags.strategy, "strategy", "", "materialization strategy: shim or mirror")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "generated-packages directory, relative to the root")
}

func runGenerate(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *generateFlagValues, args []string) error {
	s, err := app.newSession(cmd.Context(), rootFlags)
	if err != nil {
		return app.fail(cmd, defaultIssueStyle, rootFlags.verbose, "load configuration", err)
	}

	opts := app.engineOptions(s, flags, args)
	res, err := synth.New(opts).Run(cmd.Context())
	if err != nil {
		return app.failSession(cmd, s, "generate packages", err)
	}

	if flags.cargo {
		return writeCargoDirectives(app.stdout, res)
	}
	if res.Empty {
		return nil
	}
	printGenerateSummary(app.stdout, res)
	if !res.Workspace.Registered {
		if rendered, renderErr := issue.Get(issue.WorkspaceNotRegisteredId).Render(s.issueStyle()); renderErr == nil {
			fmt.Fprint(app.stderr, rendered)
		}
	}
	return nil
}

// engineOptions layers the positional pattern and flags over the configuration.
func (a *App) engineOptions(s *session, flags *generateFlagValues, args []string) synth.Options {
	opts := s.cfg.EngineOptions(s.root)
	if len(args) > 0 {
		opts.Pattern = types.GlobPattern(args[0])
	}
	if flags.strategy != "" {
		opts.Strategy = types.Strategy(flags.strategy)
	}
	if flags.outputDir != "" {
		opts.OutputDir = flags.outputDir
	}
	opts.Logger = s.logger
	opts.Linker = a.Linker
	opts.OnEmpty = func() {
		if flags.cargo {
			fmt.Fprintf(a.stdout, "cargo:warning=%s\n", nothingToBuild)
			return
		}
		fmt.Fprintln(a.stdout, WarningStyle.Render(nothingToBuild))
	}
	return opts
}

// writeCargoDirectives prints the build-script protocol lines for res.
func writeCargoDirectives(w io.Writer, res *synth.Result) error {
	if res.Empty {
		return nil
	}

	fmt.Fprintf(w, "cargo:rerun-if-changed=%s\n", res.OverrideFile)
	for _, frag := range res.Fragments {
		fmt.Fprintf(w, "cargo:rerun-if-changed=%s\n", frag.Path)
	}
	if !res.Workspace.Registered {
		fmt.Fprintf(w, "cargo:warning=%s is not a member of any enclosing Cargo workspace; add it to [workspace] members\n", res.OutputDir)
	}

	directive, err := crateids.CargoDirective(res.Crates)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, directive)
	return nil
}

func printGenerateSummary(w io.Writer, res *synth.Result) {
	noun := "packages"
	if len(res.Packages) == 1 {
		noun = "package"
	}
	fmt.Fprintf(w, "%s Generated %d %s in %s\n",
		SuccessStyle.Render("✓"), len(res.Packages), noun, CmdStyle.Render(res.OutputDir.String()))

	for _, pkg := range res.Packages {
		fmt.Fprintf(w, "  %s → %s %s\n",
			displayPath(res.Root, pkg.Fragment.Path),
			displayPath(res.Root, pkg.Dir),
			VerboseStyle.Render("("+pkg.ID.String()+")"))
	}
}

// displayPath shows p relative to root when possible.
func displayPath(root, p types.FilesystemPath) string {
	rel, err := fspath.Rel(root, p)
	if err != nil {
		return p.String()
	}
	return rel.Slash()
}
