// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/minicrates/minicrates/internal/issue"
	"github.com/minicrates/minicrates/internal/synth"
	"github.com/minicrates/minicrates/internal/workspace"
	"github.com/minicrates/minicrates/pkg/fspath"
	"github.com/minicrates/minicrates/pkg/types"

	"github.com/spf13/cobra"
)

func newProbeCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check whether a Cargo workspace lists the generated packages",
		Long: `Search the project root and its ancestors for a Cargo workspace whose
members include the generated-packages directory. Glob members are checked
against the packages already present in that directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, app, rootFlags, outputDir)
		},
	}
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "generated-packages directory, relative to the root")

	return cmd
}

func runProbe(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, outputDir string) error {
	s, err := app.newSession(cmd.Context(), rootFlags)
	if err != nil {
		return app.fail(cmd, defaultIssueStyle, rootFlags.verbose, "load configuration", err)
	}

	member := outputDir
	if member == "" {
		member = s.cfg.OutputDir
	}
	if member == "" {
		member = synth.DefaultOutputDir
	}
	packages, err := existingPackages(fspath.JoinStr(s.root, filepath.FromSlash(member)))
	if err != nil {
		return app.failSession(cmd, s, "list generated packages", err)
	}

	res, err := workspace.Probe(s.root, workspace.Options{
		Manifest: s.cfg.Workspace.Manifest,
		Member:   member,
		MaxHops:  s.cfg.Workspace.MaxHops,
		Packages: packages,
	})
	if err != nil {
		return app.failSession(cmd, s, "probe workspace", err)
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Workspace probe"))
	for _, dir := range res.Visited {
		fmt.Fprintf(app.stdout, "  %s %s\n", SubtitleStyle.Render("searched"), dir)
	}
	if res.Registered {
		fmt.Fprintf(app.stdout, "%s %s is listed by %s (%s)\n",
			SuccessStyle.Render("✓"), CmdStyle.Render(member), res.Manifest, CmdStyle.Render(res.Entry))
		return nil
	}

	fmt.Fprintf(app.stdout, "%s %s is not listed by any workspace\n", WarningStyle.Render("!"), CmdStyle.Render(member))
	if rendered, renderErr := issue.Get(issue.WorkspaceNotRegisteredId).Render(s.issueStyle()); renderErr == nil {
		fmt.Fprint(app.stderr, rendered)
	}
	return nil
}

// existingPackages lists the package directories under outDir. A missing
// directory has none.
func existingPackages(outDir types.FilesystemPath) ([]string, error) {
	entries, err := os.ReadDir(string(outDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
