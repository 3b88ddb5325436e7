// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/minicrates/minicrates/internal/synth"
	"github.com/minicrates/minicrates/pkg/crateids"
	"github.com/minicrates/minicrates/pkg/types"

	"github.com/spf13/cobra"
)

func newIDsCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	idsCmd := &cobra.Command{
		Use:   "ids [pattern]",
		Short: "Print the fragment identifier table as JSON",
		Long: `Print the identifier table a generate run would export, keyed by the
fragment path relative to the project root. Nothing is written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIDs(cmd, app, rootFlags, args)
		},
	}

	idsCmd.AddCommand(&cobra.Command{
		Use:   "decode",
		Short: "Decode the table exported in $" + crateids.EnvVar,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIDsDecode(cmd, app, rootFlags)
		},
	})

	return idsCmd
}

func runIDs(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, args []string) error {
	s, err := app.newSession(cmd.Context(), rootFlags)
	if err != nil {
		return app.fail(cmd, defaultIssueStyle, rootFlags.verbose, "load configuration", err)
	}

	opts := s.cfg.EngineOptions(s.root)
	if len(args) > 0 {
		opts.Pattern = types.GlobPattern(args[0])
	}
	opts.Logger = s.logger

	table, err := synth.New(opts).Identify()
	if err != nil {
		return app.failSession(cmd, s, "compute identifiers", err)
	}
	encoded, err := crateids.Encode(table)
	if err != nil {
		return app.failSession(cmd, s, "encode identifiers", err)
	}
	fmt.Fprintln(app.stdout, encoded)
	return nil
}

func runIDsDecode(cmd *cobra.Command, app *App, rootFlags *rootFlagValues) error {
	registry := crateids.NewRegistry(func() (string, error) {
		if v := app.getenv(crateids.EnvVar); v != "" {
			return v, nil
		}
		return "", crateids.ErrNotSet
	})

	table, err := registry.Table()
	if err != nil {
		return app.fail(cmd, defaultIssueStyle, rootFlags.verbose, "decode $"+crateids.EnvVar, err)
	}
	for _, key := range slices.Sorted(maps.Keys(table)) {
		fmt.Fprintf(app.stdout, "%s %s\n", CmdStyle.Render(key), VerboseStyle.Render(fmt.Sprint(table[key])))
	}
	return nil
}
