// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/minicrates/minicrates/internal/config"
	"github.com/minicrates/minicrates/internal/overrides"
	"github.com/minicrates/minicrates/internal/synth"
	"github.com/minicrates/minicrates/internal/watch"

	"github.com/spf13/cobra"
)

func newWatchCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &generateFlagValues{}
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [pattern]",
		Short: "Generate packages and regenerate them on every change",
		Long: `Generate packages once, then regenerate whenever a matching fragment or
the override file changes. The generated-packages directory is never
watched. Press Ctrl+C to stop.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, app, rootFlags, flags, debounce, args)
		},
	}
	addGenerateFlags(cmd, flags)
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before regenerating (default 300ms)")

	return cmd
}

func runWatch(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *generateFlagValues, debounce time.Duration, args []string) error {
	ctx := cmd.Context()
	s, err := app.newSession(ctx, rootFlags)
	if err != nil {
		return app.fail(cmd, defaultIssueStyle, rootFlags.verbose, "load configuration", err)
	}

	opts := app.engineOptions(s, flags, args)
	generate := func(ctx context.Context) error {
		res, runErr := synth.New(opts).Run(ctx)
		if runErr != nil {
			return runErr
		}
		if !res.Empty {
			printGenerateSummary(app.stdout, res)
		}
		return nil
	}

	if err := generate(ctx); err != nil {
		return app.failSession(cmd, s, "generate packages", err)
	}

	w, err := watch.New(watchConfig(opts, debounce, s, func(ctx context.Context, changed []string) error {
		s.logger.Info("change detected, regenerating", "files", len(changed))
		if runErr := generate(ctx); runErr != nil {
			_, msg := classifyError(runErr, s.verbose)
			fmt.Fprint(app.stderr, msg)
		}
		return nil
	}))
	if err != nil {
		return app.failSession(cmd, s, "start watcher", err)
	}

	fmt.Fprintln(app.stdout, SubtitleStyle.Render("Watching for changes. Press Ctrl+C to stop."))
	if err := w.Run(ctx); err != nil {
		return app.failSession(cmd, s, "watch fragments", err)
	}
	return nil
}

// watchConfig watches the fragment pattern and the override file, ignoring
// the generated-packages directory.
func watchConfig(opts synth.Options, debounce time.Duration, s *session, onChange func(context.Context, []string) error) watch.Config {
	pattern := string(opts.Pattern)
	if pattern == "" {
		pattern = string(config.DefaultPattern)
	}
	overrideFile := opts.OverrideFile
	if overrideFile == "" {
		overrideFile = overrides.DefaultFileName
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = synth.DefaultOutputDir
	}
	outputDir = strings.Trim(path.Clean(strings.ReplaceAll(outputDir, "\\", "/")), "/")

	return watch.Config{
		Patterns: []string{pattern, overrideFile},
		Ignore:   []string{outputDir, outputDir + "/**"},
		Debounce: debounce,
		BaseDir:  string(s.root),
		OnChange: onChange,
		Logger:   s.logger,
	}
}
