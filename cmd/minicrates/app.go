// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/minicrates/minicrates/internal/config"
	"github.com/minicrates/minicrates/pkg/fspath"
	"github.com/minicrates/minicrates/pkg/platform"
	"github.com/minicrates/minicrates/pkg/types"

	"github.com/charmbracelet/log"
)

// ManifestDirEnv is set by cargo for build scripts and selects the project
// root when --root is not given.
const ManifestDirEnv = "CARGO_MANIFEST_DIR"

type (
	// App wires CLI services and shared dependencies. Cobra handlers receive an
	// App reference and never reach for os.Stdout or package globals.
	App struct {
		Config ConfigProvider
		Linker platform.Linker
		stdout io.Writer
		stderr io.Writer
		getenv func(string) string
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Linker platform.Linker
		Stdout io.Writer
		Stderr io.Writer
		Getenv func(string) string
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// session is the per-invocation state shared by the subcommands: the
	// resolved project root, the loaded configuration and a logger honoring
	// --verbose.
	session struct {
		root    types.FilesystemPath
		cfg     *config.Config
		verbose bool
		logger  *slog.Logger
	}
)

// NewApp builds an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Linker == nil {
		deps.Linker = platform.NewLinker()
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}

	return &App{
		Config: deps.Config,
		Linker: deps.Linker,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		getenv: deps.Getenv,
	}
}

// newSession resolves the project root and loads configuration for it.
func (a *App) newSession(ctx context.Context, flags *rootFlagValues) (*session, error) {
	root, err := fspath.Abs(a.projectRoot(flags.root))
	if err != nil {
		return nil, err
	}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: flags.configPath,
		ProjectDir:     string(root),
	})
	if err != nil {
		return nil, err
	}

	verbose := flags.verbose || cfg.UI.Verbose
	return &session{
		root:    root,
		cfg:     cfg,
		verbose: verbose,
		logger:  newLogger(a.stderr, verbose),
	}, nil
}

// projectRoot picks --root, then $CARGO_MANIFEST_DIR, then the working directory.
func (a *App) projectRoot(flag string) types.FilesystemPath {
	if flag != "" {
		return types.FilesystemPath(flag)
	}
	if dir := a.getenv(ManifestDirEnv); dir != "" {
		return types.FilesystemPath(dir)
	}
	return "."
}

// newLogger returns a slog logger backed by a charmbracelet/log handler.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return slog.New(log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	}))
}
