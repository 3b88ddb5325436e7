// SPDX-License-Identifier: MPL-2.0

// Package synth runs one synthesis pass: discover fragments, assign
// identifiers, build and write a package per fragment, probe the enclosing
// workspace, and collect the identifier table.
//
// A run processes fragments sequentially in discovery order and stops at the
// first error. Packages written before the failure are left in place.
package synth

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/minicrates/minicrates/internal/discovery"
	"github.com/minicrates/minicrates/internal/identity"
	"github.com/minicrates/minicrates/internal/manifest"
	"github.com/minicrates/minicrates/internal/materialize"
	"github.com/minicrates/minicrates/internal/overrides"
	"github.com/minicrates/minicrates/internal/workspace"
	"github.com/minicrates/minicrates/pkg/crateids"
	"github.com/minicrates/minicrates/pkg/fspath"
	"github.com/minicrates/minicrates/pkg/platform"
	"github.com/minicrates/minicrates/pkg/types"
)

// DefaultOutputDir is the generated-packages directory under the root.
const DefaultOutputDir = "minicrates"

type (
	// Options configure an Engine. Zero values select the defaults of each
	// component.
	Options struct {
		// Root is the project root. Relative roots resolve against the
		// working directory.
		Root types.FilesystemPath
		// Pattern selects fragments, relative to Root.
		Pattern types.GlobPattern
		// Suffix defaults to discovery.DefaultSuffix.
		Suffix string
		// OutputDir is relative to Root. Defaults to DefaultOutputDir.
		OutputDir string
		// OverrideFile defaults to overrides.DefaultFileName.
		OverrideFile string
		// Strategy defaults to types.StrategyShim.
		Strategy         types.Strategy
		PackagePrefix    string
		CrateTypes       []string
		SourceExtensions []string
		// WorkspaceManifest and MaxHops configure the membership probe.
		WorkspaceManifest string
		MaxHops           int

		// OnEmpty is called once when no fragment matches.
		OnEmpty func()
		// Logger defaults to slog.Default().
		Logger *slog.Logger
		// Linker is used by the mirror strategy.
		Linker platform.Linker
	}

	// Result summarizes a run.
	Result struct {
		// Root and OutputDir are absolute.
		Root      types.FilesystemPath
		OutputDir types.FilesystemPath
		// OverrideFile is the override document consulted, present or not.
		OverrideFile types.FilesystemPath
		Fragments    []discovery.Fragment
		Packages     []*materialize.Package
		Crates       crateids.Table
		Workspace    workspace.Result
		// Empty is set when no fragment matched and nothing was written.
		Empty bool
	}

	// Engine executes synthesis runs.
	Engine struct {
		opts   Options
		logger *slog.Logger
	}
)

// New returns an Engine for opts.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{opts: opts, logger: logger}
}

// Run performs one synthesis pass.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	root, err := e.root()
	if err != nil {
		return nil, err
	}
	strategy := e.opts.Strategy
	if strategy == "" {
		strategy = types.StrategyShim
	}
	if err := strategy.Validate(); err != nil {
		return nil, err
	}

	outName := e.outputName()
	overrideName := e.opts.OverrideFile
	if overrideName == "" {
		overrideName = overrides.DefaultFileName
	}
	res := &Result{
		Root:         root,
		OutputDir:    fspath.JoinStr(root, filepath.FromSlash(outName)),
		OverrideFile: fspath.JoinStr(root, overrideName),
		Crates:       crateids.Table{},
	}

	frags, err := e.discover(root, res.OutputDir)
	if err != nil {
		return nil, err
	}
	res.Fragments = frags
	if len(frags) == 0 {
		e.logger.Debug("no fragments matched", "pattern", e.opts.Pattern, "root", root)
		res.Empty = true
		if e.opts.OnEmpty != nil {
			e.opts.OnEmpty()
		}
		return res, nil
	}

	table, err := overrides.Load(root, overrideName)
	if err != nil {
		return nil, err
	}
	if table != nil {
		e.logger.Debug("loaded overrides", "file", table.Source, "patterns", len(table.Entries))
	}

	mat := e.materializer(strategy, res.OutputDir)
	for _, frag := range frags {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pkg, err := e.synthesize(root, frag, table, mat)
		if err != nil {
			return nil, err
		}
		res.Packages = append(res.Packages, pkg)
		res.Crates[crateKey(root, frag.Path)] = uint64(pkg.ID)
	}

	names := make([]string, len(res.Packages))
	for i, pkg := range res.Packages {
		names[i] = fspath.Base(pkg.Dir)
	}
	res.Workspace, err = workspace.Probe(root, workspace.Options{
		Manifest: e.opts.WorkspaceManifest,
		Member:   outName,
		MaxHops:  e.opts.MaxHops,
		Packages: names,
	})
	if err != nil {
		return nil, err
	}
	if res.Workspace.Registered {
		e.logger.Debug("output directory is a workspace member",
			"manifest", res.Workspace.Manifest, "entry", res.Workspace.Entry)
	} else {
		e.logger.Warn("output directory is not registered in a workspace",
			"dir", res.OutputDir, "searched", len(res.Workspace.Visited))
	}
	return res, nil
}

// Identify returns the identifier table Run would export for the current
// fragments. It does not read overrides or write anything.
func (e *Engine) Identify() (crateids.Table, error) {
	root, err := e.root()
	if err != nil {
		return nil, err
	}
	frags, err := e.discover(root, fspath.JoinStr(root, filepath.FromSlash(e.outputName())))
	if err != nil {
		return nil, err
	}
	table := make(crateids.Table, len(frags))
	for _, frag := range frags {
		table[crateKey(root, frag.Path)] = uint64(identity.Hash(frag.Path))
	}
	return table, nil
}

func (e *Engine) discover(root, outDir types.FilesystemPath) ([]discovery.Fragment, error) {
	frags, err := discovery.Discover(discovery.Options{
		Root:    root,
		Pattern: e.opts.Pattern,
		Suffix:  e.opts.Suffix,
	})
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(frags, func(f discovery.Fragment) bool {
		return within(outDir, f.Path)
	}), nil
}

func (e *Engine) outputName() string {
	if e.opts.OutputDir == "" {
		return DefaultOutputDir
	}
	return e.opts.OutputDir
}

func (e *Engine) synthesize(root types.FilesystemPath, frag discovery.Fragment, table *overrides.Table, mat materialize.Materializer) (*materialize.Package, error) {
	id := identity.Hash(frag.Path)
	layout := mat.Layout(frag, id)

	selected, err := table.Select(root, frag.Path)
	if err != nil {
		return nil, err
	}
	base := manifest.Base(id, manifest.TemplateOptions{
		PackagePrefix: e.opts.PackagePrefix,
		CrateTypes:    e.opts.CrateTypes,
		LibPath:       layout.LibPath,
	})
	merged := manifest.Merge(append([]manifest.Table{base}, selected...)...)
	manifest.RewritePaths(merged, root, layout.Dir)

	pkg, err := mat.Materialize(frag, id, layout, merged)
	if err != nil {
		return nil, fmt.Errorf("materialize %s: %w", frag.Path, err)
	}
	e.logger.Debug("materialized package",
		"fragment", frag.Path, "id", id, "dir", pkg.Dir, "overrides", len(selected))
	return pkg, nil
}

func (e *Engine) root() (types.FilesystemPath, error) {
	root := e.opts.Root
	if root == "" {
		root = "."
	}
	abs, err := fspath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve project root: %w", err)
	}
	return abs, nil
}

func (e *Engine) materializer(strategy types.Strategy, outDir types.FilesystemPath) materialize.Materializer {
	if strategy == types.StrategyMirror {
		return &materialize.Mirror{
			OutputDir:        outDir,
			SourceExtensions: e.opts.SourceExtensions,
			Linker:           e.opts.Linker,
		}
	}
	return &materialize.Shim{OutputDir: outDir}
}

// crateKey is the identifier-table key for fragment.
func crateKey(root, fragment types.FilesystemPath) string {
	rel, err := fspath.Rel(root, fragment)
	if err != nil || !filepath.IsLocal(string(rel)) {
		return fragment.Slash()
	}
	return rel.Slash()
}

// within reports whether p lies inside dir. Mirrored packages link fragments
// back into the output directory, where a broad pattern would find them again.
func within(dir, p types.FilesystemPath) bool {
	rel, err := fspath.Rel(dir, p)
	return err == nil && filepath.IsLocal(string(rel))
}
