// SPDX-License-Identifier: MPL-2.0

package materialize

import (
	"fmt"
	"os"
	"strconv"

	"github.com/minicrates/minicrates/internal/discovery"
	"github.com/minicrates/minicrates/internal/manifest"
	"github.com/minicrates/minicrates/pkg/fspath"
	"github.com/minicrates/minicrates/pkg/platform"
	"github.com/minicrates/minicrates/pkg/types"
)

// entryFileName is the crate root written under src/.
const entryFileName = "lib.rs"

// Shim wraps each fragment in a package whose crate root includes it.
type Shim struct {
	// OutputDir holds every generated package.
	OutputDir types.FilesystemPath
	// ManifestName defaults to DefaultManifestName.
	ManifestName string
}

// Layout places the package at <OutputDir>/<stem>.
func (s *Shim) Layout(frag discovery.Fragment, _ types.CrateID) Layout {
	return Layout{Dir: fspath.JoinStr(s.OutputDir, frag.Stem)}
}

// Materialize recreates the package directory from scratch.
func (s *Shim) Materialize(frag discovery.Fragment, id types.CrateID, layout Layout, m manifest.Table) (*Package, error) {
	if err := platform.ValidateDirName(fspath.Base(layout.Dir)); err != nil {
		return nil, fmt.Errorf("package directory for %s: %w", frag.Path, err)
	}
	if err := prepareTarget(layout.Dir, true); err != nil {
		return nil, err
	}

	src := fspath.JoinStr(layout.Dir, srcDir)
	if err := os.MkdirAll(string(src), 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", src, err)
	}
	if err := ensureIgnoreMarker(s.OutputDir); err != nil {
		return nil, err
	}

	entry := fspath.JoinStr(src, entryFileName)
	if err := os.WriteFile(string(entry), []byte(IncludeDirective(frag.Path, src)), 0o644); err != nil {
		return nil, fmt.Errorf("write entry file: %w", err)
	}

	manifestPath, data, err := writeManifest(layout.Dir, orDefault(s.ManifestName), m)
	if err != nil {
		return nil, err
	}
	return &Package{
		Fragment:     frag,
		ID:           id,
		Dir:          layout.Dir,
		ManifestPath: manifestPath,
		Manifest:     data,
		EntryPath:    entry,
	}, nil
}

// IncludeDirective returns the entry file content that re-exports fragment
// from a crate root in dir.
func IncludeDirective(fragment, dir types.FilesystemPath) string {
	rel := fspath.Rebase(fragment, dir, dir)
	return "include!(" + strconv.Quote(rel) + ");\n"
}
