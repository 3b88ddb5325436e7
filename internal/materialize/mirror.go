// SPDX-License-Identifier: MPL-2.0

package materialize

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/minicrates/minicrates/internal/discovery"
	"github.com/minicrates/minicrates/internal/manifest"
	"github.com/minicrates/minicrates/pkg/fspath"
	"github.com/minicrates/minicrates/pkg/platform"
	"github.com/minicrates/minicrates/pkg/types"
)

// DefaultSourceExtensions are linked under src/ by Mirror.
var DefaultSourceExtensions = []string{".rs"}

// Mirror links the fragment's whole directory into a package.
type Mirror struct {
	// OutputDir holds every generated package.
	OutputDir types.FilesystemPath
	// ManifestName defaults to DefaultManifestName.
	ManifestName string
	// SourceExtensions select entries linked under src/. Empty means
	// DefaultSourceExtensions.
	SourceExtensions []string
	// Linker creates the links. Nil means platform.NewLinker().
	Linker platform.Linker
}

// Layout places the package at <OutputDir>/<id> and points lib.path at the
// fragment's link.
func (m *Mirror) Layout(frag discovery.Fragment, id types.CrateID) Layout {
	return Layout{
		Dir:     fspath.JoinStr(m.OutputDir, id.String()),
		LibPath: srcDir + "/" + fspath.Base(frag.Path),
	}
}

// Materialize links every sibling of the fragment into the package. Links
// that already exist are kept, so repeated runs only add what is new.
func (m *Mirror) Materialize(frag discovery.Fragment, id types.CrateID, layout Layout, tbl manifest.Table) (*Package, error) {
	if err := prepareTarget(layout.Dir, false); err != nil {
		return nil, err
	}
	src := fspath.JoinStr(layout.Dir, srcDir)
	if err := os.MkdirAll(string(src), 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", src, err)
	}
	if err := ensureIgnoreMarker(m.OutputDir); err != nil {
		return nil, err
	}

	linker := m.Linker
	if linker == nil {
		linker = platform.NewLinker()
	}
	manifestName := orDefault(m.ManifestName)

	parent := fspath.Dir(frag.Path)
	entries, err := os.ReadDir(string(parent))
	if err != nil {
		return nil, fmt.Errorf("read fragment directory: %w", err)
	}

	pkg := &Package{Fragment: frag, ID: id, Dir: layout.Dir}
	for _, e := range entries {
		source := fspath.JoinStr(parent, e.Name())
		// The mirrored directory may contain the output directory itself or
		// a manifest that would shadow the generated one.
		if source == fspath.Clean(m.OutputDir) || e.Name() == manifestName {
			continue
		}

		kind, err := platform.KindOf(string(source))
		if err != nil {
			return nil, err
		}
		dest := layout.Dir
		if kind == platform.LinkFile && m.isSource(e.Name()) {
			dest = src
		}
		target := fspath.JoinStr(dest, e.Name())

		if _, err := os.Lstat(string(target)); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("inspect %s: %w", target, err)
		}
		if err := linker.Link(string(source), string(target), kind); err != nil {
			return nil, err
		}
		pkg.Links = append(pkg.Links, target)
	}

	manifestPath, data, err := writeManifest(layout.Dir, manifestName, tbl)
	if err != nil {
		return nil, err
	}
	pkg.ManifestPath = manifestPath
	pkg.Manifest = data
	return pkg, nil
}

func (m *Mirror) isSource(name string) bool {
	exts := m.SourceExtensions
	if len(exts) == 0 {
		exts = DefaultSourceExtensions
	}
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
