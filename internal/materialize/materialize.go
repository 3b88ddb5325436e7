// SPDX-License-Identifier: MPL-2.0

package materialize

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/minicrates/minicrates/internal/discovery"
	"github.com/minicrates/minicrates/internal/manifest"
	"github.com/minicrates/minicrates/pkg/fspath"
	"github.com/minicrates/minicrates/pkg/types"
)

const (
	// DefaultManifestName is the manifest file written into each package.
	DefaultManifestName = "Cargo.toml"
	// IgnoreMarkerName is the ignore file kept in the output directory.
	IgnoreMarkerName = ".gitignore"
	// IgnoreMarkerContent excludes every generated package from version control.
	IgnoreMarkerContent = "*/**"

	srcDir = "src"
)

// ErrTargetOccupied is wrapped by ConflictError.
var ErrTargetOccupied = errors.New("generation target is occupied")

type (
	// Layout is where a strategy places a package and what the base template
	// needs to know about it.
	Layout struct {
		// Dir is the package directory.
		Dir types.FilesystemPath
		// LibPath is the lib.path the manifest must declare, or empty.
		LibPath string
	}

	// Package describes a materialized package.
	Package struct {
		Fragment discovery.Fragment
		ID       types.CrateID
		Dir      types.FilesystemPath
		// ManifestPath is the written manifest file.
		ManifestPath types.FilesystemPath
		// Manifest holds the encoded manifest bytes.
		Manifest []byte
		// EntryPath is the shim entry file, empty for mirrors.
		EntryPath types.FilesystemPath
		// Links are the symlinks a mirror created in this run.
		Links []types.FilesystemPath
	}

	// Materializer lays out and writes packages for one strategy.
	Materializer interface {
		Layout(frag discovery.Fragment, id types.CrateID) Layout
		Materialize(frag discovery.Fragment, id types.CrateID, layout Layout, m manifest.Table) (*Package, error)
	}

	// ConflictError reports a generation target occupied by a file, a
	// symbolic link, or another non-directory object.
	ConflictError struct {
		Path types.FilesystemPath
		Kind string
	}
)

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s exists but it is a %s", e.Path, e.Kind)
}

// Unwrap returns ErrTargetOccupied for errors.Is() compatibility.
func (e *ConflictError) Unwrap() error { return ErrTargetOccupied }

// prepareTarget makes dir ready to receive a package. A missing dir is fine.
// An existing directory is removed when replace is set and reused otherwise.
// Anything else is a ConflictError and is left untouched.
func prepareTarget(dir types.FilesystemPath, replace bool) error {
	info, err := os.Lstat(string(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect %s: %w", dir, err)
	}

	mode := info.Mode()
	switch {
	case mode.IsDir():
		if !replace {
			return nil
		}
		if err := os.RemoveAll(string(dir)); err != nil {
			return fmt.Errorf("remove stale package %s: %w", dir, err)
		}
		return nil
	case mode&fs.ModeSymlink != 0:
		return &ConflictError{Path: dir, Kind: "symbolic link"}
	case mode.IsRegular():
		return &ConflictError{Path: dir, Kind: "file"}
	default:
		return &ConflictError{Path: dir, Kind: "special file"}
	}
}

// ensureIgnoreMarker creates outDir and writes the ignore marker the first
// time it is missing. An existing marker is never rewritten.
func ensureIgnoreMarker(outDir types.FilesystemPath) error {
	if err := os.MkdirAll(string(outDir), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	marker := fspath.JoinStr(outDir, IgnoreMarkerName)
	if _, err := os.Lstat(string(marker)); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("inspect %s: %w", marker, err)
	}
	if err := os.WriteFile(string(marker), []byte(IgnoreMarkerContent), 0o644); err != nil {
		return fmt.Errorf("write ignore marker: %w", err)
	}
	return nil
}

// writeManifest encodes m into dir/name.
func writeManifest(dir types.FilesystemPath, name string, m manifest.Table) (types.FilesystemPath, []byte, error) {
	data, err := manifest.Encode(m)
	if err != nil {
		return "", nil, err
	}
	path := fspath.JoinStr(dir, name)
	if err := os.WriteFile(string(path), data, 0o644); err != nil {
		return "", nil, fmt.Errorf("write manifest: %w", err)
	}
	return path, data, nil
}

func orDefault(name string) string {
	if name == "" {
		return DefaultManifestName
	}
	return name
}
