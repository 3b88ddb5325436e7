// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const (
	// LinkFile links a regular file.
	LinkFile LinkKind = iota
	// LinkDirectory links a directory. Windows needs a distinct flag for these.
	LinkDirectory
)

type (
	// LinkKind tells the linker what the link source is.
	LinkKind int

	// Linker creates symbolic links. Materialization goes through this
	// interface only, so hosts with different link system calls plug in
	// their own backend.
	Linker interface {
		Link(source, target string, kind LinkKind) error
	}
)

// String returns a human-readable link kind.
func (k LinkKind) String() string {
	switch k {
	case LinkFile:
		return "file"
	case LinkDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// KindOf stats path (following symlinks) and reports which LinkKind a link
// to it needs. A dangling symlink is linked as a file.
func KindOf(path string) (LinkKind, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		if linfo, lerr := os.Lstat(path); lerr == nil && linfo.Mode()&fs.ModeSymlink != 0 {
			return LinkFile, nil
		}
	}
	if err != nil {
		return LinkFile, fmt.Errorf("stat link source: %w", err)
	}
	if info.IsDir() {
		return LinkDirectory, nil
	}
	return LinkFile, nil
}

// NewLinker returns the Linker for the current host.
func NewLinker() Linker {
	return hostLinker{}
}
