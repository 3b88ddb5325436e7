// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath functions that
// accept and return types.FilesystemPath, plus the rebasing helpers used when
// a path authored relative to the project root must be rewritten relative to
// a generated package directory.
package fspath

import (
	"fmt"
	"path/filepath"

	"github.com/minicrates/minicrates/pkg/types"
)

// Join wraps filepath.Join, accepting and returning types.FilesystemPath.
func Join(elem ...types.FilesystemPath) types.FilesystemPath {
	strs := make([]string, len(elem))
	for i, e := range elem {
		strs[i] = string(e)
	}
	return types.FilesystemPath(filepath.Join(strs...))
}

// JoinStr wraps filepath.Join, accepting a typed base path and raw string
// segments such as "src", "lib.rs" or names returned by os.ReadDir.
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// Dir wraps filepath.Dir for FilesystemPath.
func Dir(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Dir(string(p)))
}

// Base wraps filepath.Base for FilesystemPath.
func Base(p types.FilesystemPath) string {
	return filepath.Base(string(p))
}

// Abs wraps filepath.Abs for FilesystemPath. Returns an error if the
// underlying OS call fails.
func Abs(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

// Clean wraps filepath.Clean for FilesystemPath.
func Clean(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Clean(string(p)))
}

// IsAbs wraps filepath.IsAbs for FilesystemPath.
func IsAbs(p types.FilesystemPath) bool {
	return filepath.IsAbs(string(p))
}

// Rel wraps filepath.Rel for FilesystemPath.
func Rel(basepath, targpath types.FilesystemPath) (types.FilesystemPath, error) {
	rel, err := filepath.Rel(string(basepath), string(targpath))
	if err != nil {
		return "", fmt.Errorf("relativizing %s against %s: %w", targpath, basepath, err)
	}
	return types.FilesystemPath(rel), nil
}

// Resolve returns p as a cleaned absolute path, joining relative paths onto
// base. No filesystem access is performed.
func Resolve(base, p types.FilesystemPath) types.FilesystemPath {
	if IsAbs(p) {
		return Clean(p)
	}
	return Clean(Join(base, p))
}

// Rebase resolves p against from (see Resolve) and re-expresses it relative
// to to. The result uses forward slashes, the form Cargo manifests and
// include! directives expect on every host. When no relative form exists,
// such as across Windows volumes, the cleaned absolute path is returned.
func Rebase(p, from, to types.FilesystemPath) string {
	abs := Resolve(from, p)
	rel, err := Rel(Clean(to), abs)
	if err != nil {
		return abs.Slash()
	}
	return rel.Slash()
}
