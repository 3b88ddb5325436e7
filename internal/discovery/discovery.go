// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/minicrates/minicrates/pkg/fspath"
	"github.com/minicrates/minicrates/pkg/types"
)

// DefaultSuffix is the file suffix that marks a fragment.
const DefaultSuffix = ".mini.rs"

var (
	// ErrBadPattern is wrapped by PatternError when the glob cannot be expanded.
	ErrBadPattern = errors.New("bad fragment pattern")
	// ErrMissingSuffix is wrapped by SuffixError when a matched file lacks the fragment suffix.
	ErrMissingSuffix = errors.New("fragment is missing the fragment suffix")
)

type (
	// Fragment is one discovered source file.
	Fragment struct {
		// Path is the absolute, cleaned path of the file.
		Path types.FilesystemPath
		// Stem is the file name with the fragment suffix removed. It names the
		// package directory in the shim strategy.
		Stem string
	}

	// Options configures a discovery pass.
	Options struct {
		// Root is the project root relative patterns are resolved against.
		Root types.FilesystemPath
		// Pattern selects fragments.
		Pattern types.GlobPattern
		// Suffix is stripped from file names to form Fragment.Stem.
		// Empty means DefaultSuffix.
		Suffix string
	}

	// PatternError reports a glob that could not be expanded.
	PatternError struct {
		Pattern types.GlobPattern
		Cause   error
	}

	// SuffixError reports a matched file whose name does not end in the
	// fragment suffix, so no package directory name can be derived from it.
	SuffixError struct {
		Path   types.FilesystemPath
		Suffix string
	}
)

// Error implements the error interface.
func (e *PatternError) Error() string {
	return fmt.Sprintf("expand pattern %q: %v", e.Pattern, e.Cause)
}

// Unwrap returns both ErrBadPattern and the underlying cause.
func (e *PatternError) Unwrap() []error { return []error{ErrBadPattern, e.Cause} }

// Error implements the error interface.
func (e *SuffixError) Error() string {
	return fmt.Sprintf("%s: file name does not end in %q", e.Path, e.Suffix)
}

// Unwrap returns ErrMissingSuffix for errors.Is() compatibility.
func (e *SuffixError) Unwrap() error { return ErrMissingSuffix }

// Discover expands opts.Pattern into fragments. Matching directories are
// skipped. A pattern that matches nothing yields a nil slice and no error.
func Discover(opts Options) ([]Fragment, error) {
	if err := opts.Pattern.Validate(); err != nil {
		return nil, &PatternError{Pattern: opts.Pattern, Cause: err}
	}
	suffix := opts.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}

	matches, err := expand(opts.Root, opts.Pattern)
	if err != nil {
		return nil, &PatternError{Pattern: opts.Pattern, Cause: err}
	}

	var fragments []Fragment
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			return nil, fmt.Errorf("stat fragment %s: %w", match, err)
		}
		if info.IsDir() {
			continue
		}

		abs, err := fspath.Abs(types.FilesystemPath(match))
		if err != nil {
			return nil, err
		}
		abs = fspath.Clean(abs)

		name := fspath.Base(abs)
		stem, ok := strings.CutSuffix(name, suffix)
		if !ok || stem == "" {
			return nil, &SuffixError{Path: abs, Suffix: suffix}
		}
		fragments = append(fragments, Fragment{Path: abs, Stem: stem})
	}
	return fragments, nil
}

// expand returns the host paths matching pattern. Relative patterns are
// walked through an fs.FS rooted at root so glob metacharacters in the root
// path itself are never interpreted. Patterns that are absolute or climb out
// of the root with ".." fall back to matching against the host filesystem.
func expand(root types.FilesystemPath, pattern types.GlobPattern) ([]string, error) {
	slashed := filepath.ToSlash(string(pattern))
	if filepath.IsAbs(string(pattern)) || escapesRoot(slashed) {
		host := filepath.FromSlash(slashed)
		if !filepath.IsAbs(host) {
			host = filepath.Join(string(root), host)
		}
		return doublestar.FilepathGlob(host)
	}

	rel, err := doublestar.Glob(os.DirFS(string(root)), path.Clean(slashed))
	if err != nil {
		return nil, err
	}
	matches := make([]string, len(rel))
	for i, r := range rel {
		matches[i] = filepath.Join(string(root), filepath.FromSlash(r))
	}
	return matches, nil
}

func escapesRoot(slashed string) bool {
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
