// SPDX-License-Identifier: MPL-2.0

// Package workspace checks whether generated packages are registered as
// members of an enclosing Cargo workspace.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/minicrates/minicrates/pkg/fspath"
	"github.com/minicrates/minicrates/pkg/types"
)

const (
	// DefaultManifest is the file searched for in each ancestor.
	DefaultManifest = "Cargo.toml"
	// DefaultMaxHops bounds the number of directories examined.
	DefaultMaxHops = 5
)

// ErrInvalidManifest is wrapped by ConfigError.
var ErrInvalidManifest = errors.New("invalid workspace manifest")

type (
	// Options configure Probe.
	Options struct {
		// Manifest defaults to DefaultManifest.
		Manifest string
		// Member is the generated directory relative to the start directory,
		// for example "minicrates".
		Member string
		// MaxHops is the number of directories examined, the start directory
		// included. Zero or less means DefaultMaxHops.
		MaxHops int
		// Packages are the generated package directory names inside Member.
		// Glob members must match all of them.
		Packages []string
	}

	// Result reports the outcome of Probe.
	Result struct {
		// Registered is true when a workspace lists the generated directory.
		Registered bool
		// Manifest is the workspace manifest that matched, if any.
		Manifest types.FilesystemPath
		// Entry is the members entry that matched.
		Entry string
		// Visited lists the directories examined, nearest first.
		Visited []types.FilesystemPath
	}

	// ConfigError reports a workspace manifest that could not be parsed.
	ConfigError struct {
		Path  types.FilesystemPath
		Cause error
	}

	manifestDoc struct {
		Workspace *struct {
			Members []string `toml:"members"`
		} `toml:"workspace"`
	}
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("parse workspace manifest %s: %v", e.Path, e.Cause)
}

// Unwrap returns ErrInvalidManifest and the parse error.
func (e *ConfigError) Unwrap() []error { return []error{ErrInvalidManifest, e.Cause} }

// Probe walks from start towards the filesystem root, examining at most
// opts.MaxHops directories. Not finding a registration is not an error.
func Probe(start types.FilesystemPath, opts Options) (Result, error) {
	name := opts.Manifest
	if name == "" {
		name = DefaultManifest
	}
	hops := opts.MaxHops
	if hops <= 0 {
		hops = DefaultMaxHops
	}
	member := strings.Trim(path.Clean(types.FilesystemPath(opts.Member).Slash()), "/")

	var res Result
	dir := fspath.Clean(start)
	var rel []string // path components from dir down to start, nearest last
	for range hops {
		res.Visited = append(res.Visited, dir)

		candidate := path.Join(append(append([]string{}, rel...), member)...)
		manifest := fspath.JoinStr(dir, name)
		entry, ok, err := lookup(manifest, candidate, opts.Packages)
		if err != nil {
			return res, err
		}
		if ok {
			res.Registered = true
			res.Manifest = manifest
			res.Entry = entry
			return res, nil
		}

		parent := fspath.Dir(dir)
		if parent == dir {
			break
		}
		rel = append([]string{fspath.Base(dir)}, rel...)
		dir = parent
	}
	return res, nil
}

// lookup reads the workspace members of manifest and reports the entry that
// registers candidate. A missing manifest or one without a workspace section
// registers nothing.
func lookup(manifest types.FilesystemPath, candidate string, packages []string) (string, bool, error) {
	data, err := os.ReadFile(string(manifest))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", manifest, err)
	}

	var doc manifestDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", false, &ConfigError{Path: manifest, Cause: err}
	}
	if doc.Workspace == nil {
		return "", false, nil
	}

	for _, m := range doc.Workspace.Members {
		if registers(m, candidate, packages) {
			return m, true, nil
		}
	}
	return "", false, nil
}

// registers reports whether a members entry covers candidate. Literal
// entries must equal it. Glob entries must match every generated package.
func registers(entry, candidate string, packages []string) bool {
	cleaned := strings.TrimPrefix(path.Clean(strings.ReplaceAll(entry, `\`, "/")), "./")
	if cleaned == candidate {
		return true
	}
	if !strings.ContainsAny(cleaned, "*?[{") || len(packages) == 0 {
		return false
	}
	for _, pkg := range packages {
		ok, err := doublestar.Match(cleaned, path.Join(candidate, pkg))
		if err != nil || !ok {
			return false
		}
	}
	return true
}
