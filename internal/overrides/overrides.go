// SPDX-License-Identifier: MPL-2.0

package overrides

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/minicrates/minicrates/internal/manifest"
	"github.com/minicrates/minicrates/pkg/fspath"
	"github.com/minicrates/minicrates/pkg/types"
)

const (
	// DefaultFileName is the override file looked up in the project root.
	DefaultFileName = "Minicrates.toml"
	// TableKey is the top-level key holding the pattern-keyed overrides.
	TableKey = "minicrates"
)

// ErrInvalidOverride is wrapped by ConfigError for every override file problem.
var ErrInvalidOverride = errors.New("invalid override file")

type (
	// Entry is one override: a pattern and the table it contributes.
	Entry struct {
		Pattern types.GlobPattern
		Value   any
	}

	// Table is the parsed override file.
	Table struct {
		// Source is the file the table was read from.
		Source types.FilesystemPath
		// Entries are in declaration order.
		Entries []Entry
	}

	// ConfigError reports a malformed override file or override value.
	ConfigError struct {
		Source  types.FilesystemPath
		Pattern types.GlobPattern
		Cause   error
	}
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Source))
	if e.Pattern != "" {
		fmt.Fprintf(&b, ": %s.%q", TableKey, string(e.Pattern))
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns both ErrInvalidOverride and the underlying cause.
func (e *ConfigError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrInvalidOverride}
	}
	return []error{ErrInvalidOverride, e.Cause}
}

// Load reads the override file name from root. A missing file is not an
// error: Load returns a nil table.
func Load(root types.FilesystemPath, name string) (*Table, error) {
	if name == "" {
		name = DefaultFileName
	}
	path := fspath.JoinStr(root, name)

	data, err := os.ReadFile(string(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read override file: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes an override document. source names the document in errors.
func Parse(data []byte, source types.FilesystemPath) (*Table, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Source: source, Cause: err}
	}

	t := &Table{Source: source}
	raw, ok := doc[TableKey]
	if !ok {
		return t, nil
	}
	entries, ok := manifest.AsTable(raw)
	if !ok {
		return nil, &ConfigError{Source: source, Cause: fmt.Errorf("%q must be a table, got %T", TableKey, raw)}
	}

	order, err := declarationOrder(data)
	if err != nil {
		return nil, &ConfigError{Source: source, Cause: err}
	}
	// Every decoded key appears in the scan; the sorted tail only guards
	// against keys the scan could not attribute.
	seen := make(map[string]bool, len(order))
	for _, key := range order {
		if v, ok := entries[key]; ok && !seen[key] {
			seen[key] = true
			t.Entries = append(t.Entries, Entry{Pattern: types.GlobPattern(key), Value: v})
		}
	}
	var rest []string
	for key := range entries {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	slices.Sort(rest)
	for _, key := range rest {
		t.Entries = append(t.Entries, Entry{Pattern: types.GlobPattern(key), Value: entries[key]})
	}

	for _, e := range t.Entries {
		if err := e.Pattern.Validate(); err != nil {
			return nil, &ConfigError{Source: source, Pattern: e.Pattern, Cause: err}
		}
	}
	return t, nil
}

// Select returns the overrides applying to fragment, in declaration order.
// Patterns match the fragment path relative to root; fragments outside root
// never match. An override whose value is not a table is an error.
func (t *Table) Select(root, fragment types.FilesystemPath) ([]manifest.Table, error) {
	if t == nil || len(t.Entries) == 0 {
		return nil, nil
	}

	rel, err := fspath.Rel(root, fragment)
	if err != nil {
		return nil, nil
	}
	name := rel.Slash()
	if name == ".." || strings.HasPrefix(name, "../") || filepath.IsAbs(string(rel)) {
		return nil, nil
	}

	var selected []manifest.Table
	for _, e := range t.Entries {
		ok, err := e.Pattern.Match(name)
		if err != nil {
			return nil, &ConfigError{Source: t.Source, Pattern: e.Pattern, Cause: err}
		}
		if !ok {
			continue
		}
		value, isTable := manifest.AsTable(e.Value)
		if !isTable {
			return nil, &ConfigError{
				Source:  t.Source,
				Pattern: e.Pattern,
				Cause:   fmt.Errorf("override must be a table, got %T", e.Value),
			}
		}
		selected = append(selected, manifest.Table(value))
	}
	return selected, nil
}

// Patterns returns the entry patterns in declaration order.
func (t *Table) Patterns() []types.GlobPattern {
	if t == nil {
		return nil
	}
	out := make([]types.GlobPattern, len(t.Entries))
	for i, e := range t.Entries {
		out[i] = e.Pattern
	}
	return out
}
