// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// Table is a structured-data table: string keys mapping to scalars, []any
// arrays, or nested tables.
type Table map[string]any

// AsTable reports whether v is table-shaped and returns it as a plain map.
func AsTable(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case Table:
		return t, true
	case map[string]any:
		return t, true
	default:
		return nil, false
	}
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	return Table(cloneMap(t))
}

// Lookup follows a dotted key path and returns the value found there.
func (t Table) Lookup(keys ...string) (any, bool) {
	var cur any = t
	for _, k := range keys {
		m, ok := AsTable(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[k]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	if m, ok := AsTable(v); ok {
		return cloneMap(m)
	}
	switch a := v.(type) {
	case []any:
		out := make([]any, len(a))
		for i, e := range a {
			out[i] = cloneValue(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(a))
		for i, e := range a {
			out[i] = cloneMap(e)
		}
		return out
	default:
		return v
	}
}

// Encode serializes t as TOML. Map keys are emitted in sorted order, so equal
// tables always encode to identical bytes.
func Encode(t Table) ([]byte, error) {
	data, err := toml.Marshal(map[string]any(t))
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return data, nil
}

// Decode parses a TOML document into a Table.
func Decode(data []byte) (Table, error) {
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return Table(m), nil
}
