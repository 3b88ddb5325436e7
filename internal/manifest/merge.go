// SPDX-License-Identifier: MPL-2.0

package manifest

// Merge folds tables left to right into a new table. When both the merged
// value so far and the incoming value for a key are tables, they merge
// recursively; otherwise the incoming value replaces what was there. Inputs
// are not modified and share no storage with the result.
//
// Callers pass the base template first and overrides after it, so overrides
// win over the base and later overrides win over earlier ones.
func Merge(tables ...Table) Table {
	out := map[string]any{}
	for _, t := range tables {
		mergeInto(out, t)
	}
	return Table(out)
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		incoming, ok := AsTable(v)
		if !ok {
			dst[k] = cloneValue(v)
			continue
		}
		// dst only ever holds clones, so nested tables can be merged in place.
		if existing, ok := AsTable(dst[k]); ok {
			mergeInto(existing, incoming)
			continue
		}
		dst[k] = cloneMap(incoming)
	}
}
