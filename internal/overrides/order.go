// SPDX-License-Identifier: MPL-2.0

package overrides

import (
	"github.com/pelletier/go-toml/v2/unstable"
)

// declarationOrder scans a TOML document and returns the keys of the
// top-level override table in the order they first appear. Decoding into a
// map loses that order, so the document is walked expression by expression.
// All of these contribute a key:
//
//	[minicrates."a/*"]              table header
//	[[minicrates."b/*".bin]]       array-table header
//	minicrates."c/*".x = 1         dotted key at the root
//	[minicrates] "d/*" = {...}      key under the table itself
//	minicrates = { "e/*" = {...} }  inline table
func declarationOrder(data []byte) ([]string, error) {
	var (
		p       unstable.Parser
		current []string
		order   []string
		seen    = map[string]bool{}
	)
	record := func(key string) {
		if !seen[key] {
			seen[key] = true
			order = append(order, key)
		}
	}

	p.Reset(data)
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table, unstable.ArrayTable:
			current = keyParts(expr)
			if len(current) >= 2 && current[0] == TableKey {
				record(current[1])
			}
		case unstable.KeyValue:
			full := append(append([]string(nil), current...), keyParts(expr)...)
			if len(full) == 0 || full[0] != TableKey {
				continue
			}
			if len(full) >= 2 {
				record(full[1])
				continue
			}
			if v := expr.Value(); v.Kind == unstable.InlineTable {
				children := v.Children()
				for children.Next() {
					if kv := children.Node(); kv.Kind == unstable.KeyValue {
						if parts := keyParts(kv); len(parts) > 0 {
							record(parts[0])
						}
					}
				}
			}
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return order, nil
}

func keyParts(n *unstable.Node) []string {
	var parts []string
	it := n.Key()
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}
