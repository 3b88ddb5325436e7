// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"github.com/minicrates/minicrates/pkg/fspath"
	"github.com/minicrates/minicrates/pkg/types"
)

// dependencySections are the manifest tables whose entries may carry a
// `path` key, both at the top level and under each `target.<cfg>` table.
var dependencySections = []string{"dependencies", "dev-dependencies", "build-dependencies"}

// RewritePaths rebases every dependency `path` in t, in place. Paths are
// authored relative to projectRoot; after rewriting they are relative to
// packageDir, where the generated manifest lives. Entries that are not
// tables, and `path` values that are missing or not strings, are left alone.
func RewritePaths(t Table, projectRoot, packageDir types.FilesystemPath) {
	rewriteSections(t, projectRoot, packageDir)

	targets, ok := AsTable(t["target"])
	if !ok {
		return
	}
	for _, cfg := range targets {
		if section, ok := AsTable(cfg); ok {
			rewriteSections(section, projectRoot, packageDir)
		}
	}
}

func rewriteSections(t map[string]any, projectRoot, packageDir types.FilesystemPath) {
	for _, name := range dependencySections {
		deps, ok := AsTable(t[name])
		if !ok {
			continue
		}
		for _, dep := range deps {
			entry, ok := AsTable(dep)
			if !ok {
				continue
			}
			p, ok := entry["path"].(string)
			if !ok {
				continue
			}
			entry["path"] = fspath.Rebase(types.FilesystemPath(p), projectRoot, packageDir)
		}
	}
}
