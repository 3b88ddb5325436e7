// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/minicrates/minicrates/pkg/fspath"
	"github.com/minicrates/minicrates/pkg/types"
)

func TestRewritePaths(t *testing.T) {
	t.Parallel()

	root := types.FilesystemPath(t.TempDir())
	pkgDir := fspath.JoinStr(root, "minicrates", "intro")
	abs := fspath.JoinStr(root, "vendor", "abs")

	m := Table{
		"dependencies": map[string]any{
			"shared":  map[string]any{"path": "../shared"},
			"local":   map[string]any{"path": "./crates/./local/../local"},
			"abs":     map[string]any{"path": string(abs)},
			"version": "1.0",
			"nopath":  map[string]any{"version": "2"},
			"badpath": map[string]any{"path": int64(3)},
		},
		"dev-dependencies": map[string]any{
			"helper": map[string]any{"path": "helper"},
		},
		"target": map[string]any{
			"cfg(unix)": map[string]any{
				"build-dependencies": map[string]any{"gen": map[string]any{"path": "tools/gen"}},
			},
		},
		"package": map[string]any{"path": "untouched"},
	}

	RewritePaths(m, root, pkgDir)

	want := Table{
		"dependencies": map[string]any{
			"shared":  map[string]any{"path": "../../../shared"},
			"local":   map[string]any{"path": "../../crates/local"},
			"abs":     map[string]any{"path": "../../vendor/abs"},
			"version": "1.0",
			"nopath":  map[string]any{"version": "2"},
			"badpath": map[string]any{"path": int64(3)},
		},
		"dev-dependencies": map[string]any{
			"helper": map[string]any{"path": "../../helper"},
		},
		"target": map[string]any{
			"cfg(unix)": map[string]any{
				"build-dependencies": map[string]any{"gen": map[string]any{"path": "../../tools/gen"}},
			},
		},
		"package": map[string]any{"path": "untouched"},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("RewritePaths() mismatch (-want +got):\n%s", diff)
	}
}

func TestRewritePaths_RoundTrip(t *testing.T) {
	t.Parallel()

	root := types.FilesystemPath(filepath.Join(t.TempDir(), "project"))
	pkgDir := fspath.JoinStr(root, "minicrates", "intro")
	m := Table{"dependencies": map[string]any{"lib": map[string]any{"path": "../lib"}}}

	RewritePaths(m, root, pkgDir)

	v, ok := m.Lookup("dependencies", "lib", "path")
	if !ok {
		t.Fatal("path missing after rewrite")
	}
	fromPkg := fspath.Resolve(pkgDir, types.FilesystemPath(filepath.FromSlash(v.(string))))
	fromRoot := fspath.Resolve(root, "../lib")
	if fromPkg != fromRoot {
		t.Errorf("rewritten path resolves to %q, original to %q", fromPkg, fromRoot)
	}
}

func TestRewritePaths_NonTableSections(t *testing.T) {
	t.Parallel()

	m := Table{"dependencies": "oops", "target": int64(1)}
	RewritePaths(m, "/root", "/root/minicrates/x")
	if diff := cmp.Diff(Table{"dependencies": "oops", "target": int64(1)}, m); diff != "" {
		t.Errorf("non-table sections changed:\n%s", diff)
	}
}
