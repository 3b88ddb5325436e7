// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

func TestNewProject(t *testing.T) {
	t.Parallel()

	root := NewProject(t, map[string]string{
		"Cargo.toml":         "[workspace]\n",
		"src/intro.mini.rs":  "fn intro() {}",
		"src/deep/a.mini.rs": "",
	})

	if got := MustReadFile(t, filepath.Join(root, "src", "intro.mini.rs")); got != "fn intro() {}" {
		t.Errorf("intro content = %q", got)
	}
	if got := MustReadFile(t, filepath.Join(root, "Cargo.toml")); got != "[workspace]\n" {
		t.Errorf("Cargo.toml content = %q", got)
	}
	if got := MustReadFile(t, filepath.Join(root, "src", "deep", "a.mini.rs")); got != "" {
		t.Errorf("nested content = %q", got)
	}
}
