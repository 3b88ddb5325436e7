// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestIsWindowsReservedName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"CON lowercase", "con", true},
		{"CON mixed case", "Con", true},
		{"NUL", "nul", true},
		{"COM9", "com9", true},
		{"LPT1", "lpt1", true},
		{"CON with extension", "con.txt", true},
		{"normal name", "intro", false},
		{"contains reserved", "confile", false},
		{"COM10", "com10", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsWindowsReservedName(tt.input); got != tt.expected {
				t.Errorf("IsWindowsReservedName(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidateDirName(t *testing.T) {
	t.Parallel()

	if err := ValidateDirName("intro"); err != nil {
		t.Errorf("ValidateDirName(intro) = %v", err)
	}
	err := ValidateDirName("aux")
	if !errors.Is(err, ErrReservedName) {
		t.Errorf("ValidateDirName(aux) = %v, want ErrReservedName", err)
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "lib.rs")
	if err := os.WriteFile(file, []byte("// lib"), 0o644); err != nil {
		t.Fatal(err)
	}

	if kind, err := KindOf(dir); err != nil || kind != LinkDirectory {
		t.Errorf("KindOf(dir) = %v, %v; want directory", kind, err)
	}
	if kind, err := KindOf(file); err != nil || kind != LinkFile {
		t.Errorf("KindOf(file) = %v, %v; want file", kind, err)
	}
	if _, err := KindOf(filepath.Join(dir, "missing")); err == nil {
		t.Error("KindOf(missing) returned nil error")
	}
}

func TestKindOf_DanglingSymlink(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == Windows {
		t.Skip("symlink creation needs Developer Mode on Windows")
	}

	dir := t.TempDir()
	link := filepath.Join(dir, "dangling")
	if err := os.Symlink(filepath.Join(dir, "gone"), link); err != nil {
		t.Fatal(err)
	}
	if kind, err := KindOf(link); err != nil || kind != LinkFile {
		t.Errorf("KindOf(dangling) = %v, %v; want file", kind, err)
	}
}

func TestHostLinker(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == Windows {
		t.Skip("symlink creation needs Developer Mode on Windows")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "data")
	if err := os.Mkdir(src, 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "link")
	if err := NewLinker().Link(src, target, LinkDirectory); err != nil {
		t.Fatalf("Link() = %v", err)
	}
	got, err := os.Readlink(target)
	if err != nil {
		t.Fatalf("Readlink() = %v", err)
	}
	if got != src {
		t.Errorf("link points at %q, want %q", got, src)
	}
	if err := NewLinker().Link(src, target, LinkDirectory); err == nil {
		t.Error("second Link() over an existing link returned nil error")
	}
}
