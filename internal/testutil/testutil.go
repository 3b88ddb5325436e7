// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// MustMkdirAll creates a directory along with any necessary parents.
// The test fails immediately if the operation fails.
func MustMkdirAll(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustWriteFile writes content to path, creating parent directories first.
// The test fails immediately if the operation fails.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustReadFile returns the content of path.
// The test fails immediately if the file cannot be read.
func MustReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// NewProject creates a temporary project root populated with files, keyed by
// slash-separated path relative to the root, and returns the root.
func NewProject(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	// Resolve symlinked temp roots (macOS /var -> /private/var) so paths
	// computed by the code under test compare equal to the ones built here.
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatalf("failed to resolve temp dir %s: %v", root, err)
	}
	for name, content := range files {
		MustWriteFile(t, filepath.Join(resolved, filepath.FromSlash(name)), content)
	}
	return resolved
}

// MustSetenv sets the environment variable key to value for the duration of
// the test. It uses t.Setenv, so the calling test must not be parallel.
func MustSetenv(t *testing.T, key, value string) {
	t.Helper()
	t.Setenv(key, value)
}
