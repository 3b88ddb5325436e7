// SPDX-License-Identifier: MPL-2.0

package materialize

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/minicrates/minicrates/internal/discovery"
	"github.com/minicrates/minicrates/internal/manifest"
	"github.com/minicrates/minicrates/internal/testutil"
	"github.com/minicrates/minicrates/pkg/platform"
	"github.com/minicrates/minicrates/pkg/types"
)

const testID types.CrateID = 1234

func fragmentAt(root, rel string) discovery.Fragment {
	p := filepath.Join(root, filepath.FromSlash(rel))
	return discovery.Fragment{
		Path: types.FilesystemPath(p),
		Stem: strings.TrimSuffix(filepath.Base(p), discovery.DefaultSuffix),
	}
}

func testManifest() manifest.Table {
	return manifest.Base(testID, manifest.TemplateOptions{})
}

func TestShim_Materialize(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, map[string]string{"src/intro.mini.rs": "fn main() {}\n"})
	out := types.FilesystemPath(filepath.Join(root, "minicrates"))
	frag := fragmentAt(root, "src/intro.mini.rs")

	s := &Shim{OutputDir: out}
	layout := s.Layout(frag, testID)
	if want := filepath.Join(string(out), "intro"); string(layout.Dir) != want {
		t.Fatalf("Layout().Dir = %q, want %q", layout.Dir, want)
	}
	if layout.LibPath != "" {
		t.Errorf("Layout().LibPath = %q, want empty", layout.LibPath)
	}

	pkg, err := s.Materialize(frag, testID, layout, testManifest())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	entry := testutil.MustReadFile(t, string(pkg.EntryPath))
	if want := `include!("../../../src/intro.mini.rs");` + "\n"; entry != want {
		t.Errorf("entry file = %q, want %q", entry, want)
	}
	if got := testutil.MustReadFile(t, filepath.Join(string(out), IgnoreMarkerName)); got != IgnoreMarkerContent {
		t.Errorf("ignore marker = %q, want %q", got, IgnoreMarkerContent)
	}
	written := testutil.MustReadFile(t, string(pkg.ManifestPath))
	if written != string(pkg.Manifest) {
		t.Error("manifest on disk differs from Package.Manifest")
	}
	if !strings.Contains(written, `name = 'minicrates-1234'`) {
		t.Errorf("manifest missing package name:\n%s", written)
	}
}

func TestShim_ReplacesStaleDirectory(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, map[string]string{
		"src/intro.mini.rs":            "",
		"minicrates/intro/leftover.rs": "stale",
	})
	out := types.FilesystemPath(filepath.Join(root, "minicrates"))
	frag := fragmentAt(root, "src/intro.mini.rs")

	s := &Shim{OutputDir: out}
	if _, err := s.Materialize(frag, testID, s.Layout(frag, testID), testManifest()); err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "minicrates", "intro", "leftover.rs")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale file still present, Stat() error = %v", err)
	}
}

func TestShim_Idempotent(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, map[string]string{"src/intro.mini.rs": ""})
	out := types.FilesystemPath(filepath.Join(root, "minicrates"))
	frag := fragmentAt(root, "src/intro.mini.rs")
	s := &Shim{OutputDir: out}

	first, err := s.Materialize(frag, testID, s.Layout(frag, testID), testManifest())
	if err != nil {
		t.Fatalf("first Materialize() error = %v", err)
	}
	second, err := s.Materialize(frag, testID, s.Layout(frag, testID), testManifest())
	if err != nil {
		t.Fatalf("second Materialize() error = %v", err)
	}
	if string(first.Manifest) != string(second.Manifest) {
		t.Error("manifest changed between identical runs")
	}
}

func TestShim_ConflictLeavesFileUntouched(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, map[string]string{
		"src/intro.mini.rs": "",
		"minicrates/intro":  "not a directory",
	})
	out := types.FilesystemPath(filepath.Join(root, "minicrates"))
	frag := fragmentAt(root, "src/intro.mini.rs")
	s := &Shim{OutputDir: out}

	_, err := s.Materialize(frag, testID, s.Layout(frag, testID), testManifest())
	if !errors.Is(err, ErrTargetOccupied) {
		t.Fatalf("Materialize() error = %v, want ErrTargetOccupied", err)
	}
	var conflict *ConflictError
	if !errors.As(err, &conflict) || conflict.Kind != "file" {
		t.Errorf("error = %#v, want *ConflictError with Kind file", err)
	}
	if got := testutil.MustReadFile(t, filepath.Join(root, "minicrates", "intro")); got != "not a directory" {
		t.Errorf("occupant rewritten to %q", got)
	}
}

func TestShim_KeepsExistingIgnoreMarker(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, map[string]string{
		"src/intro.mini.rs":     "",
		"minicrates/.gitignore": "custom\n",
	})
	out := types.FilesystemPath(filepath.Join(root, "minicrates"))
	frag := fragmentAt(root, "src/intro.mini.rs")
	s := &Shim{OutputDir: out}

	if _, err := s.Materialize(frag, testID, s.Layout(frag, testID), testManifest()); err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if got := testutil.MustReadFile(t, filepath.Join(string(out), IgnoreMarkerName)); got != "custom\n" {
		t.Errorf("ignore marker = %q, want it preserved", got)
	}
}

func TestShim_ReservedStem(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, map[string]string{"src/con.mini.rs": ""})
	out := types.FilesystemPath(filepath.Join(root, "minicrates"))
	frag := fragmentAt(root, "src/con.mini.rs")
	s := &Shim{OutputDir: out}

	_, err := s.Materialize(frag, testID, s.Layout(frag, testID), testManifest())
	if !errors.Is(err, platform.ErrReservedName) {
		t.Errorf("Materialize() error = %v, want ErrReservedName", err)
	}
}

func TestIncludeDirective(t *testing.T) {
	t.Parallel()

	frag := types.FilesystemPath(filepath.Join(string(filepath.Separator)+"p", "src", "a", "x.mini.rs"))
	dir := types.FilesystemPath(filepath.Join(string(filepath.Separator)+"p", "minicrates", "x", "src"))

	got := IncludeDirective(frag, dir)
	if want := `include!("../../../src/a/x.mini.rs");` + "\n"; got != want {
		t.Errorf("IncludeDirective() = %q, want %q", got, want)
	}
}

type recordingLinker struct {
	links map[string]platform.LinkKind
}

func (r *recordingLinker) Link(source, target string, kind platform.LinkKind) error {
	if r.links == nil {
		r.links = make(map[string]platform.LinkKind)
	}
	r.links[target] = kind
	// Leave a placeholder so a second run sees the target as present.
	if kind == platform.LinkDirectory {
		return os.MkdirAll(target, 0o755)
	}
	return os.WriteFile(target, []byte(source), 0o644)
}

func TestMirror_Materialize(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, map[string]string{
		"intro.mini.rs":   "",
		"helper.rs":       "",
		"README.md":       "",
		"assets/logo.txt": "",
		"Cargo.toml":      "[package]\n",
	})
	out := types.FilesystemPath(filepath.Join(root, "minicrates"))
	frag := fragmentAt(root, "intro.mini.rs")
	linker := &recordingLinker{}
	m := &Mirror{OutputDir: out, Linker: linker}

	layout := m.Layout(frag, testID)
	if want := filepath.Join(string(out), "1234"); string(layout.Dir) != want {
		t.Fatalf("Layout().Dir = %q, want %q", layout.Dir, want)
	}
	if layout.LibPath != "src/intro.mini.rs" {
		t.Errorf("Layout().LibPath = %q, want src/intro.mini.rs", layout.LibPath)
	}

	opts := manifest.TemplateOptions{LibPath: layout.LibPath}
	pkg, err := m.Materialize(frag, testID, layout, manifest.Base(testID, opts))
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	dir := string(layout.Dir)
	want := map[string]platform.LinkKind{
		filepath.Join(dir, "src", "intro.mini.rs"): platform.LinkFile,
		filepath.Join(dir, "src", "helper.rs"):     platform.LinkFile,
		filepath.Join(dir, "README.md"):            platform.LinkFile,
		filepath.Join(dir, "assets"):               platform.LinkDirectory,
	}
	if len(linker.links) != len(want) {
		t.Errorf("linked %d entries, want %d: %v", len(linker.links), len(want), linker.links)
	}
	for target, kind := range want {
		if got, ok := linker.links[target]; !ok || got != kind {
			t.Errorf("link %s = (%v, %v), want %v", target, got, ok, kind)
		}
	}
	if len(pkg.Links) != len(want) {
		t.Errorf("Package.Links = %v", pkg.Links)
	}
	if !strings.Contains(string(pkg.Manifest), `path = 'src/intro.mini.rs'`) {
		t.Errorf("manifest missing lib.path:\n%s", pkg.Manifest)
	}

	// A second run reuses the directory and every existing link.
	again, err := m.Materialize(frag, testID, layout, manifest.Base(testID, opts))
	if err != nil {
		t.Fatalf("second Materialize() error = %v", err)
	}
	if len(again.Links) != 0 {
		t.Errorf("second run created links %v, want none", again.Links)
	}
}

func TestMirror_SkipsOutputDirectory(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, map[string]string{"intro.mini.rs": ""})
	out := types.FilesystemPath(filepath.Join(root, "minicrates"))
	frag := fragmentAt(root, "intro.mini.rs")
	linker := &recordingLinker{}
	m := &Mirror{OutputDir: out, Linker: linker}

	pkg, err := m.Materialize(frag, testID, m.Layout(frag, testID), testManifest())
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	for _, l := range pkg.Links {
		if filepath.Base(string(l)) == "minicrates" {
			t.Errorf("output directory was mirrored into %s", l)
		}
	}
}

func TestMirror_CustomSourceExtensions(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, map[string]string{
		"intro.mini.rs": "",
		"bindings.h":    "",
	})
	out := types.FilesystemPath(filepath.Join(root, "minicrates"))
	frag := fragmentAt(root, "intro.mini.rs")
	linker := &recordingLinker{}
	m := &Mirror{OutputDir: out, Linker: linker, SourceExtensions: []string{".rs", ".h"}}

	layout := m.Layout(frag, testID)
	if _, err := m.Materialize(frag, testID, layout, testManifest()); err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	targets := make([]string, 0, len(linker.links))
	for target := range linker.links {
		targets = append(targets, target)
	}
	if !slices.Contains(targets, filepath.Join(string(layout.Dir), "src", "bindings.h")) {
		t.Errorf("bindings.h not linked under src/: %v", targets)
	}
}

func TestMirror_RealSymlinks(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, map[string]string{
		"intro.mini.rs": "pub fn hi() {}\n",
	})
	out := types.FilesystemPath(filepath.Join(root, "minicrates"))
	frag := fragmentAt(root, "intro.mini.rs")
	m := &Mirror{OutputDir: out}

	layout := m.Layout(frag, testID)
	if _, err := m.Materialize(frag, testID, layout, testManifest()); err != nil {
		if errors.Is(err, os.ErrPermission) {
			t.Skipf("symlinks not permitted: %v", err)
		}
		t.Fatalf("Materialize() error = %v", err)
	}
	link := filepath.Join(string(layout.Dir), "src", "intro.mini.rs")
	info, err := os.Lstat(link)
	if err != nil {
		t.Fatalf("Lstat() error = %v", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Errorf("%s is not a symlink", link)
	}
	if got := testutil.MustReadFile(t, link); got != "pub fn hi() {}\n" {
		t.Errorf("link content = %q", got)
	}
}

func TestMirror_DanglingSiblingSymlink(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, map[string]string{
		"s/intro.mini.rs": "pub fn hi() {}\n",
	})
	if err := os.Symlink(filepath.Join(root, "s", "gone"), filepath.Join(root, "s", "dangling")); err != nil {
		t.Skipf("symlinks not permitted: %v", err)
	}
	out := types.FilesystemPath(filepath.Join(root, "minicrates"))
	frag := fragmentAt(root, "s/intro.mini.rs")
	m := &Mirror{OutputDir: out}

	layout := m.Layout(frag, testID)
	if _, err := m.Materialize(frag, testID, layout, testManifest()); err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if _, err := os.Lstat(filepath.Join(string(layout.Dir), "dangling")); err != nil {
		t.Errorf("dangling entry not mirrored: %v", err)
	}
	if got := testutil.MustReadFile(t, filepath.Join(string(layout.Dir), "src", "intro.mini.rs")); got != "pub fn hi() {}\n" {
		t.Errorf("fragment link content = %q", got)
	}
}

func TestMirror_ConflictOnFile(t *testing.T) {
	t.Parallel()

	root := testutil.NewProject(t, map[string]string{
		"intro.mini.rs":   "",
		"minicrates/1234": "occupied",
	})
	out := types.FilesystemPath(filepath.Join(root, "minicrates"))
	frag := fragmentAt(root, "intro.mini.rs")
	m := &Mirror{OutputDir: out, Linker: &recordingLinker{}}

	_, err := m.Materialize(frag, testID, m.Layout(frag, testID), testManifest())
	if !errors.Is(err, ErrTargetOccupied) {
		t.Errorf("Materialize() error = %v, want ErrTargetOccupied", err)
	}
}
