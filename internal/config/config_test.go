// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/minicrates/minicrates/internal/testutil"
	"github.com/minicrates/minicrates/pkg/types"
)

// isolatedOptions points config lookup at empty temporary directories.
func isolatedOptions(t *testing.T) LoadOptions {
	t.Helper()
	return LoadOptions{ConfigDirPath: t.TempDir(), ProjectDir: t.TempDir()}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadWithOptions(t.Context(), isolatedOptions(t))
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want none", path)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_UserFile(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), `
pattern:  "stories/**/*.mini.rs"
strategy: "mirror"
crate_types: ["rlib", "dylib"]
workspace: max_hops: 3
ui: verbose: true
`)

	cfg, path, err := loadWithOptions(t.Context(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if path != filepath.Join(opts.ConfigDirPath, "config.cue") {
		t.Errorf("resolved path = %q", path)
	}

	want := DefaultConfig()
	want.Pattern = "stories/**/*.mini.rs"
	want.Strategy = types.StrategyMirror
	want.CrateTypes = []string{"rlib", "dylib"}
	want.Workspace.MaxHops = 3
	want.UI.Verbose = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	testutil.MustWriteFile(t, filepath.Join(opts.ProjectDir, LocalConfigFileName), "output_dir: \"generated\"\n")

	cfg, path, err := loadWithOptions(t.Context(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if filepath.Base(path) != LocalConfigFileName || cfg.OutputDir != "generated" {
		t.Errorf("got path %q, output_dir %q", path, cfg.OutputDir)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown strategy", `strategy: "copy"`, "strategy"},
		{"unknown field", `container_engine: "podman"`, "container_engine"},
		{"hop bound", `workspace: max_hops: 0`, "max_hops"},
		{"absolute output dir", `output_dir: "/tmp/out"`, "output_dir"},
		{"bad crate type", `crate_types: ["exe"]`, "crate_types"},
		{"syntax", `pattern: "unterminated`, "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := isolatedOptions(t)
			testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), tt.content+"\n")

			_, _, err := loadWithOptions(t.Context(), opts)
			if err == nil {
				t.Fatal("loadWithOptions() error = nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	opts.ConfigFilePath = filepath.Join(t.TempDir(), "nope.cue")
	if _, _, err := loadWithOptions(t.Context(), opts); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("loadWithOptions() error = %v, want not found", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	testutil.MustSetenv(t, "MINICRATES_OUTPUT_DIR", "build/crates")
	testutil.MustSetenv(t, "MINICRATES_WORKSPACE_MAX_HOPS", "7")
	testutil.MustSetenv(t, "MINICRATES_STRATEGY", "mirror")

	opts := isolatedOptions(t)
	testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), "output_dir: \"from-file\"\n")

	cfg, _, err := loadWithOptions(t.Context(), opts)
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if cfg.OutputDir != "build/crates" || cfg.Workspace.MaxHops != 7 || cfg.Strategy != types.StrategyMirror {
		t.Errorf("environment not applied: %+v", cfg)
	}
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	testutil.MustSetenv(t, "MINICRATES_STRATEGY", "copy")

	_, _, err := loadWithOptions(t.Context(), isolatedOptions(t))
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, types.ErrInvalidStrategy) {
		t.Errorf("loadWithOptions() error = %v, want ErrInvalidConfig wrapping ErrInvalidStrategy", err)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := NewProvider().Load(ctx, isolatedOptions(t)); err == nil {
		t.Error("Load() with canceled context returned nil error")
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	want := DefaultConfig()
	want.Strategy = types.StrategyMirror
	want.SourceExtensions = []string{".rs", ".h"}
	want.UI.ColorScheme = ColorSchemeDark

	opts := isolatedOptions(t)
	testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), GenerateCUE(want))

	got, err := NewProvider().Load(t.Context(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "minicrates")
	path, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	first := testutil.MustReadFile(t, path)
	if !strings.Contains(first, `strategy:        "shim"`) {
		t.Errorf("default config content:\n%s", first)
	}

	if err := os.WriteFile(path, []byte("pattern: \"kept\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(dir); err != nil {
		t.Fatalf("second CreateDefaultConfig() error = %v", err)
	}
	if got := testutil.MustReadFile(t, path); got != "pattern: \"kept\"\n" {
		t.Error("existing config was overwritten")
	}
}

func TestResolvePath_Precedence(t *testing.T) {
	t.Parallel()

	opts := isolatedOptions(t)
	testutil.MustWriteFile(t, filepath.Join(opts.ProjectDir, LocalConfigFileName), "")
	testutil.MustWriteFile(t, filepath.Join(opts.ConfigDirPath, "config.cue"), "")

	got, err := ResolvePath(opts)
	if err != nil || got != filepath.Join(opts.ConfigDirPath, "config.cue") {
		t.Errorf("ResolvePath() = (%q, %v), want user config first", got, err)
	}

	opts.ConfigFilePath = "explicit.cue"
	if got, _ := ResolvePath(opts); got != "explicit.cue" {
		t.Errorf("ResolvePath() = %q, want explicit file", got)
	}
}

func TestConfig_EngineOptions(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	opts := cfg.EngineOptions("/project")
	if opts.Root != "/project" || opts.Pattern != cfg.Pattern || opts.MaxHops != 5 {
		t.Errorf("EngineOptions() = %+v", opts)
	}
	opts.CrateTypes[0] = "changed"
	if cfg.CrateTypes[0] != "dylib" {
		t.Error("EngineOptions() shares the CrateTypes slice")
	}
}

func TestColorScheme_Validate(t *testing.T) {
	t.Parallel()

	for _, cs := range []ColorScheme{ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight} {
		if err := cs.Validate(); err != nil {
			t.Errorf("%q.Validate() = %v", cs, err)
		}
	}
	if err := ColorScheme("neon").Validate(); !errors.Is(err, ErrInvalidColorScheme) {
		t.Errorf("Validate() = %v, want ErrInvalidColorScheme", err)
	}
}

func TestFileProvider_ConfigDirDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "config.cue"), "output_dir: \"gen\"\n")
	p := &FileProvider{ConfigDir: dir}

	cfg, path, err := p.LoadWithPath(t.Context(), LoadOptions{ProjectDir: t.TempDir()})
	if err != nil {
		t.Fatalf("LoadWithPath() error = %v", err)
	}
	if cfg.OutputDir != "gen" || path != filepath.Join(dir, "config.cue") {
		t.Errorf("LoadWithPath() = (%q, %q)", cfg.OutputDir, path)
	}

	// An explicit directory in the options wins over the provider's.
	cfg, err = p.Load(t.Context(), isolatedOptions(t))
	if err != nil || cfg.OutputDir != DefaultConfig().OutputDir {
		t.Errorf("Load() = (%v, %v), want defaults", cfg, err)
	}
}
