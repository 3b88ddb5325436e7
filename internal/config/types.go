// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/minicrates/minicrates/internal/discovery"
	"github.com/minicrates/minicrates/internal/manifest"
	"github.com/minicrates/minicrates/internal/materialize"
	"github.com/minicrates/minicrates/internal/overrides"
	"github.com/minicrates/minicrates/internal/synth"
	"github.com/minicrates/minicrates/internal/workspace"
	"github.com/minicrates/minicrates/pkg/types"
)

// DefaultPattern selects every fragment below the project root.
const DefaultPattern types.GlobPattern = "**/*.mini.rs"

const (
	// ColorSchemeAuto detects the terminal background.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces the dark palette.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces the light palette.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is the sentinel error wrapped by InvalidColorSchemeError.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError collects field-level validation errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// WorkspaceConfig configures the workspace membership probe.
	WorkspaceConfig struct {
		// Manifest is the file looked for in each ancestor directory.
		Manifest string `json:"manifest" mapstructure:"manifest"`
		// MaxHops is the number of directories examined.
		MaxHops int `json:"max_hops" mapstructure:"max_hops"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// Config holds the application configuration.
	Config struct {
		// Pattern selects fragment files, relative to the project root.
		Pattern types.GlobPattern `json:"pattern" mapstructure:"pattern"`
		// OutputDir holds generated packages, relative to the project root.
		OutputDir string `json:"output_dir" mapstructure:"output_dir"`
		// FragmentSuffix is stripped from fragment names.
		FragmentSuffix string `json:"fragment_suffix" mapstructure:"fragment_suffix"`
		// Strategy is "shim" or "mirror".
		Strategy types.Strategy `json:"strategy" mapstructure:"strategy"`
		// OverrideFile is the override document name.
		OverrideFile string `json:"override_file" mapstructure:"override_file"`
		// PackagePrefix precedes identifiers in package names.
		PackagePrefix string `json:"package_prefix" mapstructure:"package_prefix"`
		// CrateTypes populate lib.crate-type.
		CrateTypes []string `json:"crate_types" mapstructure:"crate_types"`
		// SourceExtensions are linked under src/ by the mirror strategy.
		SourceExtensions []string `json:"source_extensions" mapstructure:"source_extensions"`

		Workspace WorkspaceConfig `json:"workspace" mapstructure:"workspace"`
		UI        UIConfig        `json:"ui" mapstructure:"ui"`
	}
)

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// Validate returns an error if the color scheme is not auto, dark or light.
func (cs ColorScheme) Validate() error {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: cs}
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Validate checks the constraints that also apply to values from the
// environment, which bypass the CUE schema.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Pattern.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Strategy.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}
	if c.Workspace.MaxHops < 1 {
		errs = append(errs, fmt.Errorf("workspace.max_hops must be at least 1, got %d", c.Workspace.MaxHops))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Pattern:          DefaultPattern,
		OutputDir:        synth.DefaultOutputDir,
		FragmentSuffix:   discovery.DefaultSuffix,
		Strategy:         types.StrategyShim,
		OverrideFile:     overrides.DefaultFileName,
		PackagePrefix:    manifest.DefaultPackagePrefix,
		CrateTypes:       []string{manifest.DefaultCrateType},
		SourceExtensions: slices.Clone(materialize.DefaultSourceExtensions),
		Workspace: WorkspaceConfig{
			Manifest: workspace.DefaultManifest,
			MaxHops:  workspace.DefaultMaxHops,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}

// EngineOptions maps the configuration onto synthesis options for root.
func (c *Config) EngineOptions(root types.FilesystemPath) synth.Options {
	return synth.Options{
		Root:              root,
		Pattern:           c.Pattern,
		Suffix:            c.FragmentSuffix,
		OutputDir:         c.OutputDir,
		OverrideFile:      c.OverrideFile,
		Strategy:          c.Strategy,
		PackagePrefix:     c.PackagePrefix,
		CrateTypes:        slices.Clone(c.CrateTypes),
		SourceExtensions:  slices.Clone(c.SourceExtensions),
		WorkspaceManifest: c.Workspace.Manifest,
		MaxHops:           c.Workspace.MaxHops,
	}
}
