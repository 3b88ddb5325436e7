// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ConfigDirPath replaces the platform config directory when set.
		ConfigDirPath string
		// ProjectDir is searched for LocalConfigFileName. Empty means the
		// working directory.
		ProjectDir string
	}

	// FileProvider loads configuration from CUE files in the locations
	// ResolvePath searches.
	FileProvider struct {
		// ConfigDir is used for loads whose options name no directory.
		ConfigDir string
	}
)

// NewProvider returns a FileProvider using the platform config directory.
func NewProvider() *FileProvider {
	return &FileProvider{}
}

// Load reads, validates and returns the configuration.
func (p *FileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := p.LoadWithPath(ctx, opts)
	return cfg, err
}

// LoadWithPath is Load that also reports the file read, empty when only
// defaults and environment overrides applied.
func (p *FileProvider) LoadWithPath(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if opts.ConfigDirPath == "" {
		opts.ConfigDirPath = p.ConfigDir
	}
	return loadWithOptions(ctx, opts)
}
