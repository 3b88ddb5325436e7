// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/minicrates/config.cue (or the XDG equivalent on
// Linux, ~/Library/Application Support/minicrates/config.cue on macOS,
// %APPDATA%\minicrates\config.cue on Windows), falling back to minicrates.cue in the
// project directory. MINICRATES_* environment variables override file values.
//
// Files are validated against an embedded CUE schema (config_schema.cue). Values from the
// environment bypass the schema and are checked by Config.Validate.
package config
