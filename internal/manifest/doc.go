// SPDX-License-Identifier: MPL-2.0

// Package manifest models generated Cargo manifests as structured data and
// implements the operations a synthesis run applies to them: building the
// base template, merging override fragments onto it, rebasing dependency
// paths for the package's directory, and encoding the result as TOML.
//
// Documents use the shape go-toml decodes into: tables are map[string]any,
// arrays are []any, everything else is a scalar leaf. Merge and RewritePaths
// work on that shape alone and never look at TOML syntax.
package manifest
