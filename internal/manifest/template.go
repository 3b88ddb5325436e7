// SPDX-License-Identifier: MPL-2.0

package manifest

import "github.com/minicrates/minicrates/pkg/types"

const (
	// DefaultPackagePrefix precedes the identifier in generated package names.
	DefaultPackagePrefix = "minicrates-"
	// DefaultCrateType is the library type of generated packages.
	DefaultCrateType = "dylib"
)

// TemplateOptions shapes the base template.
type TemplateOptions struct {
	// PackagePrefix precedes the identifier in package.name.
	// Empty means DefaultPackagePrefix.
	PackagePrefix string
	// CrateTypes populates lib.crate-type. Empty means [DefaultCrateType].
	CrateTypes []string
	// LibPath sets lib.path when non-empty.
	LibPath string
}

// Base returns the template every generated manifest starts from:
//
//	[package]
//	name = "minicrates-<id>"
//
//	[lib]
//	crate-type = ["dylib"]
func Base(id types.CrateID, opts TemplateOptions) Table {
	prefix := opts.PackagePrefix
	if prefix == "" {
		prefix = DefaultPackagePrefix
	}
	crateTypes := opts.CrateTypes
	if len(crateTypes) == 0 {
		crateTypes = []string{DefaultCrateType}
	}

	kinds := make([]any, len(crateTypes))
	for i, ct := range crateTypes {
		kinds[i] = ct
	}
	lib := map[string]any{"crate-type": kinds}
	if opts.LibPath != "" {
		lib["path"] = opts.LibPath
	}

	return Table{
		"package": map[string]any{"name": id.PackageName(prefix)},
		"lib":     lib,
	}
}
