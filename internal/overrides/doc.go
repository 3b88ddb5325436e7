// SPDX-License-Identifier: MPL-2.0

// Package overrides loads the project-level override file (Minicrates.toml)
// and selects the override fragments that apply to a discovered fragment.
//
// The file holds a single recognized table whose keys are glob patterns,
// relative to the project root, and whose values are manifest tables:
//
//	[minicrates."src/story/*"]
//	dependencies = { shared = { path = "../shared" } }
//
//	[minicrates."**/*.mini.rs".package]
//	edition = "2021"
//
// Entries keep the order in which their patterns first appear in the file;
// that order is the precedence order of the selected overrides.
package overrides
