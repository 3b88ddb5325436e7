// SPDX-License-Identifier: MPL-2.0

// Package identity derives the stable identifier of a fragment from its path.
//
// Identifiers are xxhash64 digests seeded with a fixed constant, so the same
// path maps to the same identifier in every run and every process. Two
// distinct paths may collide; a collision aliases both fragments to one
// generated package name and is not detected.
package identity

import (
	"github.com/cespare/xxhash/v2"

	"github.com/minicrates/minicrates/pkg/types"
)

// Seed is the fixed hash seed. Changing it renames every generated package.
const Seed uint64 = 42

// Hash returns the identifier for path. The path is hashed byte-for-byte;
// callers pass the absolute, cleaned form produced by discovery.
func Hash(path types.FilesystemPath) types.CrateID {
	d := xxhash.NewWithSeed(Seed)
	_, _ = d.WriteString(string(path))
	return types.CrateID(d.Sum64())
}
