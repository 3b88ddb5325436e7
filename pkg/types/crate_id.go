// SPDX-License-Identifier: MPL-2.0

package types

import "strconv"

// CrateID is the content-derived identifier of a fragment. It names the
// generated package and keys the exported identifier table.
type CrateID uint64

// String returns the decimal representation used in package names.
func (id CrateID) String() string { return strconv.FormatUint(uint64(id), 10) }

// PackageName returns the Cargo package name for the identifier.
func (id CrateID) PackageName(prefix string) string { return prefix + id.String() }
