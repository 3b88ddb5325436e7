// SPDX-License-Identifier: MPL-2.0

// Package discovery expands a fragment glob pattern into the ordered list of
// fragment files a synthesis run wraps into packages.
//
// Patterns are doublestar globs interpreted relative to the project root and
// may use "**" to cross directories. Results keep the order in which the glob
// walk enumerates the filesystem. An empty result is not an error.
package discovery
