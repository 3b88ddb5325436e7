// SPDX-License-Identifier: MPL-2.0

// Package platform isolates the host-specific parts of package
// materialization: creating file and directory symbolic links, and
// rejecting generated directory names Windows cannot represent.
package platform
