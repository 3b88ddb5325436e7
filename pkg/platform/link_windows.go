// SPDX-License-Identifier: MPL-2.0

//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

type hostLinker struct{}

// Link creates target pointing at source with CreateSymbolicLink. Directory
// links need SYMBOLIC_LINK_FLAG_DIRECTORY; the unprivileged flag lets
// Developer Mode hosts create links without elevation.
func (hostLinker) Link(source, target string, kind LinkKind) error {
	src, err := windows.UTF16PtrFromString(source)
	if err != nil {
		return fmt.Errorf("symlink source %q: %w", source, err)
	}
	dst, err := windows.UTF16PtrFromString(target)
	if err != nil {
		return fmt.Errorf("symlink target %q: %w", target, err)
	}

	flags := uint32(windows.SYMBOLIC_LINK_FLAG_ALLOW_UNPRIVILEGED_CREATE)
	if kind == LinkDirectory {
		flags |= windows.SYMBOLIC_LINK_FLAG_DIRECTORY
	}
	if err := windows.CreateSymbolicLink(dst, src, flags); err != nil {
		return fmt.Errorf("symlink %s -> %s: %w", target, source, err)
	}
	return nil
}
