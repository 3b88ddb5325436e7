// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package platform

import (
	"fmt"
	"os"
)

type hostLinker struct{}

// Link creates target pointing at source. POSIX symlinks do not care
// whether the source is a file or a directory.
func (hostLinker) Link(source, target string, _ LinkKind) error {
	if err := os.Symlink(source, target); err != nil {
		return fmt.Errorf("symlink %s -> %s: %w", target, source, err)
	}
	return nil
}
