// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrReservedName is the sentinel error wrapped by ReservedNameError.
var ErrReservedName = errors.New("reserved file name")

// windowsReservedNames are device names Windows reserves regardless of
// extension. A fragment named con.mini.rs would otherwise produce a package
// directory that cannot be created there.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// ReservedNameError is returned by ValidateDirName for reserved names.
type ReservedNameError struct {
	Name string
}

// Error implements the error interface.
func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("%q is a reserved file name on Windows", e.Name)
}

// Unwrap returns ErrReservedName for errors.Is() compatibility.
func (e *ReservedNameError) Unwrap() error { return ErrReservedName }

// IsWindowsReservedName checks if a filename is a Windows reserved name.
// Extensions are ignored, so "nul.txt" is reserved too.
func IsWindowsReservedName(name string) bool {
	upper := strings.ToUpper(name)
	if idx := strings.Index(upper, "."); idx != -1 {
		upper = upper[:idx]
	}
	return windowsReservedNames[upper]
}

// ValidateDirName rejects generated directory names that are not portable.
// Names are checked on every host so a project generates the same layout
// wherever it is built.
func ValidateDirName(name string) error {
	if IsWindowsReservedName(name) {
		return &ReservedNameError{Name: name}
	}
	return nil
}
