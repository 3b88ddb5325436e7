// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidGlobPattern is the sentinel error wrapped by InvalidGlobPatternError.
var ErrInvalidGlobPattern = errors.New("invalid glob pattern")

type (
	// GlobPattern is a doublestar glob. Patterns are slash-separated and
	// support "**" for recursive directory matching.
	GlobPattern string

	// InvalidGlobPatternError is returned when a GlobPattern is empty or
	// cannot be compiled.
	InvalidGlobPatternError struct {
		Value GlobPattern
		Cause error
	}
)

// String returns the string representation of the GlobPattern.
func (g GlobPattern) String() string { return string(g) }

// Validate returns an error if the pattern is empty or malformed.
func (g GlobPattern) Validate() error {
	if strings.TrimSpace(string(g)) == "" {
		return &InvalidGlobPatternError{Value: g}
	}
	if !doublestar.ValidatePattern(string(g)) {
		return &InvalidGlobPatternError{Value: g, Cause: doublestar.ErrBadPattern}
	}
	return nil
}

// Match reports whether the slash-separated name matches the pattern.
func (g GlobPattern) Match(name string) (bool, error) {
	ok, err := doublestar.Match(string(g), name)
	if err != nil {
		return false, &InvalidGlobPatternError{Value: g, Cause: err}
	}
	return ok, nil
}

// Error implements the error interface.
func (e *InvalidGlobPatternError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid glob pattern %q: %v", e.Value, e.Cause)
	}
	return fmt.Sprintf("invalid glob pattern %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidGlobPattern for errors.Is() compatibility.
func (e *InvalidGlobPatternError) Unwrap() error { return ErrInvalidGlobPattern }
