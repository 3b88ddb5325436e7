// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
)

const (
	// StrategyShim wraps a single fragment with an include! entry file.
	StrategyShim Strategy = "shim"
	// StrategyMirror symlinks the fragment's whole sibling directory.
	StrategyMirror Strategy = "mirror"
)

// ErrInvalidStrategy is the sentinel error wrapped by InvalidStrategyError.
var ErrInvalidStrategy = errors.New("invalid materialization strategy")

type (
	// Strategy selects how a package is laid out on disk.
	Strategy string

	// InvalidStrategyError is returned when a Strategy value is not recognized.
	InvalidStrategyError struct {
		Value Strategy
	}
)

// String returns the string representation of the Strategy.
func (s Strategy) String() string { return string(s) }

// Validate returns an error if the strategy is not shim or mirror.
func (s Strategy) Validate() error {
	switch s {
	case StrategyShim, StrategyMirror:
		return nil
	default:
		return &InvalidStrategyError{Value: s}
	}
}

// Error implements the error interface.
func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid strategy %q (valid: %s, %s)", e.Value, StrategyShim, StrategyMirror)
}

// Unwrap returns ErrInvalidStrategy for errors.Is() compatibility.
func (e *InvalidStrategyError) Unwrap() error { return ErrInvalidStrategy }
