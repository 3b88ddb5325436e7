// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/minicrates/minicrates/pkg/types"
)

// ExitError carries the process exit code out of a RunE handler whose
// failure was already rendered. Main turns it into the exit status.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// exitFailure wraps err with the generic failure code.
func exitFailure(err error) *ExitError {
	return &ExitError{Code: types.ExitFailure, Err: err}
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }
