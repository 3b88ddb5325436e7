// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers build throwaway project trees (MustWriteFile, MustMkdirAll,
// MustReadFile, NewProject) and fail the test immediately when the
// filesystem refuses an operation.
package testutil
