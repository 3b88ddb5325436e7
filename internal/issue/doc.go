// SPDX-License-Identifier: MPL-2.0

// Package issue holds the user-facing side of failures: ActionableError,
// which carries the operation, resource and remedies of a failed step, and a
// catalogue of Markdown explanations rendered with glamour.
package issue
