// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the minicrates CLI.
//
// The root command carries the global flags (--verbose, --config, --root)
// and the subcommands generate, watch, probe, ids and config. Every handler
// receives an *App holding the configuration provider, the output streams
// and the linker used by the mirror strategy.
package cmd
