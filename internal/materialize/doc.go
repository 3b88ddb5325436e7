// SPDX-License-Identifier: MPL-2.0

// Package materialize writes synthesized packages to disk.
//
// Two strategies are provided. Shim recreates <output>/<stem> from scratch on
// every run and writes src/lib.rs as a single include! of the original
// fragment, so edits to the fragment need no regeneration. Mirror keeps
// <output>/<id> and symlinks every entry of the fragment's directory into
// it. Both write the manifest and make sure the output directory carries an
// ignore marker.
//
// A generation target occupied by anything other than a directory is never
// touched; the run fails with a ConflictError instead.
package materialize
