// SPDX-License-Identifier: MPL-2.0

// Package crateids exports the fragment-to-identifier table of a synthesis
// run and looks it up again at run time.
//
// The table travels as a JSON object in the MINICRATES_CRATES environment
// variable, handed to the compiler through a cargo:rustc-env directive.
// Keys are fragment paths relative to the project root, slash separated.
package crateids

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// EnvVar carries the encoded table.
const EnvVar = "MINICRATES_CRATES"

var (
	// ErrNotSet is returned when the environment carries no table.
	ErrNotSet = errors.New(EnvVar + " is not set")
	// ErrUnknownFragment is returned by Lookup for paths not in the table.
	ErrUnknownFragment = errors.New("fragment has no identifier")
	// ErrMalformedTable is returned by Decode for text that is not a table.
	ErrMalformedTable = errors.New("malformed identifier table")
)

// Table maps fragment paths to identifiers.
type Table map[string]uint64

// Encode renders t as a JSON object with sorted keys.
func Encode(t Table) (string, error) {
	if t == nil {
		t = Table{}
	}
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode identifier table: %w", err)
	}
	return string(data), nil
}

// Decode parses a table produced by Encode.
func Decode(s string) (Table, error) {
	var t Table
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
	}
	if t == nil {
		t = Table{}
	}
	return t, nil
}

// CargoDirective returns the build-script line that exports t to the
// compiled crate.
func CargoDirective(t Table) (string, error) {
	s, err := Encode(t)
	if err != nil {
		return "", err
	}
	return "cargo:rustc-env=" + EnvVar + "=" + s, nil
}

// Registry decodes a table at most once, on first use.
type Registry struct {
	load func() (Table, error)
}

// NewRegistry returns a Registry reading its table from source.
func NewRegistry(source func() (string, error)) *Registry {
	return &Registry{load: sync.OnceValues(func() (Table, error) {
		s, err := source()
		if err != nil {
			return nil, err
		}
		return Decode(s)
	})}
}

// FromEnv reads EnvVar.
func FromEnv() (string, error) {
	s, ok := os.LookupEnv(EnvVar)
	if !ok {
		return "", ErrNotSet
	}
	return s, nil
}

// Table returns the decoded table. Every call observes the same result.
func (r *Registry) Table() (Table, error) {
	return r.load()
}

// Lookup returns the identifier assigned to path.
func (r *Registry) Lookup(path string) (uint64, error) {
	t, err := r.load()
	if err != nil {
		return 0, err
	}
	id, ok := t[path]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownFragment, path)
	}
	return id, nil
}

var defaultRegistry = NewRegistry(FromEnv)

// Default returns the process-wide Registry backed by the environment.
func Default() *Registry { return defaultRegistry }

// Lookup is Default().Lookup.
func Lookup(path string) (uint64, error) { return defaultRegistry.Lookup(path) }
