// SPDX-License-Identifier: MPL-2.0

package crateids

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncode_SortedAndExact(t *testing.T) {
	t.Parallel()

	tbl := Table{
		"src/z.mini.rs": math.MaxUint64,
		"src/a.mini.rs": 1,
	}
	got, err := Encode(tbl)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := `{"src/a.mini.rs":1,"src/z.mini.rs":18446744073709551615}`
	if got != want {
		t.Errorf("Encode() = %s, want %s", got, want)
	}

	back, err := Decode(got)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(tbl, back); diff != "" {
		t.Errorf("Decode(Encode()) mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_Empty(t *testing.T) {
	t.Parallel()

	got, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got != "{}" {
		t.Errorf("Encode(nil) = %q, want {}", got)
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "[1]", `{"a":-1}`, `{"a":"x"}`} {
		if _, err := Decode(in); !errors.Is(err, ErrMalformedTable) {
			t.Errorf("Decode(%q) error = %v, want ErrMalformedTable", in, err)
		}
	}
}

func TestCargoDirective(t *testing.T) {
	t.Parallel()

	got, err := CargoDirective(Table{"a.mini.rs": 7})
	if err != nil {
		t.Fatalf("CargoDirective() error = %v", err)
	}
	if want := `cargo:rustc-env=MINICRATES_CRATES={"a.mini.rs":7}`; got != want {
		t.Errorf("CargoDirective() = %s, want %s", got, want)
	}
}

func TestRegistry_LoadsOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := NewRegistry(func() (string, error) {
		calls.Add(1)
		return `{"a.mini.rs":42}`, nil
	})

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			id, err := r.Lookup("a.mini.rs")
			if err != nil || id != 42 {
				t.Errorf("Lookup() = (%d, %v), want (42, nil)", id, err)
			}
		})
	}
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("source called %d times, want 1", n)
	}
}

func TestRegistry_Errors(t *testing.T) {
	t.Parallel()

	r := NewRegistry(func() (string, error) { return "", ErrNotSet })
	if _, err := r.Lookup("x"); !errors.Is(err, ErrNotSet) {
		t.Errorf("Lookup() error = %v, want ErrNotSet", err)
	}

	r = NewRegistry(func() (string, error) { return `{"a":1}`, nil })
	if _, err := r.Lookup("b"); !errors.Is(err, ErrUnknownFragment) {
		t.Errorf("Lookup(missing) error = %v, want ErrUnknownFragment", err)
	}
	tbl, err := r.Table()
	if err != nil || len(tbl) != 1 {
		t.Errorf("Table() = (%v, %v)", tbl, err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvVar, `{"x":3}`)

	s, err := FromEnv()
	if err != nil || s != `{"x":3}` {
		t.Errorf("FromEnv() = (%q, %v)", s, err)
	}
}
