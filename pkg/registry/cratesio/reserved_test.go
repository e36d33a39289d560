// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cratesio

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultReservedNames(t *testing.T) {
	r := DefaultReservedNames()
	for _, name := range []string{
		"std", "core", "alloc", "compiler_builtins", "rust_installer", "proc_macro",
		"nul", "con", "prn", "aux", "com0", "com9", "lpt0", "lpt9",
	} {
		if !r.Contains(name) {
			t.Errorf("Contains(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"serde", "compiler-builtins", "STD", "com10", ""} {
		if r.Contains(name) {
			t.Errorf("Contains(%q) = true, want false", name)
		}
	}
	if got, want := r.Len(), len(compilerReservedNames)+len(windowsReservedNames); got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
}

func TestReservedNamesCanonicalMatch(t *testing.T) {
	r := DefaultReservedNames()
	for _, raw := range []string{"std", "STD", "Compiler-Builtins", "compiler_builtins", "NUL", "Rust-Installer"} {
		if !r.Contains(CanonicalName(raw)) {
			t.Errorf("Contains(CanonicalName(%q)) = false, want true", raw)
		}
	}
}

func TestNewReservedNames(t *testing.T) {
	r := NewReservedNames("Foo-Bar", "baz", "foo_bar")
	if diff := cmp.Diff([]string{"baz", "foo_bar"}, r.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}
