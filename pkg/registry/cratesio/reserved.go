// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cratesio

import "sort"

// Names reserved by crates.io database migrations:
//
//	20170305095748_create_reserved_crate_names (compiler internals)
//	20170430202433_reserve_windows_crate_names (Windows device names)
//	2021-02-10-141019_reserve_com0_lpt0
var (
	compilerReservedNames = []string{
		"alloc", "arena", "ast", "builtins", "collections", "compiler-builtins",
		"compiler-rt", "compiletest", "core", "coretest", "debug", "driver",
		"flate", "fmt_macros", "grammar", "graphviz", "macro", "macros",
		"proc_macro", "rbml", "rust-installer", "rustbook", "rustc", "rustc_back",
		"rustc_borrowck", "rustc_driver", "rustc_llvm", "rustc_resolve",
		"rustc_trans", "rustc_typeck", "rustdoc", "rustllvm", "rustuv",
		"serialize", "std", "syntax", "test", "unicode",
	}
	windowsReservedNames = []string{
		"nul", "con", "prn", "aux",
		"com0", "com1", "com2", "com3", "com4", "com5", "com6", "com7", "com8", "com9",
		"lpt0", "lpt1", "lpt2", "lpt3", "lpt4", "lpt5", "lpt6", "lpt7", "lpt8", "lpt9",
	}
)

// ReservedNames is an immutable set of canonical crate names that can never be
// published, regardless of whether a crate by that name exists.
// It is safe for concurrent use.
type ReservedNames struct {
	set map[string]struct{}
}

// NewReservedNames builds a set from the given names, canonicalizing each.
func NewReservedNames(names ...string) *ReservedNames {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[CanonicalName(n)] = struct{}{}
	}
	return &ReservedNames{set: set}
}

// DefaultReservedNames returns the crates.io reserved name set.
func DefaultReservedNames() *ReservedNames {
	all := make([]string, 0, len(compilerReservedNames)+len(windowsReservedNames))
	all = append(all, compilerReservedNames...)
	all = append(all, windowsReservedNames...)
	return NewReservedNames(all...)
}

// Contains reports whether the canonical name is reserved.
func (r *ReservedNames) Contains(canonical string) bool {
	_, ok := r.set[canonical]
	return ok
}

// Len returns the number of reserved canonical names.
func (r *ReservedNames) Len() int { return len(r.set) }

// List returns the reserved canonical names in sorted order.
func (r *ReservedNames) List() []string {
	out := make([]string, 0, len(r.set))
	for n := range r.set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
