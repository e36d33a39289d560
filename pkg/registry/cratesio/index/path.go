// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"path"
	"strings"
)

// EntryPath computes the index path for a crate:
//
//	1 character:   1/<name>
//	2 characters:  2/<name>
//	3 characters:  3/<first char>/<name>
//	4+ characters: <chars 0-1>/<chars 2-3>/<name>
func EntryPath(name string) string {
	name = strings.ToLower(name)
	switch len(name) {
	case 1:
		return path.Join("1", name)
	case 2:
		return path.Join("2", name)
	case 3:
		return path.Join("3", string(name[0]), name)
	default:
		return path.Join(name[:2], name[2:4], name)
	}
}

// Variants returns the spellings of a canonical name that must be probed in
// the index: the hyphenated rendering followed by the underscored one.
// A name without separators has a single spelling.
//
// Only the two renderings that use one separator throughout are produced. A
// crate published with mixed separators (e.g. "foo-bar_baz") is not found via
// "foo_bar-baz" even though crates.io considers them the same name.
func Variants(canonical string) []string {
	if !strings.Contains(canonical, "_") {
		return []string{canonical}
	}
	return []string{strings.ReplaceAll(canonical, "_", "-"), canonical}
}
