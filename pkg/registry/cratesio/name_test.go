// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cratesio

import (
	"errors"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantReason InvalidNameReason
		wantMsg    string
	}{
		{"simple", "serde", 0, ""},
		{"hyphenated", "tokio-util", 0, ""},
		{"underscored", "serde_json", 0, ""},
		{"mixed case", "Compiler-Builtins", 0, ""},
		{"digits after first", "log4rs", 0, ""},
		{"trailing separator", "foo-", 0, ""},
		{"max length", strings.Repeat("a", MaxNameLength), 0, ""},
		{"too long", strings.Repeat("a", MaxNameLength+1), TooLong, "is too long (max 64 characters)"},
		{"empty", "", Empty, "crate name cannot be empty"},
		{"leading digit", "123bad", StartWithDigit, "cannot start with a digit"},
		{"leading hyphen", "---test", InvalidStart, "invalid character `-` in crate name: `---test`, the first character must be an ASCII character"},
		{"leading underscore", "_foo", InvalidStart, "invalid character `_`"},
		{"plus", "foo+bar", InvalidChar, "invalid character `+` in crate name: `foo+bar`, characters must be ASCII alphanumeric, `-`, or `_`"},
		{"space", "foo bar", InvalidChar, "invalid character ` `"},
		{"non-ascii", "café", InvalidChar, "invalid character `é`"},
		{"non-ascii start", "ñame", InvalidStart, "invalid character `ñ`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantReason == 0 {
				if err != nil {
					t.Fatalf("ValidateName(%q) = %v, want nil", tt.input, err)
				}
				return
			}
			var ine *InvalidNameError
			if !errors.As(err, &ine) {
				t.Fatalf("ValidateName(%q) = %v, want *InvalidNameError", tt.input, err)
			}
			if ine.Reason != tt.wantReason {
				t.Errorf("ValidateName(%q) reason = %v, want %v", tt.input, ine.Reason, tt.wantReason)
			}
			if !strings.Contains(ine.Error(), tt.wantMsg) {
				t.Errorf("ValidateName(%q) = %q, want it to contain %q", tt.input, ine.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateNameCountsCharacters(t *testing.T) {
	// 64 characters but 127 bytes: rejected for its characters, not its length.
	name := "a" + strings.Repeat("é", MaxNameLength-1)
	var ine *InvalidNameError
	if err := ValidateName(name); !errors.As(err, &ine) || ine.Reason != InvalidChar {
		t.Errorf("ValidateName() = %v, want InvalidChar", err)
	}
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"My-Crate", "my_crate"},
		{"foo_bar", "foo_bar"},
		{"FOO", "foo"},
		{"Compiler-Builtins", "compiler_builtins"},
		{"a-b_c-d", "a_b_c_d"},
	}
	for _, tt := range tests {
		if got := CanonicalName(tt.input); got != tt.want {
			t.Errorf("CanonicalName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

var validName = rapid.StringMatching(`[a-zA-Z][a-zA-Z0-9_-]{0,63}`)

func TestCanonicalNameIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := validName.Draw(rt, "name")
		once := CanonicalName(name)
		if twice := CanonicalName(once); once != twice {
			rt.Fatalf("CanonicalName not idempotent: %q -> %q -> %q", name, once, twice)
		}
		if strings.Contains(once, "-") || once != strings.ToLower(once) {
			rt.Fatalf("CanonicalName(%q) = %q, want lowercase without hyphens", name, once)
		}
		if err := ValidateName(name); err != nil {
			rt.Fatalf("ValidateName(%q) = %v, want nil", name, err)
		}
	})
}

func TestSeparatorVariantsShareCanonicalName(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := rapid.StringMatching(`[a-z]{2,10}`).Draw(rt, "base")
		positions := rapid.SliceOfN(rapid.IntRange(1, len(base)-1), 1, 3).Draw(rt, "positions")
		hyphens, underscores := []byte(base), []byte(base)
		for _, p := range positions {
			hyphens[p], underscores[p] = '-', '_'
		}
		if h, u := CanonicalName(string(hyphens)), CanonicalName(string(underscores)); h != u {
			rt.Fatalf("CanonicalName(%q) = %q, CanonicalName(%q) = %q", hyphens, h, underscores, u)
		}
	})
}
