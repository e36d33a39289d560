// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package avail

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/cargo-avail/pkg/registry/cratesio"
	"github.com/google/cargo-avail/pkg/registry/cratesio/index"
	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

// fakeIndex answers from a set of published spellings.
type fakeIndex struct {
	published map[string]bool
	// fail maps a spelling to the failing outcome reported for it.
	fail map[string]index.Outcome
	// panicOn makes Lookup panic for that spelling.
	panicOn string

	mu    sync.Mutex
	calls []string
}

func newFakeIndex(published ...string) *fakeIndex {
	f := &fakeIndex{published: make(map[string]bool), fail: make(map[string]index.Outcome)}
	for _, p := range published {
		f.published[p] = true
	}
	return f
}

func (f *fakeIndex) Lookup(ctx context.Context, name string) index.LookupResult {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if name == f.panicOn {
		panic("lookup exploded")
	}
	if o, ok := f.fail[name]; ok {
		return index.LookupResult{Outcome: o, Location: name, Err: errors.New("lookup of " + name + " failed")}
	}
	if f.published[name] {
		return index.LookupResult{Outcome: index.Found, Location: name}
	}
	return index.LookupResult{Outcome: index.NotFound, Location: name}
}

func (f *fakeIndex) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Availability
		wantCalls []string
	}{
		{"published", "serde", Taken, []string{"serde"}},
		{"unpublished", "zzz-not-a-real-crate", Available, []string{"zzz-not-a-real-crate", "zzz_not_a_real_crate"}},
		{"hyphen registered, hyphen asked", "tokio-util", Taken, []string{"tokio-util"}},
		{"hyphen registered, underscore asked", "tokio_util", Taken, []string{"tokio-util"}},
		{"underscore registered, hyphen asked", "serde-json", Taken, []string{"serde-json", "serde_json"}},
		{"case folded", "SERDE", Taken, []string{"serde"}},
		{"reserved", "std", Reserved, nil},
		{"reserved uppercase", "STD", Reserved, nil},
		{"reserved separator variant", "Compiler-Builtins", Reserved, nil},
		{"windows device", "nul", Reserved, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := newFakeIndex("serde", "tokio-util", "serde_json")
			got, err := NewChecker(idx).Check(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Check(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Check(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if diff := cmp.Diff(tt.wantCalls, idx.Calls()); diff != "" {
				t.Errorf("Lookups mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckInvalid(t *testing.T) {
	idx := newFakeIndex()
	_, err := NewChecker(idx).Check(context.Background(), "foo+bar")
	var ine *cratesio.InvalidNameError
	if !errors.As(err, &ine) {
		t.Fatalf("Check() error = %v, want *cratesio.InvalidNameError", err)
	}
	if ine.Char != '+' || !strings.Contains(err.Error(), "`+`") {
		t.Errorf("Check() error = %v, want it to name `+`", err)
	}
	if len(idx.Calls()) != 0 {
		t.Errorf("invalid name was looked up: %v", idx.Calls())
	}
}

func TestCheckLookupFailureStopsProbing(t *testing.T) {
	for _, outcome := range []index.Outcome{index.UnexpectedStatus, index.TransportError, index.Timeout} {
		t.Run(outcome.String(), func(t *testing.T) {
			idx := newFakeIndex("foo_bar")
			idx.fail["foo-bar"] = outcome
			_, err := NewChecker(idx).Check(context.Background(), "foo_bar")
			var le *LookupError
			if !errors.As(err, &le) {
				t.Fatalf("Check() error = %v, want *LookupError", err)
			}
			if le.Spelling != "foo-bar" || le.Name != "foo_bar" || le.Result.Outcome != outcome {
				t.Errorf("LookupError = %+v", le)
			}
			if le.Timeout() != (outcome == index.Timeout) {
				t.Errorf("Timeout() = %v for %v", le.Timeout(), outcome)
			}
			if diff := cmp.Diff([]string{"foo-bar"}, idx.Calls()); diff != "" {
				t.Errorf("Lookups mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckCustomReserved(t *testing.T) {
	c := &Checker{Index: newFakeIndex(), Reserved: cratesio.NewReservedNames("my-internal")}
	if got, err := c.Check(context.Background(), "My_Internal"); err != nil || got != Reserved {
		t.Errorf("Check() = %v, %v, want %v", got, err, Reserved)
	}
	if got, err := c.Check(context.Background(), "std"); err != nil || got != Available {
		t.Errorf("Check(std) = %v, %v, want %v", got, err, Available)
	}
}

func TestCheckSeparatorCollision(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[a-z]{2,6}`), 2, 4).Draw(rt, "words")
		hyphenated := strings.Join(words, "-")
		underscored := strings.Join(words, "_")
		published := rapid.SampledFrom([]string{hyphenated, underscored}).Draw(rt, "published")
		if cratesio.DefaultReservedNames().Contains(cratesio.CanonicalName(published)) {
			return
		}
		c := NewChecker(newFakeIndex(published))
		for _, asked := range []string{hyphenated, underscored, strings.ToUpper(hyphenated)} {
			got, err := c.Check(context.Background(), asked)
			if err != nil || got != Taken {
				rt.Fatalf("Check(%q) with %q published = %v, %v, want %v", asked, published, got, err, Taken)
			}
		}
	})
}
