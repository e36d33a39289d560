// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package avail

import (
	"fmt"

	"github.com/google/cargo-avail/pkg/registry/cratesio/index"
)

// LookupError reports an index lookup that could not determine whether a
// spelling exists. Variants after Spelling were not probed.
type LookupError struct {
	Name     string
	Spelling string
	Result   index.LookupResult
}

func (e *LookupError) Error() string {
	if e.Result.Err != nil {
		return e.Result.Err.Error()
	}
	return fmt.Sprintf("looking up %s: %s", e.Spelling, e.Result.Outcome)
}

func (e *LookupError) Unwrap() error { return e.Result.Err }

// Timeout reports whether the lookup exceeded its request timeout.
func (e *LookupError) Timeout() bool { return e.Result.Outcome == index.Timeout }

// InternalError reports a fault raised while checking a single name.
type InternalError struct {
	Name  string
	Panic any
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("panic while checking %q: %v", e.Name, e.Panic)
}
