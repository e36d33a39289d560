// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package avail

import (
	"context"

	"github.com/google/cargo-avail/pkg/registry/cratesio"
	"github.com/google/cargo-avail/pkg/registry/cratesio/index"
)

// Checker runs the availability pipeline for single names.
// A Checker is safe for concurrent use if its Index is.
type Checker struct {
	Index    index.Index
	Reserved *cratesio.ReservedNames
}

// NewChecker returns a Checker using idx and the crates.io reserved names.
func NewChecker(idx index.Index) *Checker {
	return &Checker{Index: idx, Reserved: cratesio.DefaultReservedNames()}
}

// Check determines whether name would be accepted by crates.io.
//
// The returned error is a *cratesio.InvalidNameError if name is malformed or a
// *LookupError if the index could not answer for one of its spellings.
func (c *Checker) Check(ctx context.Context, name string) (Availability, error) {
	if err := cratesio.ValidateName(name); err != nil {
		return 0, err
	}
	canonical := cratesio.CanonicalName(name)
	if c.Reserved != nil && c.Reserved.Contains(canonical) {
		return Reserved, nil
	}
	for _, spelling := range index.Variants(canonical) {
		res := c.Index.Lookup(ctx, spelling)
		switch res.Outcome {
		case index.Found:
			return Taken, nil
		case index.NotFound:
			continue
		default:
			// A spelling that could not be looked up cannot be assumed absent.
			return 0, &LookupError{Name: name, Spelling: spelling, Result: res}
		}
	}
	return Available, nil
}
