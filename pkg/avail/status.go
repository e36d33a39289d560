// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package avail decides whether crate names would be accepted by crates.io.
package avail

import (
	"github.com/google/cargo-avail/pkg/registry/cratesio"
	"github.com/pkg/errors"
)

// Availability is the result of a successful check.
type Availability int

const (
	// Available means no crate occupies the name's canonical form.
	Available Availability = iota + 1
	// Taken means a published crate occupies the name's canonical form.
	Taken
	// Reserved means crates.io refuses the name regardless of registration.
	Reserved
)

func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case Taken:
		return "taken"
	case Reserved:
		return "reserved"
	default:
		return "unknown"
	}
}

// Status is the terminal state of one name in a batch.
//
// New kinds may be added. Callers switching on a Status should keep a default
// case.
type Status int

const (
	StatusAvailable Status = iota + 1
	StatusTaken
	StatusReserved
	// StatusInvalid means the name failed validation.
	StatusInvalid
	// StatusUnavailable means availability could not be determined, either
	// because a lookup failed or because the check itself faulted.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusTaken:
		return "taken"
	case StatusReserved:
		return "reserved"
	case StatusInvalid:
		return "invalid"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Result is the outcome of checking the name at position Index of a batch.
type Result struct {
	Index        int
	Name         string
	Availability Availability
	// Err is an *cratesio.InvalidNameError, *LookupError or *InternalError.
	Err error
}

// Status classifies the result.
func (r Result) Status() Status {
	if r.Err != nil {
		var ine *cratesio.InvalidNameError
		if errors.As(r.Err, &ine) {
			return StatusInvalid
		}
		return StatusUnavailable
	}
	switch r.Availability {
	case Available:
		return StatusAvailable
	case Taken:
		return StatusTaken
	case Reserved:
		return StatusReserved
	default:
		return StatusUnavailable
	}
}
