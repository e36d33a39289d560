// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package index provides existence lookups against the crates.io index, either
// over the sparse HTTP protocol or from a local git clone.
package index

import "context"

// Outcome classifies a single index lookup.
type Outcome int

const (
	// Found means an index entry exists for the spelling.
	Found Outcome = iota + 1
	// NotFound means the index has no entry for the spelling.
	NotFound
	// UnexpectedStatus means the index responded with neither 200 nor 404.
	UnexpectedStatus
	// TransportError means no response was received.
	TransportError
	// Timeout means no response was received within the request timeout.
	Timeout
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	case UnexpectedStatus:
		return "unexpected status"
	case TransportError:
		return "transport error"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// LookupResult is the classified result of probing one spelling.
type LookupResult struct {
	Outcome Outcome
	// Location is the URL or repository path that was probed.
	Location string
	// StatusCode is the HTTP status, if a response was received.
	StatusCode int
	// Err describes the failure for UnexpectedStatus, TransportError and Timeout.
	Err error
}

// Failed reports whether the lookup could not determine existence.
func (r LookupResult) Failed() bool {
	return r.Outcome != Found && r.Outcome != NotFound
}

// Index answers whether a concrete crate spelling has an index entry.
// Implementations must be safe for concurrent use.
type Index interface {
	Lookup(ctx context.Context, name string) LookupResult
}
