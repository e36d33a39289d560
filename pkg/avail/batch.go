// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package avail

import (
	"context"
	"sync"

	"github.com/google/cargo-avail/pkg/registry/cratesio"
	"golang.org/x/sync/errgroup"
)

// MaxConcurrentRequests is the default number of names checked at once.
const MaxConcurrentRequests = 20

// BatchOptions configures CheckAll.
type BatchOptions struct {
	// Concurrency bounds in-flight checks. Defaults to MaxConcurrentRequests.
	Concurrency int
	// OnResult, if set, is called once per name as its check completes.
	// Calls are serialized but arrive in completion order.
	OnResult func(Result)
}

// CheckAll checks names concurrently and returns one Result per name, in input
// order. A fault while checking one name is reported as an *InternalError for
// that name alone.
func (c *Checker) CheckAll(ctx context.Context, names []string, opts BatchOptions) []Result {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = MaxConcurrentRequests
	}
	results := make([]Result, len(names))
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(limit)
	for i, name := range names {
		g.Go(func() error {
			r := c.checkOne(ctx, i, name)
			results[i] = r
			if opts.OnResult != nil {
				mu.Lock()
				defer mu.Unlock()
				opts.OnResult(r)
			}
			return nil
		})
	}
	g.Wait()
	return results
}

func (c *Checker) checkOne(ctx context.Context, i int, name string) (r Result) {
	r = Result{Index: i, Name: name}
	defer func() {
		if p := recover(); p != nil {
			r = Result{Index: i, Name: name, Err: &InternalError{Name: name, Panic: p}}
		}
	}()
	r.Availability, r.Err = c.Check(ctx, name)
	return r
}

// Outcome classifies a whole batch.
type Outcome int

const (
	// AllAvailable means every name is available.
	AllAvailable Outcome = iota
	// Unavailable means some name is taken, reserved or invalid, and every
	// name was checked.
	Unavailable
	// PartialFailure means availability could not be determined for some name.
	PartialFailure
)

func (o Outcome) String() string {
	switch o {
	case AllAvailable:
		return "all available"
	case Unavailable:
		return "unavailable"
	case PartialFailure:
		return "partial failure"
	default:
		return "unknown"
	}
}

// ExitCode maps the outcome to the process exit status.
func (o Outcome) ExitCode() int {
	switch o {
	case AllAvailable:
		return 0
	case Unavailable:
		return 1
	case PartialFailure:
		return 3
	default:
		return 3
	}
}

// Summarize classifies a batch. Undetermined results outrank determined
// unavailability.
func Summarize(results []Result) Outcome {
	out := AllAvailable
	for _, r := range results {
		switch r.Status() {
		case StatusAvailable:
		case StatusTaken, StatusReserved, StatusInvalid:
			out = Unavailable
		case StatusUnavailable:
			return PartialFailure
		default:
			return PartialFailure
		}
	}
	return out
}

// Dedupe drops names whose canonical form appeared earlier, keeping the first
// spelling and the input order.
func Dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		c := cratesio.CanonicalName(n)
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, n)
	}
	return out
}
