// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package avail

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/cargo-avail/internal/cache"
	"github.com/google/cargo-avail/internal/httpx"
	"github.com/google/cargo-avail/internal/ratex"
	"github.com/google/cargo-avail/pkg/registry/cratesio/index"
)

// DefaultUserAgent identifies requests to crates.io.
const DefaultUserAgent = "cargo-avail (+https://github.com/google/cargo-avail)"

// TransportOptions configures NewTransport.
type TransportOptions struct {
	// UserAgent defaults to DefaultUserAgent.
	UserAgent string
	// Timeout bounds each HTTP exchange. Zero means no client-level timeout;
	// index.SparseIndex applies its own per-lookup deadline either way.
	Timeout time.Duration
	// MinInterval, if positive, spaces requests at least this far apart and
	// backs off further when the server pushes back.
	MinInterval time.Duration
	// Cache coalesces identical concurrent requests and remembers responses
	// for the life of the client.
	Cache bool
}

// NewTransport builds the HTTP client shared by all lookups. The result is
// safe for concurrent use.
func NewTransport(opts TransportOptions) httpx.BasicClient {
	var client httpx.BasicClient = &http.Client{Timeout: opts.Timeout}
	if opts.MinInterval > 0 {
		client = &httpx.RateLimitedClient{BasicClient: client, Limiter: ratex.NewBackoffLimiter(opts.MinInterval)}
	}
	// Cache hits are not paced.
	if opts.Cache {
		client = httpx.NewCachedClient(client, &cache.CoalescingMemoryCache[string, []byte]{})
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &httpx.WithUserAgent{BasicClient: client, UserAgent: ua}
}

// NewIndex returns a sparse index at u, or index.DefaultURL when u is nil,
// reached through a transport built from opts. MinInterval paces lookups
// before each one's timeout starts, so queued lookups do not time out while
// they wait their turn.
func NewIndex(u *url.URL, opts TransportOptions) *index.SparseIndex {
	interval := opts.MinInterval
	opts.MinInterval = 0
	idx := index.NewSparseIndex(NewTransport(opts))
	if u != nil {
		idx.URL = u
	}
	if opts.Timeout > 0 {
		idx.Timeout = opts.Timeout
	}
	if interval > 0 {
		idx.Limiter = ratex.NewBackoffLimiter(interval)
	}
	return idx
}
