// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/cargo-avail/internal/httpx"
	"github.com/google/cargo-avail/internal/urlx"
	"github.com/pkg/errors"
)

// DefaultURL is the crates.io sparse index.
var DefaultURL = urlx.MustParse("https://index.crates.io/")

// DefaultTimeout bounds a single sparse index request.
const DefaultTimeout = 10 * time.Second

// SparseIndex looks up crates using the sparse index HTTP protocol.
type SparseIndex struct {
	Client httpx.BasicClient
	// URL is the index root. Defaults to DefaultURL.
	URL *url.URL
	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Limiter, if set, paces requests. The wait for a slot is not part of
	// the request's Timeout.
	Limiter httpx.Limiter
}

// NewSparseIndex returns a SparseIndex for crates.io using the given client.
func NewSparseIndex(client httpx.BasicClient) *SparseIndex {
	return &SparseIndex{Client: client, URL: DefaultURL, Timeout: DefaultTimeout}
}

// EntryURL returns the index URL for the given spelling.
func (s *SparseIndex) EntryURL(name string) string {
	base := s.URL
	if base == nil {
		base = DefaultURL
	}
	return base.JoinPath(EntryPath(name)).String()
}

// Lookup issues a single GET for the spelling's index entry.
func (s *SparseIndex) Lookup(ctx context.Context, name string) LookupResult {
	loc := s.EntryURL(name)
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			if isTimeout(ctx, err) {
				return LookupResult{Outcome: Timeout, Location: loc, Err: errors.Wrap(err, "waiting for request slot")}
			}
			return LookupResult{Outcome: TransportError, Location: loc, Err: errors.Wrap(err, "waiting for request slot")}
		}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return LookupResult{Outcome: TransportError, Location: loc, Err: errors.Wrap(err, "creating request")}
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return LookupResult{Outcome: Timeout, Location: loc, Err: errors.Wrapf(err, "GET %s: timed out after %s", loc, timeout)}
		}
		return LookupResult{Outcome: TransportError, Location: loc, Err: errors.Wrapf(err, "GET %s", loc)}
	}
	defer resp.Body.Close()
	if s.Limiter != nil {
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			s.Limiter.Backoff()
		default:
			s.Limiter.Success()
		}
	}
	// Drain so the connection can be reused; the entry contents are not needed.
	io.Copy(io.Discard, resp.Body)
	switch resp.StatusCode {
	case http.StatusOK:
		return LookupResult{Outcome: Found, Location: loc, StatusCode: resp.StatusCode}
	case http.StatusNotFound:
		return LookupResult{Outcome: NotFound, Location: loc, StatusCode: resp.StatusCode}
	default:
		return LookupResult{
			Outcome:    UnexpectedStatus,
			Location:   loc,
			StatusCode: resp.StatusCode,
			Err:        &UnexpectedStatusError{URL: loc, StatusCode: resp.StatusCode, Status: resp.Status},
		}
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

var _ Index = &SparseIndex{}
