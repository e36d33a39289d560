// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package httpxtest provides scripted httpx.BasicClient implementations for tests.
package httpxtest

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type Call struct {
	Method   string
	URL      string
	Response *http.Response
	Error    error
}

// Request builds the request this call describes.
func (c Call) Request() *http.Request {
	method := c.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequest(method, c.URL, nil)
	if err != nil {
		panic(err)
	}
	return req
}

// MockClient answers requests with Calls, in order.
type MockClient struct {
	Calls             []Call
	URLValidator      func(expected, actual string)
	SkipURLValidation bool
	callCount         int
}

func (m *MockClient) Do(req *http.Request) (*http.Response, error) {
	if m.callCount >= len(m.Calls) {
		panic("unexpected request")
	}
	call := m.Calls[m.callCount]
	m.callCount++

	if !m.SkipURLValidation && (m.URLValidator == nil) {
		panic("URL validation requested but not configured")
	} else if m.SkipURLValidation && (m.URLValidator != nil) {
		panic("URL validation disabled but configured")
	}
	if m.URLValidator != nil {
		if call.Method != "" {
			m.URLValidator(call.Method+" "+call.URL, req.Method+" "+req.URL.String())
		} else {
			m.URLValidator(call.URL, req.URL.String())
		}
	}

	return call.Response, call.Error
}

func (m *MockClient) CallCount() int {
	return m.callCount
}

func NewURLValidator(t *testing.T) func(string, string) {
	return func(expected, actual string) {
		t.Helper()
		if diff := cmp.Diff(expected, actual); diff != "" {
			t.Fatalf("URL mismatch (-want +got):\n%s", diff)
		}
	}
}

// Route is a canned answer for one URL.
type Route struct {
	StatusCode int
	Error      error
	// Block, if non-nil, delays the answer until it is closed or the request
	// context is done.
	Block <-chan struct{}
}

// RouteClient answers requests by URL and is safe for concurrent use, unlike
// MockClient. Unrouted URLs receive NotFound.
type RouteClient struct {
	Routes map[string]Route
	mu     sync.Mutex
	seen   []string
}

func (c *RouteClient) Do(req *http.Request) (*http.Response, error) {
	u := req.URL.String()
	c.mu.Lock()
	c.seen = append(c.seen, u)
	c.mu.Unlock()
	r, ok := c.Routes[u]
	if !ok {
		r = Route{StatusCode: http.StatusNotFound}
	}
	if r.Block != nil {
		select {
		case <-r.Block:
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
	if r.Error != nil {
		return nil, r.Error
	}
	return &http.Response{
		Status:     fmt.Sprintf("%d %s", r.StatusCode, http.StatusText(r.StatusCode)),
		StatusCode: r.StatusCode,
		Body:       Body(""),
		Request:    req,
	}, nil
}

// Requests returns the URLs requested so far, in arrival order.
func (c *RouteClient) Requests() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.seen...)
}
