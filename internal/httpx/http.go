// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package httpx provides a simpler http.Client abstraction and derivative uses.
package httpx

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/google/cargo-avail/internal/cache"
)

// BasicClient is a simpler http.Client that only requires a Do method.
type BasicClient interface {
	Do(*http.Request) (*http.Response, error)
}

var _ BasicClient = http.DefaultClient

// WithUserAgent is a basic HTTP client that adds a User-Agent header.
type WithUserAgent struct {
	BasicClient
	UserAgent string
}

var _ BasicClient = &WithUserAgent{}

// Do adds the User-Agent header and sends the request.
func (c *WithUserAgent) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.UserAgent)
	return c.BasicClient.Do(req)
}

// CachedClient is a BasicClient that caches responses.
type CachedClient struct {
	BasicClient
	ch cache.Cache[string, []byte]
}

// NewCachedClient returns a new CachedClient.
func NewCachedClient(client BasicClient, c cache.Cache[string, []byte]) *CachedClient {
	return &CachedClient{client, c}
}

// Do attempts to fetch from cache (if applicable) or fulfills the request using the underlying client.
// Concurrent requests for the same URL share a single upstream request.
// Server errors and throttled (429) responses are returned but never cached.
func (cc *CachedClient) Do(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return cc.BasicClient.Do(req)
	}
	key := req.Method + " " + req.URL.String()
	var uncached []byte
	val, err := cc.ch.GetOrSet(key, func() ([]byte, error) {
		resp, err := cc.BasicClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		buf := new(bytes.Buffer)
		if err := resp.Write(buf); err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599) {
			uncached = buf.Bytes()
			return nil, errServerResponse
		}
		return buf.Bytes(), nil
	})
	if err == errServerResponse && uncached != nil {
		return http.ReadResponse(bufio.NewReader(bytes.NewReader(uncached)), req)
	} else if err == errServerResponse {
		// Coalesced onto another request's server error; ask again ourselves.
		return cc.BasicClient.Do(req)
	} else if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(val)), req)
}

type serverResponseError struct{}

func (serverResponseError) Error() string { return "server error response" }

var errServerResponse error = serverResponseError{}

var _ BasicClient = &CachedClient{}

// Limiter paces requests and adapts to server feedback.
type Limiter interface {
	Wait(context.Context) error
	Backoff()
	Success()
}

// RateLimitedClient waits on a Limiter before each request. Responses asking
// the client to slow down (429, 503) widen the limiter's interval.
type RateLimitedClient struct {
	BasicClient
	Limiter Limiter
}

func (c *RateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.Limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	resp, err := c.BasicClient.Do(req)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		c.Limiter.Backoff()
	default:
		c.Limiter.Success()
	}
	return resp, nil
}

var _ BasicClient = &RateLimitedClient{}

// FSHandler serves the files of fs, relative to its root, at their URL paths.
func FSHandler(fs billy.Filesystem) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		s, err := fs.Stat(name)
		if err != nil {
			if os.IsNotExist(err) {
				http.NotFound(w, r)
			} else {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
			return
		}
		if s.IsDir() {
			http.NotFound(w, r)
			return
		}
		file, err := fs.Open(name)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		defer file.Close()
		http.ServeContent(w, r, name, s.ModTime(), file)
	})
}
