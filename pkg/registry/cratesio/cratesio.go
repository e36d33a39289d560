// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package cratesio provides crates.io naming rules and access to the crates.io API.
package cratesio

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/cargo-avail/internal/httpx"
	"github.com/google/cargo-avail/internal/urlx"
	"github.com/pkg/errors"
)

var registryURL = urlx.MustParse("https://crates.io")

// Crate is the /api/v1/crates/<name> result.
type Crate struct {
	Metadata `json:"crate"`
}

// Metadata is the crate-specific information returned by the API.
type Metadata struct {
	// Name is the spelling the crate was published under.
	Name          string    `json:"id"`
	Repository    string    `json:"repository"`
	MaxVersion    string    `json:"max_version"`
	NewestVersion string    `json:"newest_version"`
	Created       time.Time `json:"created_at"`
	Updated       time.Time `json:"updated_at"`
}

// Registry is a crates.io package registry.
type Registry interface {
	Crate(context.Context, string) (*Crate, error)
}

// HTTPRegistry is a Registry implementation that uses the crates.io HTTP API.
type HTTPRegistry struct {
	Client httpx.BasicClient
	// URL overrides the API host. Defaults to https://crates.io.
	URL *url.URL
}

// Crate provides API information about the given crate.
// The API resolves separator and case variants to the published crate.
func (r HTTPRegistry) Crate(ctx context.Context, pkg string) (*Crate, error) {
	base := registryURL
	if r.URL != nil {
		base = r.URL
	}
	pathURL, err := url.Parse(path.Join("/api/v1/crates", pkg))
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, base.ResolveReference(pathURL).String(), nil)
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		io.Copy(io.Discard, resp.Body)
		return nil, errors.Wrap(errors.New(resp.Status), "fetching crate metadata")
	}
	var c Crate
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

var _ Registry = &HTTPRegistry{}
