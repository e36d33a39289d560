// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cratesio

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/cargo-avail/internal/httpx/httpxtest"
	"github.com/google/cargo-avail/internal/urlx"
	"github.com/google/go-cmp/cmp"
)

func TestHTTPRegistry_Crate(t *testing.T) {
	testCases := []struct {
		name        string
		pkg         string
		registry    *HTTPRegistry
		call        httpxtest.Call
		expected    *Crate
		expectedErr error
	}{
		{
			name: "Success",
			pkg:  "serde-json",
			call: httpxtest.Call{
				URL: "https://crates.io/api/v1/crates/serde-json",
				Response: &http.Response{
					StatusCode: 200,
					Body: httpxtest.Body(`{
                        "crate": {
                            "id": "serde_json",
                            "repository": "https://github.com/serde-rs/json",
                            "max_version": "1.0.140",
                            "created_at": "2015-08-07T19:30:58Z"
                        }
                    }`),
				},
			},
			expected: &Crate{
				Metadata: Metadata{
					Name:       "serde_json",
					Repository: "https://github.com/serde-rs/json",
					MaxVersion: "1.0.140",
					Created:    time.Date(2015, 8, 7, 19, 30, 58, 0, time.UTC),
				},
			},
		},
		{
			name:     "Custom URL",
			pkg:      "serde",
			registry: &HTTPRegistry{URL: urlx.MustParse("http://mirror.local")},
			call: httpxtest.Call{
				URL: "http://mirror.local/api/v1/crates/serde",
				Response: &http.Response{
					StatusCode: 200,
					Body:       httpxtest.Body(`{"crate": {"id": "serde"}}`),
				},
			},
			expected: &Crate{Metadata: Metadata{Name: "serde"}},
		},
		{
			name: "HTTP Error",
			pkg:  "serde",
			call: httpxtest.Call{
				URL:   "https://crates.io/api/v1/crates/serde",
				Error: errors.New("network error"),
			},
			expectedErr: errors.New("network error"),
		},
		{
			name: "HTTP Error Status",
			pkg:  "nonexistent-pkg",
			call: httpxtest.Call{
				URL:      "https://crates.io/api/v1/crates/nonexistent-pkg",
				Response: &http.Response{StatusCode: 404, Status: http.StatusText(404), Body: httpxtest.Body("")},
			},
			expectedErr: errors.New("fetching crate metadata: Not Found"),
		},
		{
			name: "JSON Decode Error",
			pkg:  "bad-json-package",
			call: httpxtest.Call{
				URL:      "https://crates.io/api/v1/crates/bad-json-package",
				Response: &http.Response{StatusCode: 200, Body: httpxtest.Body(`{"invalid": "json",,}`)},
			},
			expectedErr: errors.New("invalid character ',' looking for beginning of object key string"),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockClient := &httpxtest.MockClient{
				Calls:        []httpxtest.Call{tc.call},
				URLValidator: httpxtest.NewURLValidator(t),
			}
			reg := HTTPRegistry{}
			if tc.registry != nil {
				reg = *tc.registry
			}
			reg.Client = mockClient
			actual, err := reg.Crate(context.Background(), tc.pkg)
			if tc.expectedErr != nil {
				if err == nil || err.Error() != tc.expectedErr.Error() {
					t.Errorf("Error mismatch: got %v, want %v", err, tc.expectedErr)
				}
			} else if err != nil {
				t.Fatalf("Crate() unexpected error: %v", err)
			}
			if tc.expected != nil {
				if diff := cmp.Diff(tc.expected, actual); diff != "" {
					t.Errorf("Crate mismatch (-want +got):\n%s", diff)
				}
			}
			if mockClient.CallCount() != 1 {
				t.Errorf("Expected 1 call, got %d", mockClient.CallCount())
			}
		})
	}
}
