// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package index

import "fmt"

// UnexpectedStatusError is reported when the sparse index answers with a status
// other than 200 or 404.
type UnexpectedStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *UnexpectedStatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, status)
}
