// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package act separates a command's validated input, its dependencies and the
// operation itself so that the operation can be exercised without a CLI.
package act

import "context"

// Input is a validated input type.
type Input interface {
	Validate() error
}

// Deps is a marker type for dependency containers.
type Deps any

// InitDeps initializes dependencies from context.
type InitDeps[D Deps] func(context.Context) (D, error)

// Action is a frontend-agnostic operation.
type Action[I Input, O any, D Deps] func(context.Context, I, D) (*O, error)

// ExitCoder is implemented by outputs that determine the process exit status.
type ExitCoder interface {
	ExitCode() int
}
