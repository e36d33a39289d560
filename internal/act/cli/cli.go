// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/google/cargo-avail/internal/act"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type Deps interface {
	SetIO(IO)
}

// ParseArgs populates an Input from positional arguments.
type ParseArgs[I act.Input] func(in *I, args []string) error

// ExitError requests a specific process exit status. Err may be nil when the
// command has already reported everything it needs to.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// UsageExitCode is the exit status for invalid invocations.
const UsageExitCode = 2

// ExitCode returns the process exit status for an error returned by RunE.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return UsageExitCode
}

// RunE constructs a cobra.Command.RunE from act components.
// This function wires together:
//  1. Parsing positional arguments into the Input
//  2. Validating the Input
//  3. Initializing dependencies
//  4. Attaching IO streams to dependencies
//  5. Executing the action
//  6. Translating an act.ExitCoder output into an *ExitError
func RunE[I act.Input, O any, D Deps](
	cfg *I,
	parseArgs ParseArgs[I],
	initDeps act.InitDeps[D],
	action act.Action[I, O, D],
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := parseArgs(cfg, args); err != nil {
			return &ExitError{Code: UsageExitCode, Err: err}
		}
		if err := (*cfg).Validate(); err != nil {
			return &ExitError{Code: UsageExitCode, Err: err}
		}
		deps, err := initDeps(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "initializing dependencies")
		}
		deps.SetIO(IO{
			In:  cmd.InOrStdin(),
			Out: cmd.OutOrStdout(),
			Err: cmd.ErrOrStderr(),
		})
		out, err := action(cmd.Context(), *cfg, deps)
		if err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		if ec, ok := any(out).(act.ExitCoder); ok {
			if code := ec.ExitCode(); code != 0 {
				return &ExitError{Code: code}
			}
		}
		return nil
	}
}
