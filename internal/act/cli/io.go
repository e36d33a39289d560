// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package cli runs act components as cobra commands.
package cli

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IO provides input/output streams for CLI commands.
type IO struct {
	In  io.Reader // stdin
	Out io.Writer // stdout
	Err io.Writer // stderr
}

// IsTerminal reports whether s is attached to a terminal. Streams that are not
// files, such as test buffers, are never terminals.
func IsTerminal(s any) bool {
	f, ok := s.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
