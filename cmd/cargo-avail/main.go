// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/google/cargo-avail/internal/act/cli"
	"github.com/google/cargo-avail/internal/command/check"
	"github.com/pkg/errors"
)

// version is set at link time for release builds.
var version = ""

func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

func main() {
	cmd := check.Command()
	cmd.Version = buildVersion()
	cmd.SetArgs(check.HyphenNames(cmd, check.SubcommandArgs(os.Args[1:], os.Getenv)))
	err := cmd.Execute()
	code := cli.ExitCode(err)
	var ee *cli.ExitError
	if err != nil && !(errors.As(err, &ee) && ee.Err == nil) {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
	}
	if code == cli.UsageExitCode {
		fmt.Fprintf(os.Stderr, "usage: %s\n", cmd.UseLine())
	}
	os.Exit(code)
}
