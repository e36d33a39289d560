// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package check

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/google/cargo-avail/internal/act/cli"
	"github.com/google/cargo-avail/pkg/avail"
	"github.com/pkg/errors"
)

// record is one NDJSON output line.
type record struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
}

var statusColors = map[avail.Status]*color.Color{
	avail.StatusAvailable:   color.New(color.FgGreen),
	avail.StatusTaken:       color.New(color.FgRed),
	avail.StatusReserved:    color.New(color.FgRed),
	avail.StatusInvalid:     color.New(color.FgRed),
	avail.StatusUnavailable: color.New(color.FgYellow),
}

func render(cio cli.IO, cfg Config, results []avail.Result, details []string) error {
	colorize := cli.IsTerminal(cio.Out) && !color.NoColor
	enc := json.NewEncoder(cio.Out)
	enc.SetEscapeHTML(false)
	var failed int
	for i, r := range results {
		status := r.Status()
		if status == avail.StatusUnavailable {
			failed++
		}
		var detail string
		if details != nil {
			detail = details[i]
		}
		if cfg.JSON {
			if err := enc.Encode(newRecord(r, detail)); err != nil {
				return err
			}
			continue
		}
		if cfg.AvailableOnly {
			switch status {
			case avail.StatusTaken, avail.StatusReserved, avail.StatusInvalid:
				continue
			}
		}
		word, msg := statusText(r)
		if detail != "" {
			msg = detail
		}
		line := sanitize(word)
		if colorize {
			if c, ok := statusColors[status]; ok {
				line = c.Sprint(line)
			}
		}
		if msg != "" {
			line += ": " + sanitize(msg)
		}
		if _, err := fmt.Fprintf(cio.Out, "%s\t%s\n", sanitize(r.Name), line); err != nil {
			return err
		}
	}
	if failed > 0 {
		noun := "names"
		if failed == 1 {
			noun = "name"
		}
		color.New(color.FgYellow).Fprintf(cio.Err, "warning: %d %s could not be checked (network error)\n", failed, noun)
	}
	return nil
}

// statusText returns the status word for a text line and its detail, if any.
func statusText(r avail.Result) (word, detail string) {
	switch r.Status() {
	case avail.StatusAvailable, avail.StatusTaken, avail.StatusReserved:
		return r.Availability.String(), ""
	case avail.StatusInvalid:
		return "invalid", r.Err.Error()
	case avail.StatusUnavailable:
		var ie *avail.InternalError
		if errors.As(r.Err, &ie) {
			return "internal error", r.Err.Error()
		}
		return "unknown", errString(r.Err)
	default:
		return "unknown", errString(r.Err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func newRecord(r avail.Result, detail string) record {
	rec := record{Name: r.Name, Detail: detail}
	switch r.Status() {
	case avail.StatusAvailable, avail.StatusTaken, avail.StatusReserved:
		rec.Status = r.Availability.String()
	case avail.StatusInvalid:
		rec.Status = "invalid"
		rec.Error = r.Err.Error()
	default:
		word, msg := statusText(r)
		rec.Status = "error"
		rec.Error = word + ": " + msg
	}
	return rec
}

// sanitize escapes control characters so each result stays on one
// tab-separated line.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == 0:
			b.WriteString(`\0`)
		case unicode.IsControl(r):
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
