// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cratesio

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest crate name crates.io will accept, in characters.
const MaxNameLength = 64

// InvalidNameReason identifies which naming rule a crate name violated.
type InvalidNameReason int

const (
	TooLong InvalidNameReason = iota + 1
	Empty
	StartWithDigit
	InvalidStart
	InvalidChar
)

// InvalidNameError is returned for names crates.io would refuse to publish.
type InvalidNameError struct {
	Reason InvalidNameReason
	Name   string
	// Char is the offending character for InvalidStart and InvalidChar.
	Char rune
}

func (e *InvalidNameError) Error() string {
	switch e.Reason {
	case TooLong:
		return fmt.Sprintf("crate name `%s` is too long (max %d characters)", e.Name, MaxNameLength)
	case Empty:
		return "crate name cannot be empty"
	case StartWithDigit:
		return fmt.Sprintf("the name `%s` cannot start with a digit", e.Name)
	case InvalidStart:
		return fmt.Sprintf("invalid character `%c` in crate name: `%s`, the first character must be an ASCII character", e.Char, e.Name)
	case InvalidChar:
		return fmt.Sprintf("invalid character `%c` in crate name: `%s`, characters must be ASCII alphanumeric, `-`, or `_`", e.Char, e.Name)
	default:
		return fmt.Sprintf("invalid crate name `%s`", e.Name)
	}
}

func isASCIIDigit(r rune) bool  { return '0' <= r && r <= '9' }
func isASCIILetter(r rune) bool { return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') }

// ValidateName applies the crates.io publish-time naming rules.
//
// Rules are checked in the same order as the registry so the reported reason
// matches what `cargo publish` would print.
func ValidateName(name string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return &InvalidNameError{Reason: TooLong, Name: name}
	}
	if name == "" {
		return &InvalidNameError{Reason: Empty}
	}
	for i, r := range name {
		if i == 0 {
			if isASCIIDigit(r) {
				return &InvalidNameError{Reason: StartWithDigit, Name: name}
			}
			if !isASCIILetter(r) {
				return &InvalidNameError{Reason: InvalidStart, Name: name, Char: r}
			}
			continue
		}
		if !isASCIILetter(r) && !isASCIIDigit(r) && r != '-' && r != '_' {
			return &InvalidNameError{Reason: InvalidChar, Name: name, Char: r}
		}
	}
	return nil
}

// CanonicalName returns the form crates.io uses to detect name collisions:
// lowercase, with every '-' replaced by '_'.
func CanonicalName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}
