// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package config loads cargo-avail settings from TOML or YAML files.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the on-disk configuration. Every field is optional.
type File struct {
	// IndexURL is the sparse index base URL.
	IndexURL string `toml:"index_url" yaml:"index_url"`
	// IndexRepo is a local clone of the git index used instead of IndexURL.
	IndexRepo string `toml:"index_repo" yaml:"index_repo"`
	// Concurrency bounds in-flight checks.
	Concurrency int `toml:"concurrency" yaml:"concurrency"`
	// Timeout bounds each lookup, as a Go duration string ("10s").
	Timeout string `toml:"timeout" yaml:"timeout"`
	// MinInterval spaces requests to the index, as a Go duration string.
	MinInterval string `toml:"min_interval" yaml:"min_interval"`
	UserAgent   string `toml:"user_agent" yaml:"user_agent"`
	Cache       bool   `toml:"cache" yaml:"cache"`
	// Reserved names are refused in addition to the crates.io reserved set.
	Reserved []string `toml:"reserved" yaml:"reserved"`
}

// Load reads the file at path, choosing the format by extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	var f *File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		f, err = ParseTOML(data)
	case ".yaml", ".yml":
		f, err = ParseYAML(data)
	default:
		return nil, errors.Errorf("unsupported config format %q (want .toml, .yaml or .yml)", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return f, nil
}

// ParseTOML decodes a TOML document, rejecting unknown keys.
func ParseTOML(data []byte) (*File, error) {
	var f File
	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(&f); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return nil, errors.Errorf("unknown fields:\n%s", sme.String())
		}
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// ParseYAML decodes a YAML document, rejecting unknown keys.
func ParseYAML(data []byte) (*File, error) {
	var f File
	d := yaml.NewDecoder(bytes.NewReader(data))
	d.KnownFields(true)
	if err := d.Decode(&f); err != nil && err != io.EOF {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks values that the decoders cannot.
func (f *File) Validate() error {
	if f.Concurrency < 0 {
		return errors.New("concurrency must not be negative")
	}
	if f.IndexURL != "" && f.IndexRepo != "" {
		return errors.New("index_url and index_repo are mutually exclusive")
	}
	if _, err := f.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := f.MinIntervalDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout. An empty value yields zero.
func (f *File) TimeoutDuration() (time.Duration, error) {
	return parseDuration("timeout", f.Timeout)
}

// MinIntervalDuration parses MinInterval. An empty value yields zero.
func (f *File) MinIntervalDuration() (time.Duration, error) {
	return parseDuration("min_interval", f.MinInterval)
}

func parseDuration(key, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}
	if d < 0 {
		return 0, errors.Errorf("%s must not be negative", key)
	}
	return d, nil
}
