// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cratesio

import (
	"bytes"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Manifest is the subset of Cargo.toml needed to name a package.
//
// Format: https://doc.rust-lang.org/cargo/reference/manifest.html
type Manifest struct {
	Package *PackageManifest `toml:"package"`
}

// PackageManifest is the [package] section of Cargo.toml.
type PackageManifest struct {
	Name string `toml:"name"`
	// RawPublish is false, or a list of registries the package may be published to.
	RawPublish any `toml:"publish"`
}

// Publishable reports whether the manifest permits publishing to crates.io.
func (pm PackageManifest) Publishable() bool {
	switch p := pm.RawPublish.(type) {
	case bool:
		return p
	case []any:
		for _, r := range p {
			if r == "crates-io" {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// ErrNoPackage is returned for manifests without a [package] section, such as
// virtual workspace roots.
var ErrNoPackage = errors.New("manifest has no [package] section")

// ParseManifest decodes a Cargo.toml document.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "decoding manifest")
	}
	return &m, nil
}

// ReadPackage returns the named [package] section of the Cargo.toml at path.
func ReadPackage(path string) (*PackageManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading manifest")
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	if m.Package == nil || m.Package.Name == "" {
		return nil, errors.Wrap(ErrNoPackage, path)
	}
	return m.Package, nil
}
