// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package indextest builds crates.io index repositories for tests.
package indextest

import (
	"bytes"
	"fmt"
	"io"
	"path"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/google/cargo-avail/pkg/registry/cratesio/index"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Commit publishes (or yanks, by removal) crates in one index commit.
type Commit struct {
	ID      string   `yaml:"id"`
	Message string   `yaml:"message"`
	Publish []string `yaml:"publish"`
	Remove  []string `yaml:"remove,omitempty"`
}

// History is the YAML fixture format:
//
//	commits:
//	  - id: initial
//	    publish: [serde, tokio-util]
type History struct {
	Commits []Commit `yaml:"commits"`
}

// Repository is a fixture index with the hashes of its commits by ID.
type Repository struct {
	*git.Repository
	Commits map[string]plumbing.Hash
}

// CreateRepoFromYAML builds an index repository from a History document.
// A nil storer creates the repository in memory.
func CreateRepoFromYAML(content string, s storage.Storer) (*Repository, error) {
	var history History
	d := yaml.NewDecoder(bytes.NewReader([]byte(content)))
	d.KnownFields(true)
	if err := d.Decode(&history); err != nil {
		return nil, err
	}
	return CreateRepo(history.Commits, s)
}

// CreateRepo builds an index repository with one commit per entry.
func CreateRepo(commits []Commit, s storage.Storer) (*Repository, error) {
	if s == nil {
		s = memory.NewStorage()
	}
	r, err := git.Init(s, memfs.New())
	if err != nil {
		return nil, errors.Wrap(err, "initializing repo")
	}
	w, err := r.Worktree()
	if err != nil {
		return nil, errors.Wrap(err, "accessing worktree")
	}
	repo := &Repository{Repository: r, Commits: make(map[string]plumbing.Hash)}
	if err := writeFile(w, "config.json", `{"dl":"https://static.crates.io/crates","api":"https://crates.io"}`+"\n"); err != nil {
		return nil, err
	}
	for _, c := range commits {
		if _, err := repo.Apply(c); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// Apply records c as a new commit on the current branch.
func (r *Repository) Apply(c Commit) (plumbing.Hash, error) {
	w, err := r.Worktree()
	if err != nil {
		return plumbing.ZeroHash, errors.Wrap(err, "accessing worktree")
	}
	for _, name := range c.Publish {
		if err := writeFile(w, index.EntryPath(name), EntryLine(name, "0.1.0")); err != nil {
			return plumbing.ZeroHash, errors.Wrapf(err, "publishing %s", name)
		}
	}
	for _, name := range c.Remove {
		if _, err := w.Remove(index.EntryPath(name)); err != nil {
			return plumbing.ZeroHash, errors.Wrapf(err, "removing %s", name)
		}
	}
	msg := c.Message
	if msg == "" {
		msg = c.ID
	}
	h, err := w.Commit(msg, &git.CommitOptions{
		Author:            &object.Signature{Name: "Place Holder"},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return plumbing.ZeroHash, errors.Wrap(err, "committing")
	}
	if c.ID != "" {
		r.Commits[c.ID] = h
	}
	return h, nil
}

// EntryLine renders a minimal index entry for one version of a crate.
func EntryLine(name, version string) string {
	return fmt.Sprintf(`{"name":%q,"vers":%q,"deps":[],"cksum":"0000","features":{},"yanked":false}`+"\n", name, version)
}

func writeFile(w *git.Worktree, name, content string) error {
	if err := w.Filesystem.MkdirAll(path.Dir(name), 0755); err != nil {
		return err
	}
	f, err := w.Filesystem.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, content); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_, err = w.Add(name)
	return err
}
