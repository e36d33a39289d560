// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"context"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/pkg/errors"
)

// GitIndex looks up crates in a local clone of the index, as of its HEAD commit.
type GitIndex struct {
	// Tree lookups populate an internal cache and are not safe for concurrent use.
	mu     sync.Mutex
	tree   *object.Tree
	commit plumbing.Hash
}

// NewGitIndex resolves the repository's HEAD commit for lookups.
func NewGitIndex(repo *git.Repository) (*GitIndex, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, errors.Wrap(err, "resolving HEAD")
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, errors.Wrap(err, "reading HEAD commit")
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, errors.Wrap(err, "reading HEAD tree")
	}
	return &GitIndex{tree: tree, commit: commit.Hash}, nil
}

// OpenGitIndex opens an index clone stored in fs. Both bare clones, as made by
// RepoFetcher, and working copies with a .git directory are accepted.
func OpenGitIndex(fs billy.Filesystem) (*GitIndex, error) {
	fs, err := gitDir(fs)
	if err != nil {
		return nil, err
	}
	storer := filesystem.NewStorageWithOptions(fs, cache.NewObjectLRUDefault(), filesystem.Options{ExclusiveAccess: true})
	repo, err := git.Open(storer, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening index repository")
	}
	return NewGitIndex(repo)
}

// gitDir returns the .git directory of a working copy, or fs itself for a
// bare clone or an empty directory.
func gitDir(fs billy.Filesystem) (billy.Filesystem, error) {
	if fi, err := fs.Stat(git.GitDirName); err == nil && fi.IsDir() {
		dot, err := fs.Chroot(git.GitDirName)
		if err != nil {
			return nil, errors.Wrap(err, "creating git chroot")
		}
		return dot, nil
	}
	return fs, nil
}

// Commit is the index commit lookups are answered from.
func (g *GitIndex) Commit() plumbing.Hash { return g.commit }

// Lookup checks for the spelling's entry in the HEAD tree.
func (g *GitIndex) Lookup(ctx context.Context, name string) LookupResult {
	p := EntryPath(name)
	loc := g.commit.String() + ":" + p
	if err := ctx.Err(); err != nil {
		return LookupResult{Outcome: TransportError, Location: loc, Err: err}
	}
	g.mu.Lock()
	entry, err := g.tree.FindEntry(p)
	g.mu.Unlock()
	switch {
	case err == nil && entry.Mode.IsFile():
		return LookupResult{Outcome: Found, Location: loc}
	case err == nil:
		return LookupResult{Outcome: NotFound, Location: loc}
	case errors.Is(err, object.ErrEntryNotFound), errors.Is(err, object.ErrDirectoryNotFound):
		return LookupResult{Outcome: NotFound, Location: loc}
	default:
		return LookupResult{Outcome: TransportError, Location: loc, Err: errors.Wrapf(err, "reading %s", loc)}
	}
}

var _ Index = &GitIndex{}
