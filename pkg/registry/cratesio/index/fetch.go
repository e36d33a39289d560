// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"context"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/pkg/errors"
)

// DefaultRepoURL is the git mirror of the crates.io index.
const DefaultRepoURL = "https://github.com/rust-lang/crates.io-index.git"

// Fetcher defines how to fetch and update a local index clone.
type Fetcher interface {
	// Fetch clones the index into the given filesystem.
	Fetch(ctx context.Context, fs billy.Filesystem) error
	// Update refreshes an existing clone in the filesystem.
	Update(ctx context.Context, fs billy.Filesystem) error
}

// RepoFetcher maintains a bare clone of the index's master branch.
type RepoFetcher struct {
	// URL of the index repository. Defaults to DefaultRepoURL.
	URL string
}

func (f *RepoFetcher) url() string {
	if f.URL == "" {
		return DefaultRepoURL
	}
	return f.URL
}

func (f *RepoFetcher) Fetch(ctx context.Context, fs billy.Filesystem) error {
	storer := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	_, err := git.CloneContext(ctx, storer, nil, &git.CloneOptions{
		URL:           f.url(),
		ReferenceName: plumbing.Master,
		SingleBranch:  true,
		NoCheckout:    true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to clone index")
	}
	// Track the remote so HEAD follows Update.
	remoteMain := plumbing.NewRemoteReferenceName(git.DefaultRemoteName, "master")
	err = storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, remoteMain))
	if err != nil {
		return errors.Wrap(err, "failed to configure HEAD")
	}
	return nil
}

// Update fetches the remote. When HEAD is a local branch, as in a working
// copy, that branch is fast-forwarded to its fetched counterpart; worktree
// files are left as they are.
func (f *RepoFetcher) Update(ctx context.Context, fs billy.Filesystem) error {
	storer := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	repo, err := git.Open(storer, nil)
	if err != nil {
		return errors.Wrap(err, "failed to open repository")
	}
	err = repo.FetchContext(ctx, &git.FetchOptions{Force: true})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return errors.Wrap(err, "failed to fetch updates")
	}
	return fastForwardHead(repo)
}

func fastForwardHead(repo *git.Repository) error {
	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return errors.Wrap(err, "reading HEAD")
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return nil
	}
	branch := head.Target()
	remote, err := repo.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, branch.Short()), true)
	if err == plumbing.ErrReferenceNotFound {
		return nil
	} else if err != nil {
		return errors.Wrap(err, "resolving remote branch")
	}
	local, err := repo.Reference(branch, true)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", branch.Short())
	}
	if local.Hash() == remote.Hash() {
		return nil
	}
	localCommit, err := repo.CommitObject(local.Hash())
	if err != nil {
		return errors.Wrap(err, "reading local commit")
	}
	remoteCommit, err := repo.CommitObject(remote.Hash())
	if err != nil {
		return errors.Wrap(err, "reading fetched commit")
	}
	if ok, err := localCommit.IsAncestor(remoteCommit); err != nil {
		return errors.Wrap(err, "comparing commits")
	} else if !ok {
		return errors.Errorf("%s has diverged from %s", branch.Short(), remote.Name().Short())
	}
	if err := repo.Storer.SetReference(plumbing.NewHashReference(branch, remote.Hash())); err != nil {
		return errors.Wrapf(err, "updating %s", branch.Short())
	}
	return nil
}

// Sync clones the index into fs if it holds no repository yet, and updates it
// otherwise. A working copy is updated through its .git directory.
func Sync(ctx context.Context, f Fetcher, fs billy.Filesystem) error {
	fs, err := gitDir(fs)
	if err != nil {
		return err
	}
	if _, err := fs.Stat("HEAD"); err == nil {
		return f.Update(ctx, fs)
	}
	return f.Fetch(ctx, fs)
}

var _ Fetcher = &RepoFetcher{}
