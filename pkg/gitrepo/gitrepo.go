// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package gitrepo wraps the git operations the sync engine needs: submodule
// discovery, tag listing, reading files at a tag, and writing back the
// checkout plus the release commit and tag.
package gitrepo

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/samber/lo"
)

var (
	ErrNotARepository = errors.New("not a git repository")
	ErrNoSuchTag      = errors.New("no such tag")
	ErrNoSuchFile     = errors.New("no such file at tag")
)

type Repo struct {
	repo *git.Repository
	path string
}

// Submodule is a gitlink entry of the parent worktree: its configured name,
// its path relative to the parent root, and the commit the parent pins.
type Submodule struct {
	Name   string
	Path   string
	Pinned string

	sub *git.Submodule
}

func Open(path string) (*Repo, error) {
	r, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
	}
	if err != nil {
		return nil, err
	}
	return &Repo{repo: r, path: path}, nil
}

func (r *Repo) Path() string {
	return r.path
}

// Submodules lists the gitlink entries of the worktree, in .gitmodules order.
func (r *Repo) Submodules() ([]*Submodule, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, err
	}
	subs, err := wt.Submodules()
	if err != nil {
		return nil, err
	}

	var result []*Submodule
	for _, sub := range subs {
		status, err := sub.Status()
		if err != nil {
			return nil, fmt.Errorf("failed to read status of submodule %q: %w", sub.Config().Name, err)
		}
		result = append(result, &Submodule{
			Name:   sub.Config().Name,
			Path:   sub.Config().Path,
			Pinned: status.Current.String(),
			sub:    sub,
		})
	}
	return result, nil
}

// Repo opens the submodule's own repository. The submodule must have been
// initialized (cloned) in the parent worktree.
func (s *Submodule) Repo() (*Repo, error) {
	sr, err := s.sub.Repository()
	if err != nil {
		return nil, fmt.Errorf("failed to open submodule %q, is it initialized?: %w", s.Name, err)
	}
	return &Repo{repo: sr, path: s.Path}, nil
}

// Pins maps each submodule name to the commit the parent currently records,
// which is the input of the staleness fingerprint.
func Pins(subs []*Submodule) map[string]string {
	return lo.SliceToMap(subs, func(s *Submodule) (string, string) {
		return s.Name, s.Pinned
	})
}

// Tags returns all tag names of the repository, unordered. Ranking by
// version is the resolver's job, not git's.
func (r *Repo) Tags() ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// CurrentTag returns a tag pointing exactly at HEAD, or ok=false when HEAD
// is untagged. With several tags on the same commit the first one found wins.
func (r *Repo) CurrentTag() (tag string, ok bool, err error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", false, err
	}
	return r.TagAt(head.Hash().String())
}

// TagAt returns a tag whose (peeled) target is the given commit.
func (r *Repo) TagAt(commit string) (tag string, ok bool, err error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return "", false, err
	}
	defer iter.Close()

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		hash, err := r.peelTag(ref)
		if err != nil {
			return err
		}
		if hash.String() == commit {
			tag = ref.Name().Short()
			ok = true
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return tag, ok, nil
}

// peelTag resolves a tag reference to the commit it ultimately points at,
// following one level of annotated tag object.
func (r *Repo) peelTag(ref *plumbing.Reference) (plumbing.Hash, error) {
	if tagObj, err := r.repo.TagObject(ref.Hash()); err == nil {
		commit, err := tagObj.Commit()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return commit.Hash, nil
	} else if !errors.Is(err, plumbing.ErrObjectNotFound) {
		return plumbing.ZeroHash, err
	}
	return ref.Hash(), nil
}

func (r *Repo) tagCommit(tag string) (*object.Commit, error) {
	ref, err := r.repo.Reference(plumbing.NewTagReferenceName(tag), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchTag, tag)
	}
	if err != nil {
		return nil, err
	}
	hash, err := r.peelTag(ref)
	if err != nil {
		return nil, err
	}
	return r.repo.CommitObject(hash)
}

// FileAtTag reads a file's contents as committed at the given tag, without
// touching the worktree.
func (r *Repo) FileAtTag(tag, path string) ([]byte, error) {
	commit, err := r.tagCommit(tag)
	if err != nil {
		return nil, err
	}
	f, err := commit.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, fmt.Errorf("%w: %q at %q", ErrNoSuchFile, path, tag)
	}
	if err != nil {
		return nil, err
	}
	contents, err := f.Contents()
	if err != nil {
		return nil, err
	}
	return []byte(contents), nil
}

// CheckoutTag moves the worktree to the tag's commit, detached.
func (r *Repo) CheckoutTag(tag string) error {
	commit, err := r.tagCommit(tag)
	if err != nil {
		return err
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: commit.Hash})
}

// AddPaths stages the given worktree paths. A directory path that is a
// submodule root stages the updated gitlink.
func (r *Repo) AddPaths(paths ...string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	for _, path := range paths {
		if _, err := wt.Add(path); err != nil {
			return fmt.Errorf("failed to stage %q: %w", path, err)
		}
	}
	return nil
}

// Commit records the staged changes. The author comes from the repository's
// git config when present.
func (r *Repo) Commit(message string) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", err
	}
	hash, err := wt.Commit(message, &git.CommitOptions{Author: r.signature()})
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

// CreateTag tags HEAD. A non-empty message makes an annotated tag, otherwise
// the tag is lightweight.
func (r *Repo) CreateTag(name, message string) error {
	head, err := r.repo.Head()
	if err != nil {
		return err
	}

	var opts *git.CreateTagOptions
	if message != "" {
		opts = &git.CreateTagOptions{Message: message, Tagger: r.signature()}
	}
	_, err = r.repo.CreateTag(name, head.Hash(), opts)
	return err
}

func (r *Repo) signature() *object.Signature {
	sig := &object.Signature{Name: "relsync", Email: "relsync@localhost", When: time.Now()}
	cfg, err := r.repo.ConfigScoped(config.SystemScope)
	if err != nil {
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}
