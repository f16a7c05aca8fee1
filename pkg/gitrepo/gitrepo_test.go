// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package gitrepo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSig = &object.Signature{Name: "tester", Email: "tester@localhost", When: time.Now()}

func initRepo(t *testing.T) (*git.Repository, string) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return repo, dir
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, contents, msg string) plumbing.Hash {
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	hash, err := wt.Commit(msg, &git.CommitOptions{Author: testSig})
	require.NoError(t, err)
	return hash
}

// taggedRepo has Chart.yaml at 1.2.0 under lightweight tag v1.2.0 and at
// 1.3.0 under annotated tag v1.3.0, with HEAD at the latter.
func taggedRepo(t *testing.T) (*git.Repository, string) {
	repo, dir := initRepo(t)

	first := commitFile(t, repo, dir, "Chart.yaml", "name: api\nversion: 1.2.0\n", "release 1.2.0")
	_, err := repo.CreateTag("v1.2.0", first, nil)
	require.NoError(t, err)

	second := commitFile(t, repo, dir, "Chart.yaml", "name: api\nversion: 1.3.0\n", "release 1.3.0")
	_, err = repo.CreateTag("v1.3.0", second, &git.CreateTagOptions{Message: "release 1.3.0", Tagger: testSig})
	require.NoError(t, err)

	return repo, dir
}

func TestOpenNotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrNotARepository)
}

func TestTags(t *testing.T) {
	_, dir := taggedRepo(t)

	r, err := Open(dir)
	require.NoError(t, err)

	tags, err := r.Tags()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1.2.0", "v1.3.0"}, tags)
}

func TestCurrentTag(t *testing.T) {
	repo, dir := taggedRepo(t)

	r, err := Open(dir)
	require.NoError(t, err)

	// the annotated tag peels down to the HEAD commit
	tag, ok, err := r.CurrentTag()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1.3.0", tag)

	commitFile(t, repo, dir, "README.md", "untagged\n", "wip")
	_, ok, err = r.CurrentTag()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileAtTag(t *testing.T) {
	_, dir := taggedRepo(t)

	r, err := Open(dir)
	require.NoError(t, err)

	contents, err := r.FileAtTag("v1.2.0", "Chart.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(contents), "version: 1.2.0")

	contents, err = r.FileAtTag("v1.3.0", "Chart.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(contents), "version: 1.3.0")

	_, err = r.FileAtTag("v9.9.9", "Chart.yaml")
	assert.ErrorIs(t, err, ErrNoSuchTag)

	_, err = r.FileAtTag("v1.2.0", "missing.yaml")
	assert.ErrorIs(t, err, ErrNoSuchFile)
}

func TestCheckoutTag(t *testing.T) {
	_, dir := taggedRepo(t)

	r, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, r.CheckoutTag("v1.2.0"))
	contents, err := os.ReadFile(filepath.Join(dir, "Chart.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(contents), "version: 1.2.0")
}

func TestCommitAndCreateTag(t *testing.T) {
	_, dir := taggedRepo(t)

	r, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Chart.yaml"), []byte("name: api\nversion: 2.0.0\n"), 0644))
	require.NoError(t, r.AddPaths("Chart.yaml"))

	commit, err := r.Commit("release 2.0.0")
	require.NoError(t, err)
	require.NoError(t, r.CreateTag("v2.0.0", "release 2.0.0"))

	tag, ok, err := r.TagAt(commit)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2.0.0", tag)
}

func TestSubmodulesNoneConfigured(t *testing.T) {
	repo, dir := initRepo(t)
	commitFile(t, repo, dir, "README.md", "plain repo\n", "init")

	r, err := Open(dir)
	require.NoError(t, err)

	subs, err := r.Submodules()
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.Empty(t, Pins(subs))
}
