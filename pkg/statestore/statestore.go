// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package statestore persists a Resolution to a state file and replays it
// later, so that a decision fetched once can be applied without hitting the
// remotes again.
package statestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fraunhoferportugal/RelSync/pkg/resolution"
	"github.com/fraunhoferportugal/RelSync/pkg/schema"
	"github.com/goccy/go-yaml"
)

var (
	ErrNotFound = errors.New("no resolution state found")
	ErrCorrupt  = errors.New("corrupt resolution state")
)

// Save writes the full Resolution to path. The write goes to a temp file in
// the destination directory followed by an atomic rename, so a reader never
// observes a partially written state. A lock file next to the destination
// enforces the single-writer discipline across processes.
func Save(ctx context.Context, res *resolution.Resolution, path string) error {
	return withStateLock(ctx, path+".lock", func() error {
		data, err := yaml.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to serialize resolution state: %w", err)
		}

		tmp, err := os.CreateTemp(filepath.Dir(path), ".relsync-state-*")
		if err != nil {
			return err
		}
		defer os.Remove(tmp.Name())

		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return err
		}
		if err := tmp.Close(); err != nil {
			return err
		}

		return os.Rename(tmp.Name(), path)
	})
}

// Load reads a previously saved Resolution. The caller uses it as-is; the
// engine only recomputes when explicitly asked to refetch.
func Load(path string) (*resolution.Resolution, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w at %q", ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}

	var r resolution.Resolution
	if err := yaml.Unmarshal(contents, &r); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, err.Error())
	}

	s := schema.ManifestMeta{
		APIVersion: resolution.APIVersion,
		Kind:       resolution.Kind,
	}
	if err := s.ValidateSchema(r.ManifestMeta); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, err.Error())
	}

	return &r, nil
}

// IsStale reports whether the stored resolution was computed against a
// different set of pinned refs than the current one. Callers decide whether
// to reuse it anyway or to refetch; an explicit refetch flag always wins.
func IsStale(res *resolution.Resolution, currentFingerprint string) bool {
	return res.SourceFingerprint != currentFingerprint
}
