// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package statestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/fraunhoferportugal/RelSync/pkg/bump"
	"github.com/fraunhoferportugal/RelSync/pkg/fingerprint"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution/resolveerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResolution(t *testing.T) *resolution.Resolution {
	r := resolution.New()
	r.ComputedAt = time.Date(2026, 2, 11, 9, 30, 0, 0, time.UTC)
	r.SourceFingerprint = fingerprint.Compute(map[string]string{"api": "v1.2.0", "ui": "v0.9.0"})

	r.Components["api"] = &resolution.ComponentResolution{
		Path:                  "modules/api",
		ChartName:             "api",
		ChartPath:             "modules/api/deploy/chart/Chart.yaml",
		CurrentTag:            "v1.2.0",
		LatestTag:             "v1.3.0",
		SuggestedTag:          "v1.3.0",
		CurrentChartVersion:   resolution.NewSemVer(semver.MustParse("1.2.0")),
		SuggestedChartVersion: resolution.NewSemVer(semver.MustParse("1.3.0")),
		Bump:                  bump.Minor,
		Source:                resolution.SourceInferred,
		RecentTags:            []string{"v1.3.0", "v1.2.1", "v1.2.0"},
	}
	r.Components["broken"] = &resolution.ComponentResolution{
		Path:   "modules/broken",
		Source: resolution.SourceInferred,
		Errors: []*resolveerrors.ResolutionError{
			resolveerrors.NewNoUpdatesAvailableError(os.ErrNotExist),
		},
	}
	r.Aggregations = []*resolution.ManifestAggregation{{
		ManifestID:       "parent",
		ChartPath:        "deploy/chart/Chart.yaml",
		CurrentVersion:   resolution.NewSemVer(semver.MustParse("1.5.0")),
		SuggestedVersion: resolution.NewSemVer(semver.MustParse("1.6.0")),
		Bump:             bump.Minor,
		Partial:          true,
		DependencyVersions: map[string]*resolution.SemVer{
			"api": resolution.NewSemVer(semver.MustParse("1.3.0")),
		},
	}}
	return r
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".relsync-state.yaml")
	saved := sampleResolution(t)

	require.NoError(t, Save(context.Background(), saved, path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, saved.Components["api"], loaded.Components["api"])
	assert.Equal(t, saved.Aggregations, loaded.Aggregations)
	assert.Equal(t, saved.SourceFingerprint, loaded.SourceFingerprint)
	assert.True(t, saved.ComputedAt.Equal(loaded.ComputedAt))

	// the failed component round-trips as data
	require.True(t, loaded.Components["broken"].Failed())
	assert.Equal(t, resolveerrors.NoUpdatesAvailable, loaded.Components["broken"].Errors[0].Code)
}

func TestLoadRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".relsync-state.yaml")
	require.NoError(t, Save(context.Background(), sampleResolution(t), path))

	first, err := Load(path)
	require.NoError(t, err)
	second, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSaveSupersedesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".relsync-state.yaml")

	require.NoError(t, Save(context.Background(), sampleResolution(t), path))

	updated := sampleResolution(t)
	updated.SourceFingerprint = "different"
	require.NoError(t, Save(context.Background(), updated, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "different", loaded.SourceFingerprint)

	// no temp leftovers next to the state file
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".relsync-state-")
	}
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".relsync-state.yaml")

	require.NoError(t, os.WriteFile(path, []byte("{{{ not yaml"), 0644))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrCorrupt)

	// valid yaml, wrong schema
	require.NoError(t, os.WriteFile(path, []byte("apiVersion: somethingelse/v9\nkind: Unrelated\n"), 0644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestIsStale(t *testing.T) {
	r := sampleResolution(t)
	current := fingerprint.Compute(map[string]string{"api": "v1.2.0", "ui": "v0.9.0"})
	assert.False(t, IsStale(r, current))

	moved := fingerprint.Compute(map[string]string{"api": "v1.3.0", "ui": "v0.9.0"})
	assert.True(t, IsStale(r, moved))
}

func TestFingerprintOrderIndependent(t *testing.T) {
	a := fingerprint.Compute(map[string]string{"api": "v1.2.0", "ui": "v0.9.0"})
	b := fingerprint.Compute(map[string]string{"ui": "v0.9.0", "api": "v1.2.0"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, fingerprint.Compute(map[string]string{"api": "v1.2.1", "ui": "v0.9.0"}))
}
