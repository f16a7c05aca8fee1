// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/fraunhoferportugal/RelSync/pkg/bump"
	"github.com/fraunhoferportugal/RelSync/pkg/fingerprint"
	"github.com/fraunhoferportugal/RelSync/pkg/overrides"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution/resolveerrors"
	"github.com/fraunhoferportugal/RelSync/pkg/statestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChart struct {
	name    string
	version *semver.Version
}

type fakeManifests map[string]fakeChart

func (f fakeManifests) ReadVersion(path string) (string, *semver.Version, error) {
	c, ok := f[path]
	if !ok {
		return "", nil, os.ErrNotExist
	}
	return c.name, c.version, nil
}

type fakeTagSource struct {
	tags map[string][]string
	errs map[string]error
}

func (s *fakeTagSource) Tags(_ context.Context, c *Component) ([]string, error) {
	if err, ok := s.errs[c.Name]; ok {
		return nil, err
	}
	return s.tags[c.Name], nil
}

// platformOpts is the reference scenario: api moves v1.2.0 -> v1.3.0 (minor),
// ui moves v0.9.0 -> v1.0.0 (major), so the parent at 1.5.0 takes the major
// and suggests 2.0.0.
func platformOpts() Opts {
	return Opts{
		Components: []*Component{
			{Name: "api", Path: "modules/api", CurrentTag: "v1.2.0", ChartPath: "api-chart"},
			{Name: "ui", Path: "modules/ui", CurrentTag: "v0.9.0", ChartPath: "ui-chart"},
		},
		Parent: &ParentManifest{
			ID:           "platform",
			ChartPath:    "parent-chart",
			Version:      semver.MustParse("1.5.0"),
			Dependencies: []string{"api", "ui"},
		},
		Pins: map[string]string{"api": "aaa", "ui": "bbb"},
		Tags: &fakeTagSource{tags: map[string][]string{
			"api": {"v1.2.0", "v1.2.1", "v1.3.0"},
			"ui":  {"v0.8.0", "v0.9.0", "v1.0.0"},
		}},
		Manifests: fakeManifests{
			"api-chart": {name: "api", version: semver.MustParse("1.2.0")},
			"ui-chart":  {name: "ui", version: semver.MustParse("0.9.0")},
		},
	}
}

func TestFetchResolution(t *testing.T) {
	res, err := FetchResolution(t.Context(), platformOpts())
	require.NoError(t, err)

	api := res.Components["api"]
	require.NotNil(t, api)
	assert.False(t, api.Failed())
	assert.Equal(t, "v1.3.0", api.SuggestedTag)
	assert.Equal(t, bump.Minor, api.Bump)
	assert.Equal(t, "1.3.0", api.SuggestedChartVersion.String())

	ui := res.Components["ui"]
	require.NotNil(t, ui)
	assert.Equal(t, "v1.0.0", ui.SuggestedTag)
	assert.Equal(t, bump.Major, ui.Bump)

	require.Len(t, res.Aggregations, 1)
	agg := res.Aggregations[0]
	assert.Equal(t, "platform", agg.ManifestID)
	assert.Equal(t, "parent-chart", agg.ChartPath)
	assert.Equal(t, bump.Major, agg.Bump)
	assert.Equal(t, "2.0.0", agg.SuggestedVersion.String())
	assert.False(t, agg.Partial)
	assert.Equal(t, "1.3.0", agg.DependencyVersions["api"].String())
	assert.Equal(t, "1.0.0", agg.DependencyVersions["ui"].String())

	assert.False(t, res.ComputedAt.IsZero())
	assert.Equal(t, fingerprint.Compute(map[string]string{"api": "aaa", "ui": "bbb"}), res.SourceFingerprint)
}

func TestFetchResolutionTagFetchFailure(t *testing.T) {
	opts := platformOpts()
	opts.Tags.(*fakeTagSource).errs = map[string]error{"ui": fmt.Errorf("remote unreachable")}

	res, err := FetchResolution(t.Context(), opts)
	require.NoError(t, err)

	ui := res.Components["ui"]
	require.True(t, ui.Failed())
	assert.Equal(t, resolveerrors.UnknownError, ui.Errors[0].Code)

	// the failed component contributes none, api's minor prevails
	agg := res.Aggregations[0]
	assert.True(t, agg.Partial)
	assert.Equal(t, bump.Minor, agg.Bump)
	assert.Equal(t, "1.6.0", agg.SuggestedVersion.String())
}

func TestFetchResolutionWithOverride(t *testing.T) {
	opts := platformOpts()
	opts.Overrides = overrides.Set{Tags: overrides.TagOverrides{"api": "v3.0.0"}}

	res, err := FetchResolution(t.Context(), opts)
	require.NoError(t, err)

	api := res.Components["api"]
	assert.Equal(t, resolution.SourceOverridden, api.Source)
	assert.Equal(t, "v3.0.0", api.SuggestedTag)
	assert.Equal(t, bump.Major, api.Bump)
}

func TestFetchResolutionBoundedParallelism(t *testing.T) {
	opts := platformOpts()
	opts.Parallelism = 1

	res, err := FetchResolution(t.Context(), opts)
	require.NoError(t, err)
	assert.Len(t, res.Components, 2)
	assert.Equal(t, "2.0.0", res.Aggregations[0].SuggestedVersion.String())
}

func TestFetchResolutionPrereleaseIdentifier(t *testing.T) {
	opts := platformOpts()
	opts.PrereleaseIdentifier = "rc"

	res, err := FetchResolution(t.Context(), opts)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0-rc", res.Aggregations[0].SuggestedVersion.String())
}

func TestWithPrereleaseIdentifier(t *testing.T) {
	tests := []struct {
		current, suggested, identifier, want string
	}{
		{"1.5.0", "2.0.0", "rc", "2.0.0-rc"},
		{"1.6.0-rc", "1.6.0", "rc", "1.6.0-rc.1"},
		{"1.6.0-rc.1", "1.6.0", "rc", "1.6.0-rc.2"},
		{"1.6.0-other", "1.6.0", "rc", "1.6.0-rc"},
		{"1.6.0-rc.2", "1.7.0", "rc", "1.7.0-rc"},
	}
	for _, tc := range tests {
		t.Run(tc.current+"_"+tc.suggested, func(t *testing.T) {
			got, err := withPrereleaseIdentifier(
				semver.MustParse(tc.current), semver.MustParse(tc.suggested), tc.identifier)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestLoadOrFetchReplaysState(t *testing.T) {
	ctx := t.Context()
	opts := platformOpts()
	statePath := filepath.Join(t.TempDir(), ".relsync-state.yaml")

	stored, err := FetchResolution(ctx, opts)
	require.NoError(t, err)
	require.NoError(t, statestore.Save(ctx, stored, statePath))

	out, err := LoadOrFetch(ctx, StateOpts{Path: statePath, UseState: true}, opts)
	require.NoError(t, err)
	assert.True(t, out.Replayed)
	assert.False(t, out.Stale)
	assert.Equal(t, stored.SourceFingerprint, out.Resolution.SourceFingerprint)
}

func TestLoadOrFetchFlagsStaleness(t *testing.T) {
	ctx := t.Context()
	opts := platformOpts()
	statePath := filepath.Join(t.TempDir(), ".relsync-state.yaml")

	stored, err := FetchResolution(ctx, opts)
	require.NoError(t, err)
	require.NoError(t, statestore.Save(ctx, stored, statePath))

	// a submodule pin moved after the resolution was stored
	opts.Pins["api"] = "moved"
	out, err := LoadOrFetch(ctx, StateOpts{Path: statePath, UseState: true}, opts)
	require.NoError(t, err)
	assert.True(t, out.Replayed)
	assert.True(t, out.Stale)
}

func TestLoadOrFetchForceRefetch(t *testing.T) {
	ctx := t.Context()
	opts := platformOpts()
	statePath := filepath.Join(t.TempDir(), ".relsync-state.yaml")

	stored, err := FetchResolution(ctx, opts)
	require.NoError(t, err)
	stored.SourceFingerprint = "stored"
	require.NoError(t, statestore.Save(ctx, stored, statePath))

	out, err := LoadOrFetch(ctx, StateOpts{Path: statePath, UseState: true, ForceRefetch: true}, opts)
	require.NoError(t, err)
	assert.False(t, out.Replayed)
	assert.NotEqual(t, "stored", out.Resolution.SourceFingerprint)
}

func TestLoadOrFetchMissingStateFallsBack(t *testing.T) {
	ctx := t.Context()
	opts := platformOpts()
	statePath := filepath.Join(t.TempDir(), "never-written.yaml")

	out, err := LoadOrFetch(ctx, StateOpts{Path: statePath, UseState: true}, opts)
	require.NoError(t, err)
	assert.False(t, out.Replayed)
	assert.Len(t, out.Resolution.Components, 2)
}
