// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package update

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/fraunhoferportugal/RelSync/pkg/bump"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution/resolveerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiComponent() *resolution.ComponentResolution {
	return &resolution.ComponentResolution{
		Path:                  "modules/api",
		ChartName:             "api",
		CurrentTag:            "v1.2.0",
		LatestTag:             "v2.0.0",
		SuggestedTag:          "v1.3.0",
		CurrentChartVersion:   resolution.NewSemVer(semver.MustParse("1.2.0")),
		SuggestedChartVersion: resolution.NewSemVer(semver.MustParse("1.3.0")),
		Bump:                  bump.Minor,
		Source:                resolution.SourceInferred,
		RecentTags:            []string{"v2.0.0", "v1.3.0", "v1.2.1"},
	}
}

func singleComponentResolution() *resolution.Resolution {
	res := resolution.New()
	res.Components["api"] = apiComponent()
	return res
}

func TestDecideAcceptAll(t *testing.T) {
	res := singleComponentResolution()
	var out bytes.Buffer

	require.NoError(t, decide(res, strings.NewReader(""), &out, true))
	assert.Equal(t, "v1.3.0", res.Components["api"].SuggestedTag)
	assert.NotContains(t, out.String(), "take [s]uggested")
}

func TestDecideSuggested(t *testing.T) {
	for _, answer := range []string{"s\n", "\n"} {
		res := singleComponentResolution()
		var out bytes.Buffer

		require.NoError(t, decide(res, strings.NewReader(answer), &out, false))
		assert.Equal(t, "v1.3.0", res.Components["api"].SuggestedTag)
		assert.Equal(t, bump.Minor, res.Components["api"].Bump)
	}
}

func TestDecideLatest(t *testing.T) {
	res := singleComponentResolution()
	var out bytes.Buffer

	require.NoError(t, decide(res, strings.NewReader("l\n"), &out, false))

	api := res.Components["api"]
	assert.Equal(t, "v2.0.0", api.SuggestedTag)
	assert.Equal(t, bump.Major, api.Bump)
	assert.Equal(t, "2.0.0", api.SuggestedChartVersion.String())
}

func TestDecideByIndex(t *testing.T) {
	res := singleComponentResolution()
	var out bytes.Buffer

	require.NoError(t, decide(res, strings.NewReader("2\n"), &out, false))

	api := res.Components["api"]
	assert.Equal(t, "v1.2.1", api.SuggestedTag)
	assert.Equal(t, bump.Patch, api.Bump)
	assert.Equal(t, "1.2.1", api.SuggestedChartVersion.String())
}

func TestDecideSkip(t *testing.T) {
	res := singleComponentResolution()
	var out bytes.Buffer

	require.NoError(t, decide(res, strings.NewReader("n\n"), &out, false))

	api := res.Components["api"]
	assert.Equal(t, "", api.SuggestedTag)
	assert.Equal(t, bump.None, api.Bump)
	assert.Equal(t, "1.2.0", api.SuggestedChartVersion.String())
}

func TestDecideRepromptsOnGarbage(t *testing.T) {
	res := singleComponentResolution()
	var out bytes.Buffer

	require.NoError(t, decide(res, strings.NewReader("meep\n99\nl\n"), &out, false))
	assert.Equal(t, "v2.0.0", res.Components["api"].SuggestedTag)
	assert.Contains(t, out.String(), "unrecognized choice")
}

func TestDecideExhaustedInputTakesSuggestion(t *testing.T) {
	res := singleComponentResolution()
	var out bytes.Buffer

	require.NoError(t, decide(res, strings.NewReader(""), &out, false))
	assert.Equal(t, "v1.3.0", res.Components["api"].SuggestedTag)
}

func TestDecideSkipsFailedComponents(t *testing.T) {
	res := singleComponentResolution()
	res.Components["broken"] = &resolution.ComponentResolution{
		Path: "modules/broken",
		Errors: []*resolveerrors.ResolutionError{
			resolveerrors.NewNoUpdatesAvailableError(assert.AnError),
		},
	}
	var out bytes.Buffer

	require.NoError(t, decide(res, strings.NewReader("s\n"), &out, false))
	assert.Contains(t, out.String(), "broken: skipped (NO_UPDATES_AVAILABLE)")
}
