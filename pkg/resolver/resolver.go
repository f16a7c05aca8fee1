// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resolver turns the raw facts about one submodule (its pinned tag,
// the tags available remotely, the version of its own chart) into a
// ComponentResolution. It is pure given its inputs; fetching belongs to the
// callers.
package resolver

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/fraunhoferportugal/RelSync/pkg/bump"
	"github.com/fraunhoferportugal/RelSync/pkg/overrides"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution/resolveerrors"
)

// RecentTagCount is how many candidate tags are carried into the resolution
// for reporting.
const RecentTagCount = 3

// ComponentRef describes one submodule before resolution.
type ComponentRef struct {
	// Name is unique within a run
	Name string
	// Path of the submodule within the parent worktree
	Path string
	// CurrentTag is the tag the submodule is pinned to, empty when HEAD
	// doesn't sit exactly on a tag
	CurrentTag string
	// ChartPath locates the submodule's own chart manifest
	ChartPath string
	// AvailableTags come in remote recency order, not necessarily sorted
	// by semver
	AvailableTags []string
}

// ManifestVersionReader reads the name and version recorded in a chart
// manifest. Implemented by pkg/chart.
type ManifestVersionReader interface {
	ReadVersion(path string) (name string, version *semver.Version, err error)
}

// Resolve produces the ComponentResolution for one submodule.
//
// An overridden tag need not be a member of the available tags (it may point
// at an unreleased or hand-picked release) but must still parse as semver.
// An inferred tag is always chosen from the candidate set, never fabricated.
// Failures are carried as error values on the resolution so that the run can
// continue for other submodules.
func Resolve(ref *ComponentRef, ovr overrides.Set, manifests ManifestVersionReader) *resolution.ComponentResolution {
	res := &resolution.ComponentResolution{
		Path:       ref.Path,
		ChartPath:  ref.ChartPath,
		CurrentTag: ref.CurrentTag,
		Source:     resolution.SourceInferred,
		RecentTags: bump.TopCandidates(ref.AvailableTags, RecentTagCount),
	}
	if latest, err := bump.SelectBest(ref.AvailableTags); err == nil {
		res.LatestTag = latest.Original()
	}

	suggested, resErr := suggestTag(ref, ovr, res)
	if resErr != nil {
		res.Errors = append(res.Errors, resErr)
		return res
	}

	chartName, current, err := manifests.ReadVersion(ref.ChartPath)
	if err != nil {
		res.Errors = append(res.Errors, standardizeManifestErr(ref, err))
		return res
	}
	res.ChartName = chartName
	res.CurrentChartVersion = resolution.NewSemVer(current)

	res.Bump = bump.Classify(current, suggested)
	res.SuggestedChartVersion = resolution.NewSemVer(res.Bump.Apply(current))
	return res
}

func suggestTag(ref *ComponentRef, ovr overrides.Set, res *resolution.ComponentResolution) (*semver.Version, *resolveerrors.ResolutionError) {
	if overrideTag, ok := ovr.Tags[ref.Name]; ok {
		res.Source = resolution.SourceOverridden
		v, err := semver.NewVersion(overrideTag)
		if err != nil {
			return nil, resolveerrors.NewInvalidOverrideTagError(
				fmt.Errorf("override tag %q for submodule %q: %w", overrideTag, ref.Name, err))
		}
		res.SuggestedTag = overrideTag
		return v, nil
	}

	best, err := bump.SelectBest(ref.AvailableTags)
	if errors.Is(err, bump.ErrNoCandidates) {
		return nil, resolveerrors.NewNoUpdatesAvailableError(
			fmt.Errorf("submodule %q has no usable remote tags", ref.Name))
	}
	res.SuggestedTag = best.Original()
	return best, nil
}

func standardizeManifestErr(ref *ComponentRef, err error) *resolveerrors.ResolutionError {
	var resErr *resolveerrors.ResolutionError
	if errors.As(err, &resErr) {
		return resErr
	}
	return resolveerrors.NewInvalidVersionError(
		fmt.Errorf("chart %q of submodule %q: %w", ref.ChartPath, ref.Name, err))
}
