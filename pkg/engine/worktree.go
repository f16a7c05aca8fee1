// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/fraunhoferportugal/RelSync/pkg/bump"
	"github.com/fraunhoferportugal/RelSync/pkg/chart"
	"github.com/fraunhoferportugal/RelSync/pkg/fingerprint"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution/resolveerrors"
	"github.com/samber/lo"
)

// FromWorktree computes a resolution without fetching any tags: each
// component's chart version as found in the worktree is compared against the
// version the parent chart currently records for it. This serves
// 'distribution update', which only redistributes versions that are already
// checked out.
func FromWorktree(opts Opts, parentDeps []*chart.Dependency) (*resolution.Resolution, error) {
	recorded := lo.SliceToMap(parentDeps, func(d *chart.Dependency) (string, string) {
		return d.Name, d.Version
	})

	res := resolution.New()
	for _, c := range opts.Components {
		comp := &resolution.ComponentResolution{
			Path:       c.Path,
			ChartPath:  c.ChartPath,
			CurrentTag: c.CurrentTag,
			Source:     resolution.SourceInferred,
		}
		res.Components[c.Name] = comp

		name, v, err := opts.Manifests.ReadVersion(c.ChartPath)
		if err != nil {
			comp.Errors = append(comp.Errors, resolveerrors.NewInvalidVersionError(
				fmt.Errorf("chart %q of submodule %q: %w", c.ChartPath, c.Name, err)))
			continue
		}
		comp.ChartName = name

		recordedStr, ok := recorded[name]
		if !ok {
			recordedStr, ok = recorded[c.Name]
		}
		if !ok {
			// not a dependency of the parent chart yet
			recordedStr = v.String()
		}
		rec, err := semver.NewVersion(recordedStr)
		if err != nil {
			comp.Errors = append(comp.Errors, resolveerrors.NewInvalidVersionError(
				fmt.Errorf("parent chart records invalid version %q for %q: %w", recordedStr, name, err)))
			continue
		}

		comp.CurrentChartVersion = resolution.NewSemVer(rec)
		comp.SuggestedChartVersion = resolution.NewSemVer(v)
		comp.Bump = bump.Classify(rec, v)
	}

	if err := Reaggregate(res, opts.Parent, opts.PrereleaseIdentifier); err != nil {
		return nil, err
	}

	res.ComputedAt = time.Now().UTC()
	res.SourceFingerprint = fingerprint.Compute(opts.Pins)
	return res, nil
}
