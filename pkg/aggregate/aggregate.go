// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package aggregate folds per-submodule bump decisions into the bump of
// every chart that depends on them.
package aggregate

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/fraunhoferportugal/RelSync/pkg/bump"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution"
)

// Aggregate computes one ManifestAggregation per entry of dependencyMap.
//
// A manifest's bump is the maximum severity among the bumps of the
// components it depends on; a missing or failed component contributes None
// and marks the aggregation Partial. Max is associative and commutative, so
// the outcome never depends on map iteration order; aggregations are emitted
// in sorted manifest-id order on top of that.
func Aggregate(
	components resolution.Components,
	dependencyMap map[string][]string,
	currentVersions map[string]*semver.Version,
) ([]*resolution.ManifestAggregation, error) {
	var aggregations []*resolution.ManifestAggregation

	for _, manifestID := range slices.Sorted(maps.Keys(dependencyMap)) {
		current, ok := currentVersions[manifestID]
		if !ok || current == nil {
			return nil, fmt.Errorf("current version of manifest %q is unknown", manifestID)
		}

		agg := &resolution.ManifestAggregation{
			ManifestID:         manifestID,
			CurrentVersion:     resolution.NewSemVer(current),
			DependencyVersions: map[string]*resolution.SemVer{},
		}

		for _, dep := range dependencyMap[manifestID] {
			c, ok := components[dep]
			if !ok || c.Failed() {
				agg.Partial = true
				if ok && c.CurrentChartVersion != nil {
					// keep the dependency pinned at its current version
					agg.DependencyVersions[dep] = c.CurrentChartVersion
				}
				continue
			}
			agg.Bump = bump.Max(agg.Bump, c.Bump)
			agg.DependencyVersions[dep] = c.SuggestedChartVersion
		}

		agg.SuggestedVersion = resolution.NewSemVer(agg.Bump.Apply(current))
		aggregations = append(aggregations, agg)
	}

	return aggregations, nil
}
