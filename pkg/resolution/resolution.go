// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resolution defines the persisted outcome of one resolution run:
// the per-submodule tag suggestions and the chart-level aggregations
// derived from them.
package resolution

import (
	"fmt"
	"slices"
	"time"

	"github.com/fraunhoferportugal/RelSync/pkg/bump"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution/resolveerrors"
	"github.com/fraunhoferportugal/RelSync/pkg/schema"
	"github.com/samber/lo"
)

const (
	Kind       = "Resolution"
	Version    = "v1"
	APIVersion = schema.APIGroup + "/" + Version
)

// Source records whether a suggested tag was inferred from the available
// tags or pinned by a user override.
type Source string

const (
	SourceInferred   Source = "inferred"
	SourceOverridden Source = "overridden"
)

// ComponentResolution is the immutable result for one submodule.
type ComponentResolution struct {
	Path      string `yaml:"path" json:"path"`
	ChartName string `yaml:"chart-name,omitempty" json:"chartName,omitempty"`
	ChartPath string `yaml:"chart-path,omitempty" json:"chartPath,omitempty"`

	CurrentTag   string `yaml:"current-tag,omitempty" json:"currentTag,omitempty"`
	LatestTag    string `yaml:"latest-tag,omitempty" json:"latestTag,omitempty"`
	SuggestedTag string `yaml:"suggested-tag,omitempty" json:"suggestedTag,omitempty"`

	CurrentChartVersion   *SemVer `yaml:"current-chart-version,omitempty" json:"currentChartVersion,omitempty"`
	SuggestedChartVersion *SemVer `yaml:"suggested-chart-version,omitempty" json:"suggestedChartVersion,omitempty"`

	Bump   bump.Kind `yaml:"bump" json:"bump"`
	Source Source    `yaml:"source" json:"source"`

	// RecentTags is the top of the candidate list, reporting only
	RecentTags []string `yaml:"recent-tags,omitempty" json:"recentTags,omitempty"`

	Errors []*resolveerrors.ResolutionError `yaml:"errors,omitempty" json:"errors,omitempty"`
}

// Failed reports whether this component could not be resolved.
// Failed components contribute bump.None to aggregations.
func (c *ComponentResolution) Failed() bool {
	return len(c.Errors) > 0
}

// Components is a <submodule name> -> ComponentResolution mapping
type Components map[string]*ComponentResolution

// ManifestAggregation is the bump decision for one dependent chart,
// commonly the parent repository chart.
type ManifestAggregation struct {
	ManifestID string `yaml:"manifest" json:"manifest"`
	ChartPath  string `yaml:"chart-path,omitempty" json:"chartPath,omitempty"`

	CurrentVersion   *SemVer `yaml:"current-version,omitempty" json:"currentVersion,omitempty"`
	SuggestedVersion *SemVer `yaml:"suggested-version,omitempty" json:"suggestedVersion,omitempty"`

	Bump bump.Kind `yaml:"bump" json:"bump"`

	// Partial marks that at least one dependency failed to resolve and
	// contributed None to the max computation
	Partial bool `yaml:"partial,omitempty" json:"partial,omitempty"`

	// DependencyVersions is the <submodule name> -> suggested chart version
	// mapping to write into the manifest's dependency block
	DependencyVersions map[string]*SemVer `yaml:"dependency-versions,omitempty" json:"dependencyVersions,omitempty"`
}

// Resolution is the complete, persisted output of one resolution run.
// A fresh Resolution supersedes any prior one atomically.
type Resolution struct {
	schema.ManifestMeta `yaml:",inline" json:",inline"`

	Components   Components             `yaml:"components" json:"components"`
	Aggregations []*ManifestAggregation `yaml:"aggregations" json:"aggregations"`

	ComputedAt        time.Time `yaml:"computed-at" json:"computedAt"`
	SourceFingerprint string    `yaml:"source-fingerprint,omitempty" json:"sourceFingerprint,omitempty"`
}

func New() *Resolution {
	return &Resolution{
		ManifestMeta: schema.ManifestMeta{
			APIVersion: APIVersion,
			Kind:       Kind,
		},
		Components: make(Components),
	}
}

// FailedComponents returns the names of components that could not be
// resolved, sorted for stable reporting.
func (r *Resolution) FailedComponents() []string {
	names := lo.Keys(lo.PickBy(r.Components, func(_ string, c *ComponentResolution) bool {
		return c.Failed()
	}))
	slices.Sort(names)
	return names
}

// Summary distinguishes fully resolved, partially resolved and stale runs.
func (r *Resolution) Summary(stale bool) string {
	s := "fully resolved"
	if failed := r.FailedComponents(); len(failed) > 0 {
		s = fmt.Sprintf("partially resolved (%d components failed)", len(failed))
	}
	if stale {
		s += ", stale (source fingerprint changed since this resolution was computed)"
	}
	return s
}
