// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package overrides merges user-supplied tag and chart-path overrides from
// their three precedence tiers: defaults < override file < explicit argument.
package overrides

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

var ErrInvalidOverrideFormat = errors.New("invalid override format")

// TagOverrides maps a submodule name to the tag it is pinned to.
type TagOverrides map[string]string

// ChartPathOverrides points at chart locations that differ from the default
// deploy/chart/Chart.yaml layout.
type ChartPathOverrides struct {
	RepoChart       string            `yaml:"repoChart,omitempty" json:"repoChart,omitempty"`
	SubmoduleCharts map[string]string `yaml:"submoduleCharts,omitempty" json:"submoduleCharts,omitempty"`
}

// Set is the merged view of every override tier.
type Set struct {
	Tags       TagOverrides
	ChartPaths ChartPathOverrides
}

// Resolve merges three tiers in increasing precedence. A key present in a
// later tier completely replaces the earlier value; tiers never deep-merge
// below the key level.
func Resolve(defaults, file, explicit Set) Set {
	merged := Set{
		Tags: lo.Assign(TagOverrides{}, defaults.Tags, file.Tags, explicit.Tags),
		ChartPaths: ChartPathOverrides{
			RepoChart:       defaults.ChartPaths.RepoChart,
			SubmoduleCharts: lo.Assign(map[string]string{}, defaults.ChartPaths.SubmoduleCharts, file.ChartPaths.SubmoduleCharts, explicit.ChartPaths.SubmoduleCharts),
		},
	}
	if file.ChartPaths.RepoChart != "" {
		merged.ChartPaths.RepoChart = file.ChartPaths.RepoChart
	}
	if explicit.ChartPaths.RepoChart != "" {
		merged.ChartPaths.RepoChart = explicit.ChartPaths.RepoChart
	}
	return merged
}

// LoadTagOverridesFile reads a flat <submodule> -> <tag> document.
// A missing file is not an error and yields an empty set.
func LoadTagOverridesFile(path string) (TagOverrides, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return TagOverrides{}, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseTagOverrides(string(contents), path)
}

// ParseTagOverrides validates an inline <submodule> -> <tag> document.
// The source name is only used for error reporting.
func ParseTagOverrides(doc, source string) (TagOverrides, error) {
	if doc == "" {
		return TagOverrides{}, nil
	}
	var o TagOverrides
	if err := yaml.UnmarshalWithOptions([]byte(doc), &o, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w in %s: %s", ErrInvalidOverrideFormat, source, err.Error())
	}
	if o == nil {
		o = TagOverrides{}
	}
	return o, nil
}

// LoadChartPathOverridesFile reads a {repoChart, submoduleCharts} document.
// A missing file is not an error and yields an empty set.
func LoadChartPathOverridesFile(path string) (ChartPathOverrides, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ChartPathOverrides{}, nil
	}
	if err != nil {
		return ChartPathOverrides{}, err
	}
	return ParseChartPathOverrides(string(contents), path)
}

// ParseChartPathOverrides validates an inline {repoChart, submoduleCharts} document.
func ParseChartPathOverrides(doc, source string) (ChartPathOverrides, error) {
	if doc == "" {
		return ChartPathOverrides{}, nil
	}
	var o ChartPathOverrides
	if err := yaml.UnmarshalWithOptions([]byte(doc), &o, yaml.Strict()); err != nil {
		return ChartPathOverrides{}, fmt.Errorf("%w in %s: %s", ErrInvalidOverrideFormat, source, err.Error())
	}
	return o, nil
}

// ParseSubmoduleChartPaths validates an inline flat <submodule> -> <path> document.
func ParseSubmoduleChartPaths(doc, source string) (map[string]string, error) {
	if doc == "" {
		return map[string]string{}, nil
	}
	var o map[string]string
	if err := yaml.UnmarshalWithOptions([]byte(doc), &o, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w in %s: %s", ErrInvalidOverrideFormat, source, err.Error())
	}
	if o == nil {
		o = map[string]string{}
	}
	return o, nil
}
