// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package apply writes a Resolution back into the working tree: submodule
// checkouts, gitlink staging, and the parent chart rewrite.
package apply

import (
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"

	"github.com/fraunhoferportugal/RelSync/pkg/chart"
	"github.com/fraunhoferportugal/RelSync/pkg/gitrepo"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution"
	"github.com/samber/lo"
)

const DefaultCommitMessage = "chore: sync submodule releases"

type Opts struct {
	Repo *gitrepo.Repo

	// Backup keeps a .bak copy of every rewritten chart
	Backup bool

	Commit        bool
	CommitMessage string
}

// Result reports what Apply actually changed.
type Result struct {
	// CheckedOut maps submodule name -> tag the worktree was moved to
	CheckedOut map[string]string

	// Skipped components: failed resolutions and ones already at their
	// suggested tag
	Skipped []string

	RewrittenCharts []string

	CommitHash string
}

// Apply moves every cleanly resolved submodule to its suggested tag, rewrites
// the aggregated charts, stages everything, and optionally commits. Failed
// components are skipped, not fatal; the caller decides based on Result.
func Apply(res *resolution.Resolution, opts Opts) (*Result, error) {
	subs, err := opts.Repo.Submodules()
	if err != nil {
		return nil, err
	}
	byName := lo.SliceToMap(subs, func(s *gitrepo.Submodule) (string, *gitrepo.Submodule) {
		return s.Name, s
	})

	result := &Result{CheckedOut: map[string]string{}}
	var staged []string

	for _, name := range slices.Sorted(maps.Keys(res.Components)) {
		c := res.Components[name]
		if c.Failed() || c.SuggestedTag == "" || c.SuggestedTag == c.CurrentTag {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		sub, ok := byName[name]
		if !ok {
			slog.Warn("resolved component is not a submodule of this worktree, skipping", "component", name)
			result.Skipped = append(result.Skipped, name)
			continue
		}

		subRepo, err := sub.Repo()
		if err != nil {
			return nil, err
		}
		if err := subRepo.CheckoutTag(c.SuggestedTag); err != nil {
			return nil, fmt.Errorf("failed to checkout %q in submodule %q: %w", c.SuggestedTag, name, err)
		}
		slog.Info("checked out suggested tag", "submodule", name, "tag", c.SuggestedTag)

		result.CheckedOut[name] = c.SuggestedTag
		staged = append(staged, sub.Path)
	}

	for _, agg := range res.Aggregations {
		if agg.ChartPath == "" {
			continue
		}
		if err := rewriteChart(res, agg, opts.Backup); err != nil {
			return nil, err
		}
		result.RewrittenCharts = append(result.RewrittenCharts, agg.ChartPath)

		rel, err := filepath.Rel(opts.Repo.Path(), agg.ChartPath)
		if err != nil || filepath.IsAbs(rel) {
			rel = agg.ChartPath
		}
		staged = append(staged, rel)
	}

	if len(staged) > 0 {
		if err := opts.Repo.AddPaths(staged...); err != nil {
			return nil, err
		}
	}

	if opts.Commit {
		message := opts.CommitMessage
		if message == "" {
			message = DefaultCommitMessage
		}
		hash, err := opts.Repo.Commit(message)
		if err != nil {
			return nil, err
		}
		result.CommitHash = hash
	}

	return result, nil
}

// rewriteChart writes the aggregated version and the dependency versions into
// the chart, leaving unknown fields alone. Dependency entries are matched by
// chart name, falling back to the submodule name.
func rewriteChart(res *resolution.Resolution, agg *resolution.ManifestAggregation, backup bool) error {
	u, err := chart.NewUpdate(agg.ChartPath)
	if err != nil {
		return err
	}

	if agg.SuggestedVersion != nil {
		u.SetVersion(agg.SuggestedVersion.String())
		u.SetAppVersion(agg.SuggestedVersion.String())
	}

	for _, name := range slices.Sorted(maps.Keys(agg.DependencyVersions)) {
		version := agg.DependencyVersions[name]
		if version == nil {
			continue
		}

		depName := name
		if c, ok := res.Components[name]; ok && c.ChartName != "" {
			depName = c.ChartName
		}

		found, err := u.SetDependencyVersion(depName, version.String())
		if err != nil {
			return err
		}
		if !found {
			slog.Warn("chart has no matching dependency entry", "chart", agg.ChartPath, "dependency", depName)
		}
	}

	return u.Write(backup)
}
