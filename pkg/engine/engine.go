// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package engine runs the full resolution pipeline: discover components,
// fetch their candidate tags, resolve each one, aggregate into the parent
// chart, and stamp the result so it can be persisted and replayed.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/fraunhoferportugal/RelSync/pkg/aggregate"
	"github.com/fraunhoferportugal/RelSync/pkg/fingerprint"
	"github.com/fraunhoferportugal/RelSync/pkg/overrides"
	"github.com/fraunhoferportugal/RelSync/pkg/relsyncconfig"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution/resolveerrors"
	"github.com/fraunhoferportugal/RelSync/pkg/resolver"
	"github.com/fraunhoferportugal/RelSync/pkg/statestore"
	"golang.org/x/sync/errgroup"
)

// Component is a discovered submodule before its tags have been fetched.
type Component struct {
	Name       string
	Path       string
	CurrentTag string
	ChartPath  string
}

// ParentManifest identifies the chart that aggregates the components.
type ParentManifest struct {
	ID           string
	ChartPath    string
	Version      *semver.Version
	Dependencies []string
}

// TagSource fetches the candidate tags of one component. Implementations
// exist for git submodule repositories and for OCI chart registries.
type TagSource interface {
	Tags(ctx context.Context, c *Component) ([]string, error)
}

type Opts struct {
	Components []*Component
	Parent     *ParentManifest

	// Pins feeds the source fingerprint: submodule name -> pinned ref
	Pins map[string]string

	Tags      TagSource
	Manifests resolver.ManifestVersionReader
	Overrides overrides.Set

	// Parallelism bounds concurrent tag fetches, defaulted when < 1
	Parallelism int

	// PrereleaseIdentifier suffixes the aggregated suggested versions
	PrereleaseIdentifier string
}

// FetchResolution computes a fresh Resolution. Tag fetches run with bounded
// parallelism and all of them complete before aggregation starts. A fetch or
// resolve failure is carried on the affected component; only override or
// aggregation errors abort the run.
func FetchResolution(ctx context.Context, opts Opts) (*resolution.Resolution, error) {
	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = relsyncconfig.DefaultFetchParallelism
	}

	var mu sync.Mutex
	tagsByName := make(map[string][]string, len(opts.Components))
	fetchErrs := make(map[string]error)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, c := range opts.Components {
		g.Go(func() error {
			tags, err := opts.Tags.Tags(gctx, c)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fetchErrs[c.Name] = err
				return nil
			}
			tagsByName[c.Name] = tags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := resolution.New()
	for _, c := range opts.Components {
		if err, ok := fetchErrs[c.Name]; ok {
			slog.Warn("failed to fetch tags", "component", c.Name, "err", err.Error())
			res.Components[c.Name] = &resolution.ComponentResolution{
				Path:       c.Path,
				ChartPath:  c.ChartPath,
				CurrentTag: c.CurrentTag,
				Source:     resolution.SourceInferred,
				Errors: []*resolveerrors.ResolutionError{
					resolveerrors.Standardize(fmt.Errorf("failed to fetch tags of %q: %w", c.Name, err)),
				},
			}
			continue
		}

		ref := &resolver.ComponentRef{
			Name:          c.Name,
			Path:          c.Path,
			CurrentTag:    c.CurrentTag,
			ChartPath:     c.ChartPath,
			AvailableTags: tagsByName[c.Name],
		}
		res.Components[c.Name] = resolver.Resolve(ref, opts.Overrides, opts.Manifests)
	}

	if err := Reaggregate(res, opts.Parent, opts.PrereleaseIdentifier); err != nil {
		return nil, err
	}

	res.ComputedAt = time.Now().UTC()
	res.SourceFingerprint = fingerprint.Compute(opts.Pins)
	return res, nil
}

// Reaggregate recomputes the aggregations of a resolution, after its
// component resolutions were edited (interactive acceptance rewrites
// suggested tags in place).
func Reaggregate(res *resolution.Resolution, parent *ParentManifest, prereleaseIdentifier string) error {
	deps := map[string][]string{parent.ID: parent.Dependencies}
	current := map[string]*semver.Version{parent.ID: parent.Version}
	aggs, err := aggregate.Aggregate(res.Components, deps, current)
	if err != nil {
		return err
	}
	for _, agg := range aggs {
		agg.ChartPath = parent.ChartPath
		if prereleaseIdentifier != "" {
			suggested, err := withPrereleaseIdentifier(
				parent.Version, agg.SuggestedVersion.Value(), prereleaseIdentifier)
			if err != nil {
				return err
			}
			agg.SuggestedVersion = resolution.NewSemVer(suggested)
		}
	}
	res.Aggregations = aggs
	return nil
}

// Outcome is a Resolution together with how it was obtained.
type Outcome struct {
	Resolution *resolution.Resolution

	// Replayed is true when the resolution came from the state file
	Replayed bool

	// Stale is only meaningful for replayed resolutions: the pinned refs
	// have moved since the resolution was computed
	Stale bool
}

type StateOpts struct {
	Path         string
	UseState     bool
	ForceRefetch bool
}

// LoadOrFetch implements the state replay protocol: a stored resolution is
// replayed as-is when requested, unless a refetch is forced. A missing state
// file silently falls back to fetching; a corrupt one aborts.
func LoadOrFetch(ctx context.Context, state StateOpts, opts Opts) (*Outcome, error) {
	if state.UseState && !state.ForceRefetch {
		res, err := statestore.Load(state.Path)
		if err == nil {
			stale := statestore.IsStale(res, fingerprint.Compute(opts.Pins))
			if stale {
				slog.Warn("replaying stale resolution, submodule pins changed since it was computed", "path", state.Path)
			}
			return &Outcome{Resolution: res, Replayed: true, Stale: stale}, nil
		}
		if !errors.Is(err, statestore.ErrNotFound) {
			return nil, err
		}
		slog.Info("no stored resolution, fetching", "path", state.Path)
	}

	res, err := FetchResolution(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Outcome{Resolution: res}, nil
}
