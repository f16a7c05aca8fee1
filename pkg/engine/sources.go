// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fraunhoferportugal/RelSync/pkg/chart"
	"github.com/fraunhoferportugal/RelSync/pkg/chartregistry"
	"github.com/fraunhoferportugal/RelSync/pkg/gitrepo"
	"github.com/fraunhoferportugal/RelSync/pkg/overrides"
	"github.com/fraunhoferportugal/RelSync/pkg/relsyncconfig"
	"github.com/samber/lo"
)

// GitSource discovers components from the parent repository's submodules and
// serves candidate tags from each submodule's own repository.
type GitSource struct {
	repo *gitrepo.Repo
	subs map[string]*gitrepo.Submodule
}

func NewGitSource(repo *gitrepo.Repo) *GitSource {
	return &GitSource{repo: repo, subs: map[string]*gitrepo.Submodule{}}
}

// Discover lists the submodules and reads the parent chart. Chart locations
// default to deploy/chart/Chart.yaml inside each submodule unless overridden.
func (s *GitSource) Discover(chartPaths *overrides.ChartPathOverrides) ([]*Component, *ParentManifest, map[string]string, error) {
	subs, err := s.repo.Submodules()
	if err != nil {
		return nil, nil, nil, err
	}

	var components []*Component
	for _, sub := range subs {
		s.subs[sub.Name] = sub

		chartRel := relsyncconfig.DefaultChartLocation
		if chartPaths != nil {
			if p, ok := chartPaths.SubmoduleCharts[sub.Name]; ok {
				chartRel = p
			}
		}

		subRepo, err := sub.Repo()
		if err != nil {
			return nil, nil, nil, err
		}
		// empty when the pinned commit carries no tag
		currentTag, _, err := subRepo.CurrentTag()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to read current tag of submodule %q: %w", sub.Name, err)
		}

		components = append(components, &Component{
			Name:       sub.Name,
			Path:       sub.Path,
			CurrentTag: currentTag,
			ChartPath:  filepath.Join(s.repo.Path(), sub.Path, chartRel),
		})
	}

	parentRel := relsyncconfig.DefaultChartLocation
	if chartPaths != nil && chartPaths.RepoChart != "" {
		parentRel = chartPaths.RepoChart
	}
	parentPath := filepath.Join(s.repo.Path(), parentRel)
	parentChart, err := chart.Read(parentPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read parent chart: %w", err)
	}
	parentVersion, err := parentChart.SemVer()
	if err != nil {
		return nil, nil, nil, err
	}

	parent := &ParentManifest{
		ID:        parentChart.Name,
		ChartPath: parentPath,
		Version:   parentVersion,
		Dependencies: lo.Map(subs, func(sub *gitrepo.Submodule, _ int) string {
			return sub.Name
		}),
	}

	return components, parent, gitrepo.Pins(subs), nil
}

func (s *GitSource) Tags(ctx context.Context, c *Component) ([]string, error) {
	sub, ok := s.subs[c.Name]
	if !ok {
		return nil, fmt.Errorf("unknown submodule %q", c.Name)
	}
	subRepo, err := sub.Repo()
	if err != nil {
		return nil, err
	}
	return subRepo.Tags()
}

var _ TagSource = (*GitSource)(nil)

// RegistryTags serves candidate tags from an OCI chart registry instead of
// git. Chart repositories are keyed by submodule name.
func RegistryTags(client *chartregistry.Remote) TagSource {
	return registryTagSource{src: chartregistry.NewTagSource(client)}
}

type registryTagSource struct {
	src *chartregistry.TagSource
}

func (s registryTagSource) Tags(ctx context.Context, c *Component) ([]string, error) {
	return s.src.Tags(ctx, c.Name)
}
