// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package runflags holds the resolution flags shared by the commands that
// run the pipeline, and builds engine options from them.
package runflags

import (
	"fmt"
	"path/filepath"

	"github.com/fraunhoferportugal/RelSync/pkg/chart"
	"github.com/fraunhoferportugal/RelSync/pkg/chartregistry"
	"github.com/fraunhoferportugal/RelSync/pkg/engine"
	"github.com/fraunhoferportugal/RelSync/pkg/gitrepo"
	"github.com/fraunhoferportugal/RelSync/pkg/overrides"
	"github.com/fraunhoferportugal/RelSync/pkg/relsyncconfig"
	"github.com/fraunhoferportugal/RelSync/pkg/report"
	"github.com/fraunhoferportugal/RelSync/pkg/utils"
	"github.com/spf13/cobra"
)

const (
	TagSourceGit = "git"
	TagSourceOCI = "oci"
)

type Resolve struct {
	TagOverridesFile string
	TagOverrides     string

	ChartPathsFile  string
	RepoChart       string
	SubmoduleCharts string

	StateFile    string
	UseStateFile bool
	ForceRefetch bool
	SaveState    bool

	Output    string
	TagSource string

	PrereleaseIdentifier string
}

func (f *Resolve) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.TagOverridesFile, "tag-overrides-file", "",
		"file with <submodule>: <tag> overrides (default "+relsyncconfig.DefaultTagOverridesFileName+" in the repo root)")
	cmd.Flags().StringVar(&f.TagOverrides, "tag-overrides", "",
		"inline <submodule>: <tag> override document, highest precedence")
	cmd.Flags().StringVar(&f.ChartPathsFile, "chart-paths-file", "",
		"file with {repoChart, submoduleCharts} chart location overrides (default "+relsyncconfig.DefaultChartPathOverridesFileName+")")
	cmd.Flags().StringVar(&f.RepoChart, "repo-chart", "",
		"location of the parent chart relative to the repo root")
	cmd.Flags().StringVar(&f.SubmoduleCharts, "submodule-charts", "",
		"inline <submodule>: <path> chart location document")

	cmd.Flags().StringVar(&f.StateFile, "state-file", "", "resolution state file location")
	cmd.Flags().BoolVar(&f.UseStateFile, "use-state-file", false, "replay the stored resolution instead of fetching")
	cmd.Flags().BoolVar(&f.ForceRefetch, "force-refetch", false, "always recompute, even when a stored resolution exists")
	cmd.Flags().BoolVar(&f.SaveState, "save-state", false, "persist the resolution to the state file")

	cmd.Flags().StringVarP(&f.Output, "output", "o", string(report.FormatCLI), "output format: cli, json or comment")
	cmd.Flags().StringVar(&f.TagSource, "tag-source", TagSourceGit, "where candidate tags come from: git or oci")
	cmd.Flags().StringVar(&f.PrereleaseIdentifier, "prerelease-identifier", "",
		"suffix the suggested repository version with this pre-release identifier")
}

func (f *Resolve) Format() (report.Format, error) {
	return report.ParseFormat(f.Output)
}

// OverrideSet merges the three override tiers: the default override files in
// the repo root, an explicitly named override file, and inline documents.
func (f *Resolve) OverrideSet(repoPath string) (overrides.Set, error) {
	var none overrides.Set

	defaultTags, err := overrides.LoadTagOverridesFile(filepath.Join(repoPath, relsyncconfig.DefaultTagOverridesFileName))
	if err != nil {
		return none, err
	}
	defaultPaths, err := overrides.LoadChartPathOverridesFile(filepath.Join(repoPath, relsyncconfig.DefaultChartPathOverridesFileName))
	if err != nil {
		return none, err
	}
	defaults := overrides.Set{Tags: defaultTags, ChartPaths: defaultPaths}

	var file overrides.Set
	if f.TagOverridesFile != "" {
		file.Tags, err = overrides.LoadTagOverridesFile(utils.ResolvePath(repoPath, f.TagOverridesFile))
		if err != nil {
			return none, err
		}
	}
	if f.ChartPathsFile != "" {
		file.ChartPaths, err = overrides.LoadChartPathOverridesFile(utils.ResolvePath(repoPath, f.ChartPathsFile))
		if err != nil {
			return none, err
		}
	}

	explicitTags, err := overrides.ParseTagOverrides(f.TagOverrides, "--tag-overrides")
	if err != nil {
		return none, err
	}
	explicitCharts, err := overrides.ParseSubmoduleChartPaths(f.SubmoduleCharts, "--submodule-charts")
	if err != nil {
		return none, err
	}
	explicit := overrides.Set{
		Tags: explicitTags,
		ChartPaths: overrides.ChartPathOverrides{
			RepoChart:       f.RepoChart,
			SubmoduleCharts: explicitCharts,
		},
	}

	return overrides.Resolve(defaults, file, explicit), nil
}

// EngineOpts opens the repository, discovers its components, and wires the
// requested tag source.
func (f *Resolve) EngineOpts(config *relsyncconfig.Config) (engine.Opts, *gitrepo.Repo, error) {
	var none engine.Opts

	repo, err := gitrepo.Open(config.RepoPath)
	if err != nil {
		return none, nil, err
	}

	ovr, err := f.OverrideSet(config.RepoPath)
	if err != nil {
		return none, nil, err
	}

	src := engine.NewGitSource(repo)
	components, parent, pins, err := src.Discover(&ovr.ChartPaths)
	if err != nil {
		return none, nil, err
	}

	var tags engine.TagSource = src
	switch f.TagSource {
	case TagSourceGit:
	case TagSourceOCI:
		if config.Registry == "" {
			return none, nil, fmt.Errorf("--tag-source oci needs a registry, set it in %s or via %s",
				relsyncconfig.ConfigFileName, relsyncconfig.OciRegistryEnvVar)
		}
		client, err := chartregistry.NewFromConfig(config)
		if err != nil {
			return none, nil, err
		}
		tags = engine.RegistryTags(client)
	default:
		return none, nil, fmt.Errorf("unknown tag source %q, expected git or oci", f.TagSource)
	}

	opts := engine.Opts{
		Components:           components,
		Parent:               parent,
		Pins:                 pins,
		Tags:                 tags,
		Manifests:            chart.Reader{},
		Overrides:            ovr,
		Parallelism:          config.FetchParallelism,
		PrereleaseIdentifier: f.PrereleaseIdentifier,
	}
	return opts, repo, nil
}

func (f *Resolve) StateOpts(config *relsyncconfig.Config) engine.StateOpts {
	path := config.StateFilePath
	if f.StateFile != "" {
		path = utils.ResolvePath(config.RepoPath, f.StateFile)
	}
	return engine.StateOpts{
		Path:         path,
		UseState:     f.UseStateFile,
		ForceRefetch: f.ForceRefetch,
	}
}
