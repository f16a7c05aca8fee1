// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package bump

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	bumpkind "github.com/fraunhoferportugal/RelSync/pkg/bump"
	"github.com/fraunhoferportugal/RelSync/pkg/chart"
	"github.com/fraunhoferportugal/RelSync/pkg/gitrepo"
	"github.com/fraunhoferportugal/RelSync/pkg/relsyncconfig"
	"github.com/spf13/cobra"
)

func Cmd(config *relsyncconfig.Config) *cobra.Command {
	var (
		repoChart     string
		chartBumpType string
		noChart       bool
		skipRepoBump  bool
		createTag     bool
		noBackup      bool
		commit        bool
		commitMessage string
	)

	cmd := &cobra.Command{
		Use:   "bump <major|minor|patch|release>",
		Short: "Bump the repository version starting from its latest tag",
		Long: "Compute the next repository version from the latest existing tag and " +
			"rewrite the repository chart to match. 'release' finalizes a pre-release " +
			"version instead of incrementing it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if skipRepoBump && noChart {
				return fmt.Errorf("--skip-repo-bump together with --no-chart leaves nothing to bump")
			}

			repo, err := gitrepo.Open(config.RepoPath)
			if err != nil {
				return err
			}

			tags, err := repo.Tags()
			if err != nil {
				return err
			}
			latest, err := bumpkind.SelectBest(tags)
			vPrefix := true
			switch {
			case errors.Is(err, bumpkind.ErrNoCandidates):
				if args[0] == releaseArg {
					return fmt.Errorf("no existing tags to release")
				}
				latest = semver.New(0, 0, 0, "", "")
			case err != nil:
				return err
			default:
				vPrefix = strings.HasPrefix(latest.Original(), "v")
			}

			next := latest
			if !skipRepoBump {
				next, err = nextVersion(latest, args[0])
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			var chartNext *semver.Version
			chartRel := relsyncconfig.DefaultChartLocation
			if repoChart != "" {
				chartRel = repoChart
			}
			if !noChart {
				chartPath := filepath.Join(config.RepoPath, chartRel)
				c, err := chart.Read(chartPath)
				if err != nil {
					return err
				}
				chartCurrent, err := c.SemVer()
				if err != nil {
					return err
				}

				chartArg := args[0]
				if chartBumpType != "" {
					chartArg = chartBumpType
				}
				chartNext, err = nextVersion(chartCurrent, chartArg)
				if err != nil {
					return err
				}

				upd, err := chart.NewUpdate(chartPath)
				if err != nil {
					return err
				}
				upd.SetVersion(chartNext.String())
				upd.SetAppVersion(next.String())
				if err := upd.Write(!noBackup); err != nil {
					return err
				}
				fmt.Fprintf(out, "chart: %s -> %s\n", chartCurrent, chartNext)
			}
			if !skipRepoBump {
				fmt.Fprintf(out, "repo: %s -> %s\n", latest, next)
			}

			if commit {
				if noChart {
					return fmt.Errorf("--commit requires a chart rewrite, drop --no-chart")
				}
				if err := repo.AddPaths(chartRel); err != nil {
					return err
				}
				message := commitMessage
				if message == "" {
					message = fmt.Sprintf("chore: bump version to %s", next)
				}
				hash, err := repo.Commit(message)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "committed %s\n", hash)
			}

			if createTag {
				tag := tagName(next, chartNext, skipRepoBump, vPrefix)
				if err := repo.CreateTag(tag, "release "+tag); err != nil {
					return err
				}
				fmt.Fprintf(out, "created tag %s\n", tag)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&repoChart, "repo-chart", "",
		"location of the repository chart relative to the repo root")
	cmd.Flags().StringVar(&chartBumpType, "chart-bump-type", "",
		"bump the chart version by this kind instead of the repository bump kind")
	cmd.Flags().BoolVar(&noChart, "no-chart", false, "do not touch the repository chart")
	cmd.Flags().BoolVar(&skipRepoBump, "skip-repo-bump", false,
		"keep the repository version, only bump the chart")
	cmd.Flags().BoolVar(&createTag, "create-tag", false, "create the resulting tag")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "do not keep a .bak copy of the rewritten chart")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit the chart change")
	cmd.Flags().StringVar(&commitMessage, "commit-message", "", "commit message")

	return cmd
}

const releaseArg = "release"

// nextVersion computes the version that follows v for the given bump
// argument. 'release' drops pre-release and build metadata, every other
// argument increments the corresponding numeric component.
func nextVersion(v *semver.Version, arg string) (*semver.Version, error) {
	if arg == releaseArg {
		if v.Prerelease() == "" {
			return nil, fmt.Errorf("version %s is already a release", v)
		}
		released, err := v.SetPrerelease("")
		if err != nil {
			return nil, err
		}
		released, err = released.SetMetadata("")
		if err != nil {
			return nil, err
		}
		return &released, nil
	}

	kind, err := bumpkind.ParseKind(arg)
	if err != nil || kind == bumpkind.None {
		return nil, fmt.Errorf("unknown bump type %q, expected major, minor, patch or release", arg)
	}
	return kind.Apply(v), nil
}

// tagName renders the tag for the bumped repository. When the repository
// version stays put the chart version rides along as build metadata, so the
// chart-only bump still gets a distinct tag.
func tagName(repo, chartVersion *semver.Version, skipRepoBump, vPrefix bool) string {
	tag := fmt.Sprintf("%d.%d.%d", repo.Major(), repo.Minor(), repo.Patch())
	if repo.Prerelease() != "" {
		tag += "-" + repo.Prerelease()
	}
	if vPrefix {
		tag = "v" + tag
	}
	if skipRepoBump && chartVersion != nil {
		tag += "+chart" + chartVersion.String()
	}
	return tag
}
