// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package update

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/fraunhoferportugal/RelSync/cmd/relsync/cmd/runflags"
	"github.com/fraunhoferportugal/RelSync/pkg/apply"
	"github.com/fraunhoferportugal/RelSync/pkg/bump"
	"github.com/fraunhoferportugal/RelSync/pkg/engine"
	"github.com/fraunhoferportugal/RelSync/pkg/relsyncconfig"
	"github.com/fraunhoferportugal/RelSync/pkg/report"
	"github.com/fraunhoferportugal/RelSync/pkg/resolution"
	"github.com/fraunhoferportugal/RelSync/pkg/statestore"
	"github.com/spf13/cobra"
)

func Cmd(config *relsyncconfig.Config) *cobra.Command {
	f := &runflags.Resolve{}
	var (
		accept        bool
		noBackup      bool
		commit        bool
		commitMessage string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update submodules with per-component acceptance",
		Long: "Walk every resolved submodule and ask whether to take the suggested tag, " +
			"the latest tag, one of the recent tags by index, or skip it. " +
			"--accept takes every suggestion without prompting.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := f.Format()
			if err != nil {
				return err
			}

			opts, repo, err := f.EngineOpts(config)
			if err != nil {
				return err
			}

			state := f.StateOpts(config)
			out, err := engine.LoadOrFetch(cmd.Context(), state, opts)
			if err != nil {
				return err
			}

			if err := decide(out.Resolution, cmd.InOrStdin(), cmd.OutOrStdout(), accept); err != nil {
				return err
			}
			// acceptance may have rewritten suggested tags
			if err := engine.Reaggregate(out.Resolution, opts.Parent, f.PrereleaseIdentifier); err != nil {
				return err
			}

			result, err := apply.Apply(out.Resolution, apply.Opts{
				Repo:          repo,
				Backup:        !noBackup,
				Commit:        commit,
				CommitMessage: commitMessage,
			})
			if err != nil {
				return err
			}

			if f.SaveState {
				if err := statestore.Save(cmd.Context(), out.Resolution, state.Path); err != nil {
					return err
				}
			}

			if err := report.Render(cmd.OutOrStdout(), out.Resolution, format, out.Stale); err != nil {
				return err
			}
			if result.CommitHash != "" {
				cmd.Printf("Committed as %s\n", result.CommitHash)
			}
			return nil
		},
	}
	f.Register(cmd)
	cmd.Flags().BoolVar(&accept, "accept", false, "take every suggestion without prompting")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "do not keep .bak copies of rewritten charts")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit the staged submodule and chart changes")
	cmd.Flags().StringVar(&commitMessage, "commit-message", "", "commit message (default \""+apply.DefaultCommitMessage+"\")")

	return cmd
}

// decide walks the components in name order and rewrites each suggested tag
// per the user's choice. Failed components are skipped outright; with
// acceptAll every suggestion stands as-is.
func decide(res *resolution.Resolution, in io.Reader, out io.Writer, acceptAll bool) error {
	scanner := bufio.NewScanner(in)

	for _, name := range slices.Sorted(maps.Keys(res.Components)) {
		c := res.Components[name]
		if c.Failed() {
			fmt.Fprintf(out, "%s: skipped (%s)\n", name, c.Errors[0].Code)
			continue
		}
		if acceptAll || c.SuggestedTag == "" {
			continue
		}

		fmt.Fprintf(out, "\n%s: %s -> %s (%s)\n", name, orNone(c.CurrentTag), c.SuggestedTag, c.Bump.String())
		for i, tag := range c.RecentTags {
			fmt.Fprintf(out, "  [%d] %s\n", i, tag)
		}

		chosen, err := prompt(scanner, out, c)
		if err != nil {
			return err
		}
		if chosen != c.SuggestedTag {
			choose(c, chosen)
		}
	}
	return nil
}

// prompt keeps asking until the answer is one of the accepted forms. An
// exhausted input stream falls back to the suggestion.
func prompt(scanner *bufio.Scanner, out io.Writer, c *resolution.ComponentResolution) (string, error) {
	for {
		fmt.Fprint(out, "take [s]uggested, [l]atest, [n]one, or a tag index: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return c.SuggestedTag, nil
		}

		switch answer := scanner.Text(); answer {
		case "", "s":
			return c.SuggestedTag, nil
		case "l":
			if c.LatestTag != "" {
				return c.LatestTag, nil
			}
		case "n":
			return "", nil
		default:
			if i, err := strconv.Atoi(answer); err == nil && i >= 0 && i < len(c.RecentTags) {
				return c.RecentTags[i], nil
			}
		}
		fmt.Fprintln(out, "unrecognized choice")
	}
}

// choose pins the component to a manually picked tag and recomputes its
// chart bump accordingly. An empty tag marks the component skipped.
func choose(c *resolution.ComponentResolution, tag string) {
	c.SuggestedTag = tag
	if tag == "" {
		c.Bump = bump.None
		c.SuggestedChartVersion = c.CurrentChartVersion
		return
	}

	v, err := semver.NewVersion(tag)
	if err != nil || c.CurrentChartVersion == nil {
		return
	}
	c.Bump = bump.Classify(c.CurrentChartVersion.Value(), v)
	c.SuggestedChartVersion = resolution.NewSemVer(c.Bump.Apply(c.CurrentChartVersion.Value()))
}

func orNone(tag string) string {
	if tag == "" {
		return "(untagged)"
	}
	return tag
}
