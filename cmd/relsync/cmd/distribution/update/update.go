// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package update

import (
	"github.com/fraunhoferportugal/RelSync/cmd/relsync/cmd/runflags"
	"github.com/fraunhoferportugal/RelSync/pkg/apply"
	"github.com/fraunhoferportugal/RelSync/pkg/chart"
	"github.com/fraunhoferportugal/RelSync/pkg/engine"
	"github.com/fraunhoferportugal/RelSync/pkg/relsyncconfig"
	"github.com/fraunhoferportugal/RelSync/pkg/report"
	"github.com/spf13/cobra"
)

func Cmd(config *relsyncconfig.Config) *cobra.Command {
	f := &runflags.Resolve{}
	var (
		noBackup      bool
		commit        bool
		commitMessage string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Redistribute the versions already checked out into the repository chart",
		Long: "Recompute the repository chart bump from the submodule chart versions " +
			"present in the worktree, without fetching any tags, and rewrite the " +
			"repository chart accordingly.",
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

			parentChart, err := chart.Read(opts.Parent.ChartPath)
			if err != nil {
				return err
			}

			res, err := engine.FromWorktree(opts, parentChart.Dependencies)
			if err != nil {
				return err
			}

			if _, err := apply.Apply(res, apply.Opts{
				Repo:          repo,
				Backup:        !noBackup,
				Commit:        commit,
				CommitMessage: commitMessage,
			}); err != nil {
				return err
			}

			return report.Render(cmd.OutOrStdout(), res, format, false)
		},
	}
	f.Register(cmd)
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "do not keep .bak copies of rewritten charts")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit the chart changes")
	cmd.Flags().StringVar(&commitMessage, "commit-message", "", "commit message (default \""+apply.DefaultCommitMessage+"\")")

	return cmd
}
