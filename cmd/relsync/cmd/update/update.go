// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package update

import (
	"github.com/fraunhoferportugal/RelSync/cmd/relsync/cmd/runflags"
	"github.com/fraunhoferportugal/RelSync/pkg/apply"
	"github.com/fraunhoferportugal/RelSync/pkg/engine"
	"github.com/fraunhoferportugal/RelSync/pkg/relsyncconfig"
	"github.com/fraunhoferportugal/RelSync/pkg/report"
	"github.com/fraunhoferportugal/RelSync/pkg/statestore"
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
		Short: "Resolve and apply submodule and chart updates",
		Long: "Resolve (or replay a stored resolution), check out every suggested tag in " +
			"its submodule, rewrite the repository chart, and refresh the state file.",
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

			result, err := apply.Apply(out.Resolution, apply.Opts{
				Repo:          repo,
				Backup:        !noBackup,
				Commit:        commit,
				CommitMessage: commitMessage,
			})
			if err != nil {
				return err
			}

			if err := statestore.Save(cmd.Context(), out.Resolution, state.Path); err != nil {
				return err
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
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "do not keep .bak copies of rewritten charts")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit the staged submodule and chart changes")
	cmd.Flags().StringVar(&commitMessage, "commit-message", "", "commit message (default \""+apply.DefaultCommitMessage+"\")")

	return cmd
}
