// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"github.com/fraunhoferportugal/RelSync/cmd/relsync/cmd/runflags"
	"github.com/fraunhoferportugal/RelSync/pkg/engine"
	"github.com/fraunhoferportugal/RelSync/pkg/relsyncconfig"
	"github.com/fraunhoferportugal/RelSync/pkg/report"
	"github.com/fraunhoferportugal/RelSync/pkg/statestore"
	"github.com/spf13/cobra"
)

func Cmd(config *relsyncconfig.Config) *cobra.Command {
	f := &runflags.Resolve{}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Resolve submodule tag suggestions and report them",
		Long: "Resolve which tag every submodule should advance to, how that bumps each " +
			"submodule chart, and how the bumps aggregate into the repository chart. " +
			"Nothing is written to the working tree; use 'relsync update' to apply.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := f.Format()
			if err != nil {
				return err
			}

			opts, _, err := f.EngineOpts(config)
			if err != nil {
				return err
			}

			state := f.StateOpts(config)
			out, err := engine.LoadOrFetch(cmd.Context(), state, opts)
			if err != nil {
				return err
			}

			if f.SaveState && !out.Replayed {
				if err := statestore.Save(cmd.Context(), out.Resolution, state.Path); err != nil {
					return err
				}
			}

			return report.Render(cmd.OutOrStdout(), out.Resolution, format, out.Stale)
		},
	}
	f.Register(cmd)

	return cmd
}
