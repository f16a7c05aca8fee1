// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package format

import (
	"io"
	"os"

	"github.com/fraunhoferportugal/RelSync/pkg/relsyncconfig"
	"github.com/fraunhoferportugal/RelSync/pkg/report"
	"github.com/spf13/cobra"
)

func Cmd(config *relsyncconfig.Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "format [resolution-file]",
		Short: "Re-render a stored resolution in another output format",
		Long: "Read a JSON resolution document from the given file, or from stdin when " +
			"no file is given, and render it again in the requested format.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(output)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				file, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer file.Close()
				in = file
			}

			res, err := report.Decode(in)
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), res, format, false)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(report.FormatCLI),
		"output format: cli, json or comment")

	return cmd
}
