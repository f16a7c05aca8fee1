// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package submodule

import (
	"github.com/fraunhoferportugal/RelSync/cmd/relsync/cmd/submodule/update"
	"github.com/fraunhoferportugal/RelSync/pkg/relsyncconfig"
	"github.com/spf13/cobra"
)

func Cmd(config *relsyncconfig.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submodule",
		Short: "Operate on the repository's submodules",
	}
	cmd.AddCommand(update.Cmd(config))

	return cmd
}
