// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/fraunhoferportugal/RelSync/cmd/relsync/cmd/bump"
	"github.com/fraunhoferportugal/RelSync/cmd/relsync/cmd/distribution"
	"github.com/fraunhoferportugal/RelSync/cmd/relsync/cmd/fetch"
	"github.com/fraunhoferportugal/RelSync/cmd/relsync/cmd/format"
	"github.com/fraunhoferportugal/RelSync/cmd/relsync/cmd/login"
	"github.com/fraunhoferportugal/RelSync/cmd/relsync/cmd/submodule"
	"github.com/fraunhoferportugal/RelSync/cmd/relsync/cmd/update"
	"github.com/fraunhoferportugal/RelSync/pkg/logging"
	"github.com/fraunhoferportugal/RelSync/pkg/relsyncconfig"
	"github.com/fraunhoferportugal/RelSync/pkg/relsyncversion"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

const RelSyncName = "relsync"

func RootCmd(ctx context.Context) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:   RelSyncName,
		Short: "Keep submodule releases and the repository chart in sync",
	}

	if err := logging.InitLogging(); err != nil {
		return nil, err
	}

	config, err := relsyncconfig.Get()
	if err != nil {
		return nil, err
	}

	cmd.AddCommand(
		fetch.Cmd(config),
		update.Cmd(config),
		submodule.Cmd(config),
		distribution.Cmd(config),
		bump.Cmd(config),
		format.Cmd(config),
		login.Cmd(config),
	)

	version, err := yaml.Marshal(relsyncversion.Get())
	if err != nil {
		return nil, err
	}
	cmd.Version = string(version)
	cmd.SetVersionTemplate("{{.Version}}")

	return cmd, nil
}
