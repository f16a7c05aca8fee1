// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package relsyncconfig

const (
	ConfigFileName = "relsync-config.yaml"

	UserAgentPrefix = "relsync"

	DefaultChartDir      = "deploy/chart"
	DefaultChartLocation = DefaultChartDir + "/Chart.yaml"

	DefaultStateFileName = ".relsync-state.yaml"

	DefaultTagOverridesFileName       = "submodule-tag-overrides.json"
	DefaultChartPathOverridesFileName = "chart-path-overrides.json"

	DefaultFetchParallelism = 4

	ChartBackupSuffix = ".bak"
)
