// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package relsyncconfig

const envVarPrefix = "RELSYNC_"

const (
	// LogLevelEnvVar
	// RELSYNC_LOG_LEVEL sets the log level.
	// 	Default: info
	//  Possible values: info error warn debug
	LogLevelEnvVar = envVarPrefix + "LOG_LEVEL"

	// StateFileEnvVar
	// RELSYNC_STATE_FILE overrides the path of the persisted resolution state file
	StateFileEnvVar = envVarPrefix + "STATE_FILE"

	// OciRegistryEnvVar
	// RELSYNC_REGISTRY sets the OCI registry used when listing chart tags with --tag-source=oci
	OciRegistryEnvVar = envVarPrefix + "REGISTRY"

	// RegistryAuthConfigPathEnvVar
	// RELSYNC_REGISTRY_AUTH overrides the OCI registry auth file used.
	// Contains a path to a config file similar to docker's config.json
	// 	default: $HOME/.docker/config.json
	RegistryAuthConfigPathEnvVar = envVarPrefix + "REGISTRY_AUTH"

	// AllowInsecureRegistryEnvVar
	// RELSYNC_INSECURE_REGISTRY allows an insecure registry to be used (http instead of https)
	AllowInsecureRegistryEnvVar = envVarPrefix + "INSECURE_REGISTRY"

	// FetchParallelismEnvVar
	// RELSYNC_PARALLELISM bounds the number of submodule tag fetches issued concurrently
	FetchParallelismEnvVar = envVarPrefix + "PARALLELISM"
)
