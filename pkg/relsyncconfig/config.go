// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package relsyncconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fraunhoferportugal/RelSync/pkg/relsyncversion"
	"github.com/fraunhoferportugal/RelSync/pkg/utils"
	"github.com/goccy/go-yaml"
)

func GetUserAgent() string {
	return fmt.Sprintf("%s/%s", UserAgentPrefix, relsyncversion.GetVersion())
}

type Config struct {
	// RepoPath is the root of the parent repository the tool operates on
	RepoPath string `yaml:"-"`

	StateFilePath string `yaml:"state-file,omitempty"`

	// FetchParallelism bounds concurrent submodule tag fetches
	FetchParallelism int `yaml:"parallelism,omitempty"`

	Registry         string `yaml:"registry,omitempty"`
	RegistryAuthPath string `yaml:"registry-auth-path,omitempty"`
	Insecure         bool   `yaml:"insecure,omitempty"`
}

func Get() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return GetWithCustomRepoPath(wd)
}

func GetWithCustomRepoPath(repoPath string) (*Config, error) {
	config := Config{RepoPath: repoPath}

	// relsync-config.yaml is optional
	configFilePath := filepath.Join(repoPath, ConfigFileName)
	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		if fileInfo.IsDir() {
			return nil, fmt.Errorf("%q is directory and not a file", configFilePath)
		}

		bytes, err := os.ReadFile(configFilePath)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(bytes, &config); err != nil {
			return nil, err
		}
	}

	if stateFile, ok := os.LookupEnv(StateFileEnvVar); ok {
		config.StateFilePath = stateFile
	}
	if config.StateFilePath == "" {
		config.StateFilePath = DefaultStateFileName
	}
	config.StateFilePath = utils.ResolvePath(repoPath, config.StateFilePath)

	if parallelismStr, ok := os.LookupEnv(FetchParallelismEnvVar); ok {
		parallelism, err := strconv.Atoi(parallelismStr)
		if err != nil || parallelism < 1 {
			return nil, fmt.Errorf("invalid value for '%s' env var. Must be a positive integer", FetchParallelismEnvVar)
		}
		config.FetchParallelism = parallelism
	}
	if config.FetchParallelism < 1 {
		config.FetchParallelism = DefaultFetchParallelism
	}

	if registry, ok := os.LookupEnv(OciRegistryEnvVar); ok {
		config.Registry = registry
	}
	if authPath, ok := os.LookupEnv(RegistryAuthConfigPathEnvVar); ok {
		config.RegistryAuthPath = authPath
	}
	insecure, ok, err := utils.BoolEnvVar(AllowInsecureRegistryEnvVar)
	if err != nil {
		return nil, err
	}
	if ok {
		config.Insecure = insecure
	}

	return &config, nil
}
