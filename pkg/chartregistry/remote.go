// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package chartregistry talks to an OCI registry holding published chart
// releases. It is the alternative tag source for repositories that tag
// releases in the registry rather than in git.
package chartregistry

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fraunhoferportugal/RelSync/pkg/relsyncconfig"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
)

// ChartRepoPrefix is where published charts live inside the registry:
// <registry>/charts/<chart name>.
const ChartRepoPrefix = "charts/"

type Remote struct {
	Registry string
	client   *auth.Client

	// Use http instead of https.
	// This is merely a hint to consumers of Remote, and not something that is enforced by Client
	Insecure bool
}

func (r *Remote) Repo(repoName string) (repo *remote.Repository, err error) {
	repo, err = remote.NewRepository(fmt.Sprintf("%s/%s", r.Registry, repoName))
	if err != nil {
		return nil, err
	}

	repo.Client = r
	repo.PlainHTTP = r.Insecure
	return
}

func (r *Remote) ChartRepo(chartName string) (*remote.Repository, error) {
	return r.Repo(ChartRepoPrefix + chartName)
}

func NewWithCustomClient(registry string, client *auth.Client, insecure bool) *Remote {
	return &Remote{
		Registry: registry,
		client:   client,
		Insecure: insecure,
	}
}

func New(registry string, authConfigPath string, insecure bool) (*Remote, error) {
	// This client has some default caching (e.g. for auth tokens) and retry settings
	client := auth.DefaultClient
	client.SetUserAgent(relsyncconfig.GetUserAgent())

	if authConfigPath != "" {
		slog.Info("using custom auth for registry", "path", authConfigPath)
		ds, err := credentials.NewStore(authConfigPath, credentials.StoreOptions{})
		if err != nil {
			return nil, err
		}
		client.Credential = credentials.Credential(newReadOnlyStore(ds))
	} else {
		slog.Debug("no custom registry auth provided. Will default to docker's if present on system")
		ds, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
		if err != nil {
			slog.Debug("failed to determine docker config to default to. Requests to registry will be unauthenticated", "err", err.Error())
		} else {
			client.Credential = credentials.Credential(newReadOnlyStore(ds))
		}
	}

	return &Remote{
		Registry: registry,
		client:   client,
		Insecure: insecure,
	}, nil
}

var _ remote.Client = (*Remote)(nil)

func (r *Remote) Do(req *http.Request) (*http.Response, error) {
	slog.Debug("OCI request", "method", req.Method, "url", req.URL.String())
	return r.client.Do(req)
}

func NewFromConfig(config *relsyncconfig.Config) (*Remote, error) {
	return New(config.Registry, config.RegistryAuthPath, config.Insecure)
}
