// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package chartregistry

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-containerregistry/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry/remote/auth"
)

const chartArtifactType = "application/vnd.fraunhofer.relsync.chart.v1"

func startRegistry(t *testing.T) *Remote {
	reg := httptest.NewServer(registry.New())
	t.Cleanup(reg.Close)

	host := strings.TrimPrefix(reg.URL, "http://")
	return NewWithCustomClient(host, &auth.Client{Client: reg.Client()}, true)
}

func pushChartTag(t *testing.T, ctx context.Context, client *Remote, chartName, tag string) {
	store := memory.New()
	desc, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, chartArtifactType, oras.PackManifestOptions{})
	require.NoError(t, err)
	require.NoError(t, store.Tag(ctx, desc, tag))

	repo, err := client.ChartRepo(chartName)
	require.NoError(t, err)
	_, err = oras.Copy(ctx, store, tag, repo, tag, oras.DefaultCopyOptions)
	require.NoError(t, err)
}

func TestListChartTags(t *testing.T) {
	ctx := t.Context()
	client := startRegistry(t)

	pushChartTag(t, ctx, client, "api", "v1.2.0")
	pushChartTag(t, ctx, client, "api", "v1.3.0")

	tags, found, err := ListChartTags(ctx, client, "api")
	require.NoError(t, err)
	assert.True(t, found)
	assert.ElementsMatch(t, []string{"v1.2.0", "v1.3.0"}, tags)
}

func TestListChartTagsUnknownChart(t *testing.T) {
	ctx := t.Context()
	client := startRegistry(t)

	tags, found, err := ListChartTags(ctx, client, "never-published")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, tags)
}

func TestTagSource(t *testing.T) {
	ctx := t.Context()
	client := startRegistry(t)

	pushChartTag(t, ctx, client, "ui", "v0.9.0")

	source := NewTagSource(client)
	tags, err := source.Tags(ctx, "ui")
	require.NoError(t, err)
	assert.Equal(t, []string{"v0.9.0"}, tags)

	// a chart with no releases yet is not an error
	tags, err = source.Tags(ctx, "brand-new")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestResolveDigest(t *testing.T) {
	ctx := t.Context()
	client := startRegistry(t)

	pushChartTag(t, ctx, client, "api", "v1.2.0")

	digest, err := ResolveDigest(ctx, client, "api", "v1.2.0")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "sha256:"))

	again, err := ResolveDigest(ctx, client, "api", "v1.2.0")
	require.NoError(t, err)
	assert.Equal(t, digest, again)
}
