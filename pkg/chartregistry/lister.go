// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package chartregistry

import (
	"context"
	"errors"

	"oras.land/oras-go/v2/registry/remote/errcode"
)

// ListChartTags lists the published tags of a chart. found is false when the
// chart has no repository in the registry at all, which callers treat as
// "no releases yet" rather than an error.
func ListChartTags(ctx context.Context, client *Remote, chartName string) (tags []string, found bool, err error) {
	repo, err := client.ChartRepo(chartName)
	if err != nil {
		return nil, false, err
	}

	err = repo.Tags(ctx, "", func(page []string) error {
		tags = append(tags, page...)
		return nil
	})
	if isErrorCode(err, errcode.ErrorCodeNameUnknown) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return tags, true, nil
}

// ResolveDigest resolves a chart tag to its manifest digest.
func ResolveDigest(ctx context.Context, client *Remote, chartName, tag string) (string, error) {
	repo, err := client.ChartRepo(chartName)
	if err != nil {
		return "", err
	}
	desc, err := repo.Resolve(ctx, tag)
	if err != nil {
		return "", err
	}
	return desc.Digest.String(), nil
}

// TagSource adapts the registry to the tag-source collaborator the engine
// consumes when running with --tag-source=oci.
type TagSource struct {
	client *Remote
}

func NewTagSource(client *Remote) *TagSource {
	return &TagSource{client: client}
}

func (s *TagSource) Tags(ctx context.Context, chartName string) ([]string, error) {
	tags, _, err := ListChartTags(ctx, s.client, chartName)
	return tags, err
}

// isErrorCode returns true if err is an oras Error and its Code equals to code.
func isErrorCode(err error, code string) bool {
	var ec errcode.Error
	return errors.As(err, &ec) && ec.Code == code
}
