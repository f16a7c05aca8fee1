// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolution

import (
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
)

// SemVer is a semver.Version that round-trips through YAML and JSON as a
// plain version scalar.
type SemVer semver.Version

func NewSemVer(v *semver.Version) *SemVer {
	if v == nil {
		return nil
	}
	s := SemVer(*v)
	return &s
}

func (v *SemVer) Value() *semver.Version {
	if v == nil {
		return nil
	}
	return (*semver.Version)(v)
}

func (v *SemVer) String() string {
	if v == nil {
		return ""
	}
	return v.Value().String()
}

func (v *SemVer) UnmarshalYAML(data []byte) error {
	var versionStr string
	if err := yaml.Unmarshal(data, &versionStr); err != nil {
		return fmt.Errorf("failed to unmarshal version: %w", err)
	}
	parsedVersion, err := semver.NewVersion(versionStr)
	if err != nil {
		return fmt.Errorf("invalid semantic version: %w", err)
	}
	*v = SemVer(*parsedVersion)
	return nil
}

func (v *SemVer) MarshalYAML() ([]byte, error) {
	return []byte(v.Value().String()), nil
}

func (v *SemVer) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Value().String())
}

func (v *SemVer) UnmarshalJSON(data []byte) error {
	var versionStr string
	if err := json.Unmarshal(data, &versionStr); err != nil {
		return fmt.Errorf("failed to unmarshal version: %w", err)
	}
	parsedVersion, err := semver.NewVersion(versionStr)
	if err != nil {
		return fmt.Errorf("invalid semantic version: %w", err)
	}
	*v = SemVer(*parsedVersion)
	return nil
}

var _ yaml.BytesUnmarshaler = (*SemVer)(nil)
var _ yaml.BytesMarshaler = (*SemVer)(nil)
