// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package bump classifies the severity of semantic version changes and
// selects upgrade candidates from raw tag lists.
package bump

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
)

var ErrNoCandidates = fmt.Errorf("no parseable semver candidates")

// Kind is the severity of a version change, ordered None < Patch < Minor < Major.
type Kind int

const (
	None Kind = iota
	Patch
	Minor
	Major
)

var kindNames = [...]string{"none", "patch", "minor", "major"}

func (k Kind) String() string {
	if k < None || k > Major {
		return "unknown"
	}
	return kindNames[k]
}

func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if s == name {
			return Kind(i), nil
		}
	}
	return None, fmt.Errorf("unknown bump kind %q", s)
}

func (k Kind) MarshalYAML() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalYAML(data []byte) error {
	var s string
	if err := yaml.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

var _ yaml.BytesMarshaler = Kind(0)
var _ yaml.BytesUnmarshaler = (*Kind)(nil)

// Max folds a set of kinds into the most severe one.
// It is associative and commutative, so callers may feed it in any order.
func Max(kinds ...Kind) Kind {
	max := None
	for _, k := range kinds {
		if k > max {
			max = k
		}
	}
	return max
}

// Classify compares the numeric triples of two versions and returns the
// smallest kind consistent with the highest differing component.
// Pre-release and build metadata do not participate.
func Classify(from, to *semver.Version) Kind {
	switch {
	case to.Major() != from.Major():
		return Major
	case to.Minor() != from.Minor():
		return Minor
	case to.Patch() != from.Patch():
		return Patch
	default:
		return None
	}
}

// Apply bumps v according to k. The result is strictly greater than v
// whenever k != None, and v itself otherwise.
func (k Kind) Apply(v *semver.Version) *semver.Version {
	switch k {
	case Major:
		return semver.New(v.Major()+1, 0, 0, "", "")
	case Minor:
		return semver.New(v.Major(), v.Minor()+1, 0, "", "")
	case Patch:
		return semver.New(v.Major(), v.Minor(), v.Patch()+1, "", "")
	default:
		return v
	}
}

// SelectBest returns the highest version among the candidates by the semver
// total order (pre-release sorts before the release with the same triple).
// Unparseable candidates are skipped; ErrNoCandidates is returned when none
// parse. The result does not depend on the input ordering.
func SelectBest(candidates []string) (*semver.Version, error) {
	parsed := parseAll(candidates)
	if len(parsed) == 0 {
		return nil, ErrNoCandidates
	}
	return lo.MaxBy(parsed, func(a, b *semver.Version) bool {
		return a.GreaterThan(b)
	}), nil
}

// TopCandidates returns the raw form of the up-to-n highest candidates,
// highest first. Reporting only.
func TopCandidates(candidates []string, n int) []string {
	parsed := parseAll(candidates)
	slices.SortFunc(parsed, func(a, b *semver.Version) int {
		return b.Compare(a)
	})
	if len(parsed) > n {
		parsed = parsed[:n]
	}
	return lo.Map(parsed, func(v *semver.Version, _ int) string {
		return v.Original()
	})
}

func parseAll(candidates []string) []*semver.Version {
	return lo.FilterMap(candidates, func(t string, _ int) (*semver.Version, bool) {
		v, err := semver.NewVersion(t)
		return v, err == nil
	})
}
