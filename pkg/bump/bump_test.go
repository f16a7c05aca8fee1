// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package bump

import (
	"math/rand"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v(t *testing.T, raw string) *semver.Version {
	parsed, err := semver.NewVersion(raw)
	require.NoError(t, err)
	return parsed
}

func TestClassify(t *testing.T) {
	cases := []struct {
		from, to string
		want     Kind
	}{
		{"1.2.3", "1.2.3", None},
		{"1.2.3", "1.2.4", Patch},
		{"1.2.3", "1.3.0", Minor},
		{"1.2.3", "2.0.0", Major},
		{"0.9.0", "1.0.0", Major},
		// highest differing component wins even when lower ones differ too
		{"1.2.3", "2.1.7", Major},
		{"1.2.3", "1.4.1", Minor},
		// triple-only: pre-release suffixes do not participate
		{"1.2.3", "1.2.3-rc.1", None},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Classify(v(t, c.from), v(t, c.to)), "%s -> %s", c.from, c.to)
	}
}

func TestApply(t *testing.T) {
	current := v(t, "1.5.0")

	assert.Equal(t, "2.0.0", Major.Apply(current).String())
	assert.Equal(t, "1.6.0", Minor.Apply(current).String())
	assert.Equal(t, "1.5.1", Patch.Apply(current).String())
	assert.Equal(t, "1.5.0", None.Apply(current).String())

	// applying a non-None bump always yields a strictly greater version
	for _, k := range []Kind{Patch, Minor, Major} {
		assert.True(t, k.Apply(current).GreaterThan(current), k.String())
	}
}

func TestMax(t *testing.T) {
	assert.Equal(t, None, Max())
	assert.Equal(t, Minor, Max(Patch, Minor))
	assert.Equal(t, Major, Max(Patch, Minor, Major))
	assert.Equal(t, Major, Max(Major, None))
}

func TestSelectBest(t *testing.T) {
	tags := []string{"v1.2.0", "v1.2.1", "v1.3.0", "not-a-version", "v1.3.0-rc.1"}

	best, err := SelectBest(tags)
	require.NoError(t, err)
	assert.Equal(t, "v1.3.0", best.Original())

	// shuffling the candidates never changes the result
	for i := 0; i < 10; i++ {
		shuffled := append([]string{}, tags...)
		rand.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got, err := SelectBest(shuffled)
		require.NoError(t, err)
		assert.Equal(t, "v1.3.0", got.Original())
	}
}

func TestSelectBestNoCandidates(t *testing.T) {
	_, err := SelectBest(nil)
	assert.ErrorIs(t, err, ErrNoCandidates)

	_, err = SelectBest([]string{"garbage", "latest"})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestTopCandidates(t *testing.T) {
	tags := []string{"v0.9.0", "nonsense", "v1.0.0", "v1.2.0", "v1.1.0"}

	assert.Equal(t, []string{"v1.2.0", "v1.1.0", "v1.0.0"}, TopCandidates(tags, 3))
	assert.Equal(t, []string{"v1.2.0", "v1.1.0", "v1.0.0", "v0.9.0"}, TopCandidates(tags, 10))
	assert.Empty(t, TopCandidates([]string{"nonsense"}, 3))
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range []Kind{None, Patch, Minor, Major} {
		data, err := yaml.Marshal(k)
		require.NoError(t, err)

		var got Kind
		require.NoError(t, yaml.Unmarshal(data, &got))
		assert.Equal(t, k, got)
	}

	var k Kind
	assert.Error(t, yaml.Unmarshal([]byte("gigantic"), &k))

	_, err := ParseKind("release")
	assert.Error(t, err)
}
