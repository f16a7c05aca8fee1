// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// withPrereleaseIdentifier suffixes the suggested version with the given
// identifier. When the current version already carries the identifier on the
// same numeric triple, the trailing counter advances instead:
// 1.6.0-rc -> 1.6.0-rc.1 -> 1.6.0-rc.2.
func withPrereleaseIdentifier(current, suggested *semver.Version, identifier string) (*semver.Version, error) {
	pre := identifier
	if current != nil && sameTriple(current, suggested) {
		switch cur := current.Prerelease(); {
		case cur == identifier:
			pre = identifier + ".1"
		case strings.HasPrefix(cur, identifier+"."):
			counter, err := strconv.Atoi(strings.TrimPrefix(cur, identifier+"."))
			if err == nil {
				pre = fmt.Sprintf("%s.%d", identifier, counter+1)
			}
		}
	}

	v, err := suggested.SetPrerelease(pre)
	if err != nil {
		return nil, fmt.Errorf("invalid prerelease identifier %q: %w", identifier, err)
	}
	return &v, nil
}

func sameTriple(a, b *semver.Version) bool {
	return a.Major() == b.Major() && a.Minor() == b.Minor() && a.Patch() == b.Patch()
}
