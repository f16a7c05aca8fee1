// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package fingerprint derives an opaque token from the set of pinned
// submodule references. Two runs against the same pins produce the same
// token, which is how a stored resolution is recognized as stale.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
)

// Compute hashes the <submodule name> -> <pinned ref> mapping.
// The result is independent of map iteration order.
func Compute(pins map[string]string) string {
	h := sha256.New()
	for _, name := range slices.Sorted(maps.Keys(pins)) {
		fmt.Fprintf(h, "%s=%s\n", name, pins[name])
	}
	return hex.EncodeToString(h.Sum(nil))
}
