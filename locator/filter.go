// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"github.com/medlocator/medlocator/utils/textutils"
)

// Filter keeps the entries whose name or address contains query, ignoring
// case and accents, and whose distance is at most maxKm. A blank query
// matches everything; maxKm <= 0 disables the distance check. Order is
// preserved.
func Filter(pois []PointOfInterest, query string, maxKm float64) []PointOfInterest {
	out := make([]PointOfInterest, 0, len(pois))

	for _, p := range pois {
		if maxKm > 0 && p.Distance > maxKm {
			continue
		}

		if !matches(p, query) {
			continue
		}

		out = append(out, p)
	}

	return out
}

func matches(p PointOfInterest, query string) bool {
	for _, field := range []string{p.Name, p.Address} {
		if textutils.ContainsFolded(field, query) {
			return true
		}

		// "strasse" finds "Straße"
		if textutils.ContainsFolded(textutils.ExpandGermanUmlauts(field), query) {
			return true
		}
	}

	return false
}
