// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package locator

import "sort"

// Rank sorts pois in place by ascending rounded distance. Ties keep their
// input order.
func Rank(pois []PointOfInterest) []PointOfInterest {
	sort.SliceStable(pois, func(i, j int) bool {
		return pois[i].Distance < pois[j].Distance
	})

	return pois
}
