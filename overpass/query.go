// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package overpass

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultEndpoint is the public Overpass interpreter.
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// AmenityQuery selects every node, way and relation tagged amenity=<amenity>
// within radiusMeters of (lat, lng). Ways and relations are returned with
// their center.
func AmenityQuery(amenity string, lat, lng float64, radiusMeters int) string {
	around := fmt.Sprintf("(around:%d,%s,%s)",
		radiusMeters,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lng, 'f', -1, 64),
	)
	selector := fmt.Sprintf("[%q=%q]", "amenity", amenity)

	var b strings.Builder

	b.WriteString("[out:json][timeout:50];\n(\n")

	for _, kind := range []string{TypeNode, TypeWay, TypeRelation} {
		fmt.Fprintf(&b, "  %s%s%s;\n", kind, selector, around)
	}

	b.WriteString(");\nout center;\n")

	return b.String()
}
