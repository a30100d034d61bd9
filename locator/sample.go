// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/medlocator/medlocator/overpass"
	"github.com/medlocator/medlocator/spatial"
)

// SampleDataset is a fixed set of fictitious hospitals and pharmacies placed
// around the requested position. It is meant for development, when the
// public Overpass endpoint is unreachable.
type SampleDataset struct{}

type sampleFeature struct {
	kind       string
	id         int64
	dLat, dLng float64
	tags       overpass.Tags
}

var sampleFeatures = map[Category][]sampleFeature{
	Hospital: {
		{overpass.TypeWay, 9000001, 0.012, -0.008, overpass.Tags{
			"amenity":          "hospital",
			"name":             "Klinikum Mitte",
			"addr:street":      "Hauptstraße",
			"addr:housenumber": "12",
			"addr:city":        "Berlin",
			"addr:postcode":    "10115",
			"phone":            "+49 30 1234567",
			"website":          "https://klinikum-mitte.example",
			"emergency":        "yes",
			"wheelchair":       "yes",
		}},
		{overpass.TypeNode, 9000002, -0.021, 0.015, overpass.Tags{
			"amenity":     "hospital",
			"name":        "St. Elisabeth Krankenhaus",
			"addr:street": "Parkallee",
			"addr:city":   "Berlin",
			"emergency":   "no",
			"wheelchair":  "limited",
		}},
		{overpass.TypeNode, 9000003, 0.035, 0.031, overpass.Tags{
			"amenity":       "hospital",
			"name":          "Universitätsklinik Nord",
			"address":       "Am Campus 1, 13353 Berlin",
			"emergency":     "yes",
			"opening_hours": "24/7",
		}},
	},
	Pharmacy: {
		{overpass.TypeNode, 9100001, 0.003, 0.004, overpass.Tags{
			"amenity":          "pharmacy",
			"name":             "Apotheke am Markt",
			"addr:street":      "Marktplatz",
			"addr:housenumber": "3",
			"addr:city":        "Berlin",
			"opening_hours":    "Mo-Fr 08:00-19:00; Sa 09:00-14:00",
			"phone":            "+49 30 7654321",
		}},
		{overpass.TypeNode, 9100002, -0.007, -0.011, overpass.Tags{
			"amenity":     "pharmacy",
			"name":        "Löwen-Apotheke",
			"addr:street": "Lindenstraße",
			"website":     "löwen-apotheke.example",
		}},
		{overpass.TypeWay, 9100003, 0.018, 0.022, overpass.Tags{
			"amenity": "pharmacy",
			"name":    "Bahnhof-Apotheke",
		}},
	},
}

// Features implements FallbackDataset.
func (SampleDataset) Features(_ context.Context, point spatial.Point, category Category) ([]overpass.RawFeature, error) {
	samples, ok := sampleFeatures[category]
	if !ok {
		return nil, fmt.Errorf("no sample data for category %q", category)
	}

	features := make([]overpass.RawFeature, 0, len(samples))

	for _, s := range samples {
		lat := math.Max(-90, math.Min(90, point.Lat+s.dLat))
		lng := math.Max(-180, math.Min(180, point.Lng+s.dLng))
		coord := overpass.LatLon{Lat: &lat, Lon: &lng}

		e := overpass.Element{Type: s.kind, ID: s.id, Tags: s.tags}
		if s.kind == overpass.TypeNode {
			e.LatLon = coord
		} else {
			e.Center = &coord
		}

		raw, err := json.Marshal(&e)
		if err != nil {
			return nil, fmt.Errorf("encoding sample feature %s: %w", e.Ref(), err)
		}

		features = append(features, overpass.RawFeature(raw))
	}

	return features, nil
}
