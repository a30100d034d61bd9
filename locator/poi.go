// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

// Package locator finds hospitals and pharmacies near a position. A Resolver
// fetches raw OpenStreetMap features, normalizes them into PointOfInterest
// records and ranks them by great-circle distance.
package locator

import (
	"fmt"
	"strings"

	"github.com/medlocator/medlocator/spatial"
)

// SearchRadiusMeters is the radius of the upstream query.
const SearchRadiusMeters = 50000

// DefaultFilterRadiusKm is the default display radius of Filter callers.
const DefaultFilterRadiusKm = 5

// Category selects the amenity to look for.
type Category string

const (
	Hospital Category = "hospital"
	Pharmacy Category = "pharmacy"
)

// Categories lists every supported category.
var Categories = []Category{Hospital, Pharmacy}

// ParseCategory accepts "hospital" or "pharmacy", case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case Hospital, Pharmacy:
		return c, nil
	default:
		return "", fmt.Errorf("unknown category %q (want hospital or pharmacy)", s)
	}
}

// Wheelchair is the accessibility of a hospital.
type Wheelchair string

const (
	WheelchairYes     Wheelchair = "yes"
	WheelchairNo      Wheelchair = "no"
	WheelchairUnknown Wheelchair = "unknown"
)

func parseWheelchair(v string) Wheelchair {
	switch Wheelchair(v) {
	case WheelchairYes:
		return WheelchairYes
	case WheelchairNo:
		return WheelchairNo
	default:
		return WheelchairUnknown
	}
}

// Service is a hospital service derived from tags.
type Service string

const (
	ServiceEmergencyCare        Service = "emergency_care"
	ServiceWheelchairAccessible Service = "wheelchair_accessible"
)

// HospitalDetails holds the hospital-only fields.
type HospitalDetails struct {
	EmergencyUnit    bool       `json:"emergencyUnit"`
	WheelchairAccess Wheelchair `json:"wheelchairAccess"`
	Services         []Service  `json:"services"`
}

// HasService reports whether s is offered.
func (h *HospitalDetails) HasService(s Service) bool {
	for _, v := range h.Services {
		if v == s {
			return true
		}
	}

	return false
}

// PointOfInterest is a normalized hospital or pharmacy.
type PointOfInterest struct {
	ID       string        `json:"id"`
	Category Category      `json:"category"`
	Name     string        `json:"name"`
	Location spatial.Point `json:"location"`
	// Distance from the query position in km, rounded to one decimal.
	Distance     float64          `json:"distance"`
	Address      string           `json:"address"`
	Phone        *string          `json:"phone"`
	Website      *string          `json:"website"`
	OpeningHours *string          `json:"openingHours"`
	Hospital     *HospitalDetails `json:"hospital,omitempty"`
}
