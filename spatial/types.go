// Copyright 2025 The MedLocator Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package spatial holds the coordinate value type and the great-circle math
// used to rank points of interest.
package spatial

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
)

const earthRadius = 6371e3 // meters

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ErrInvalidPoint is returned by Validate for non-finite or out-of-range points.
var ErrInvalidPoint = errors.New("spatial: invalid point")

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Value implements the driver.Valuer interface for database serialization.
func (p Point) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (p *Point) Scan(value interface{}) error {
	if value == nil {
		p.Lat, p.Lng = 0, 0

		return nil
	}

	switch v := value.(type) {
	case []byte:
		_, err := fmt.Sscanf(string(v), "POINT(%f %f)", &p.Lng, &p.Lat)

		return err
	case string:
		_, err := fmt.Sscanf(v, "POINT(%f %f)", &p.Lng, &p.Lat)

		return err
	default:
		return fmt.Errorf("spatial: unsupported type for Point scan: %T", value)
	}
}

// IsFinite reports whether both components are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lng) && !math.IsInf(p.Lng, 0)
}

// Validate checks that the point is finite and within the WGS84 bounds.
func (p Point) Validate() error {
	if !p.IsFinite() {
		return fmt.Errorf("%w: non-finite coordinate (%v, %v)", ErrInvalidPoint, p.Lat, p.Lng)
	}

	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90 (got %f)", ErrInvalidPoint, p.Lat)
	}

	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180 (got %f)", ErrInvalidPoint, p.Lng)
	}

	return nil
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// DistanceKm is the unrounded great-circle distance between a and b in kilometers.
func DistanceKm(a, b Point) float64 {
	return a.HaversineDistance(&b) / 1000
}

// RoundKm rounds a distance to one decimal place (100 m display precision).
func RoundKm(km float64) float64 {
	return math.Round(km*10) / 10
}
