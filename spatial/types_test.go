// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	berlin  = Point{Lat: 52.5200, Lng: 13.4050}
	potsdam = Point{Lat: 52.3906, Lng: 13.0645}
	sydney  = Point{Lat: -33.8688, Lng: 151.2093}
)

func TestDistanceKm_Symmetry(t *testing.T) {
	pairs := [][2]Point{
		{berlin, potsdam},
		{berlin, sydney},
		{{Lat: 0, Lng: 179.9}, {Lat: 0, Lng: -179.9}},
		{{Lat: 89.9, Lng: 0}, {Lat: -89.9, Lng: 180}},
	}

	for _, p := range pairs {
		ab := DistanceKm(p[0], p[1])
		ba := DistanceKm(p[1], p[0])

		assert.InDelta(t, ab, ba, 1e-9, "distance(%v,%v) should be symmetric", p[0], p[1])
		assert.Equal(t, RoundKm(ab), RoundKm(ba))
	}
}

func TestDistanceKm_Zero(t *testing.T) {
	for _, p := range []Point{berlin, potsdam, sydney, {}} {
		assert.Equal(t, 0.0, DistanceKm(p, p))
	}
}

func TestDistanceKm_Known(t *testing.T) {
	// 0.01 degrees of latitude is ~1.112 km on a 6371 km sphere.
	d := DistanceKm(berlin, Point{Lat: 52.5300, Lng: 13.4050})
	assert.InDelta(t, 1.112, d, 0.001)

	for range 100 {
		assert.Equal(t, 1.1, RoundKm(DistanceKm(berlin, Point{Lat: 52.5300, Lng: 13.4050})))
	}

	// Berlin to Potsdam is roughly 27 km.
	assert.InDelta(t, 27.0, DistanceKm(berlin, potsdam), 1.0)
}

func TestHaversineDistance_Meters(t *testing.T) {
	a, b := berlin, potsdam
	assert.InDelta(t, DistanceKm(a, b)*1000, a.HaversineDistance(&b), 1e-6)
}

func TestRoundKm(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{2.449, 2.4},
		{2.451, 2.5},
		{0, 0},
		{0.04, 0},
		{0.06, 0.1},
		{4.94, 4.9},
		{12.3456, 12.3},
		{49.99, 50},
	}

	for _, tt := range tests {
		if got := RoundKm(tt.in); got != tt.want {
			t.Errorf("RoundKm(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		point   Point
		wantErr bool
	}{
		{"berlin", berlin, false},
		{"origin", Point{}, false},
		{"bounds", Point{Lat: -90, Lng: 180}, false},
		{"NaN latitude", Point{Lat: math.NaN(), Lng: 1}, true},
		{"Inf longitude", Point{Lat: 1, Lng: math.Inf(1)}, true},
		{"latitude out of range", Point{Lat: 90.5, Lng: 0}, true},
		{"longitude out of range", Point{Lat: 0, Lng: -180.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.point.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidPoint))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPoint_ScanValue(t *testing.T) {
	v, err := berlin.Value()
	require.NoError(t, err)

	var p Point
	require.NoError(t, p.Scan(v))
	assert.InDelta(t, berlin.Lat, p.Lat, 1e-6)
	assert.InDelta(t, berlin.Lng, p.Lng, 1e-6)

	require.NoError(t, p.Scan([]byte("POINT(1.5 2.5)")))
	assert.Equal(t, Point{Lat: 2.5, Lng: 1.5}, p)

	require.NoError(t, p.Scan(nil))
	assert.Equal(t, Point{}, p)

	assert.Error(t, p.Scan(42))
}

func TestCoveringCells(t *testing.T) {
	origin, err := berlin.Cell(IndexResolution)
	require.NoError(t, err)

	far, err := sydney.Cell(IndexResolution)
	require.NoError(t, err)

	near, err := potsdam.Cell(IndexResolution)
	require.NoError(t, err)

	cells, err := berlin.CoveringCells(50)
	require.NoError(t, err)

	assert.Contains(t, cells, origin)
	assert.Contains(t, cells, near)
	assert.NotContains(t, cells, far)
}
