// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"fmt"
	"math"

	"github.com/uber/h3-go/v4"
)

// IndexResolution is the H3 resolution used to bucket stored features.
// Average hexagon edge at res 5 is about 8.54 km.
const IndexResolution = 5

const indexEdgeKm = 8.544

// Cell returns the H3 cell containing p at the given resolution.
func (p Point) Cell(res int) (h3.Cell, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
	}

	return cell, nil
}

// CoveringCells returns the IndexResolution cells whose hexagons may hold
// points within radiusKm of p.
func (p Point) CoveringCells(radiusKm float64) ([]h3.Cell, error) {
	origin, err := p.Cell(IndexResolution)
	if err != nil {
		return nil, err
	}

	// neighbouring cell centers are sqrt(3)*edge apart; one extra ring
	// accounts for p sitting off-center in its own cell.
	k := int(math.Ceil(radiusKm/(math.Sqrt(3)*indexEdgeKm))) + 1

	cells, err := h3.GridDisk(origin, k)
	if err != nil {
		return nil, fmt.Errorf("computing grid disk k=%d: %w", k, err)
	}

	return cells, nil
}
