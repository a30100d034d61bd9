// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

// Package geolocation supplies the user's position to the locator. A
// Provider either returns a Reading or fails with an *Error whose Kind tells
// permission problems apart from transient ones.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medlocator/medlocator/spatial"
)

// DefaultTimeout bounds a single position request.
const DefaultTimeout = 10 * time.Second

// Reading is a successful position fix.
type Reading struct {
	spatial.Point
	// Accuracy is the radius of uncertainty in meters.
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// Provider yields the current position.
type Provider interface {
	Locate(ctx context.Context) (Reading, error)
}

// StaticProvider returns a fixed position, e.g. one given on the command
// line or in a request.
type StaticProvider struct {
	Point    spatial.Point
	Accuracy float64
	Now      func() time.Time
}

// Locate implements Provider.
func (p *StaticProvider) Locate(ctx context.Context) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, classifyContextError(err)
	}

	if err := p.Point.Validate(); err != nil {
		return Reading{}, &Error{Kind: PositionUnavailable, Message: "invalid position", Err: err}
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	return Reading{Point: p.Point, Accuracy: p.Accuracy, Timestamp: now()}, nil
}

func classifyContextError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: Timeout, Message: "position request timed out", Err: err}
	}

	return &Error{Kind: PositionUnavailable, Message: fmt.Sprintf("position request aborted: %v", err), Err: err}
}
