// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"context"
	"errors"
	"fmt"

	"github.com/medlocator/medlocator/metrics"
	"github.com/medlocator/medlocator/overpass"
	"github.com/medlocator/medlocator/spatial"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// FallbackDataset supplies raw features when the upstream fetch fails.
type FallbackDataset interface {
	Features(ctx context.Context, point spatial.Point, category Category) ([]overpass.RawFeature, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFallback answers from ds when the upstream fetch fails. Invalid
// locations are never answered from ds.
func WithFallback(ds FallbackDataset) Option {
	return func(r *Resolver) {
		r.fallback = ds
	}
}

// WithIDGenerator sets the generator for features without an upstream id.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Resolver) {
		r.ids = g
	}
}

// WithLocale sets the language of placeholders.
func WithLocale(l Locale) Option {
	return func(r *Resolver) {
		r.locale = l
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// Resolver composes fetch, normalize and rank.
type Resolver struct {
	fetcher  Fetcher
	fallback FallbackDataset
	ids      IDGenerator
	locale   Locale
	logger   logrus.FieldLogger
}

// NewResolver creates a resolver on top of fetcher.
func NewResolver(fetcher Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher: fetcher,
		ids:     UUIDGenerator{},
		locale:  English,
		logger:  logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Localized returns a copy of r that renders placeholders in l.
func (r *Resolver) Localized(l Locale) *Resolver {
	c := *r
	c.locale = l

	return &c
}

// FindNearby returns the features of category around point, sorted by
// ascending distance. No match is an empty slice, not an error.
func (r *Resolver) FindNearby(ctx context.Context, point spatial.Point, category Category) ([]PointOfInterest, error) {
	if err := point.Validate(); err != nil {
		return nil, &Error{Kind: InvalidLocation, Message: "invalid location", Err: err}
	}

	logger := r.logger.WithField("category", category)

	features, err := r.fetcher.Fetch(ctx, point, category)
	if err != nil {
		features, err = r.fromFallback(ctx, point, category, err)
		if err != nil {
			return nil, err
		}
	}

	n := &Normalizer{
		Category: category,
		Origin:   point,
		IDs:      r.ids,
		Locale:   r.locale,
		Logger:   r.logger,
	}
	pois := Rank(n.Normalize(features))

	if len(pois) == 0 {
		logger.Warn("no results in radius")
	} else {
		logger.WithField("count", len(pois)).Info("found points of interest")
	}

	return pois, nil
}

func (r *Resolver) fromFallback(ctx context.Context, point spatial.Point, category Category, fetchErr error) ([]overpass.RawFeature, error) {
	if r.fallback == nil || errors.Is(fetchErr, ErrInvalidLocation) {
		return nil, fetchErr
	}

	r.logger.WithError(fetchErr).WithField("category", category).Warn("using fallback dataset after upstream failure")
	metrics.FallbackDatasetUsed.WithLabelValues(string(category)).Inc()

	features, err := r.fallback.Features(ctx, point, category)
	if err != nil {
		return nil, errors.Join(fetchErr, fmt.Errorf("reading fallback dataset: %w", err))
	}

	return features, nil
}

// FindNearbyHospitals is FindNearby for Hospital.
func (r *Resolver) FindNearbyHospitals(ctx context.Context, point spatial.Point) ([]PointOfInterest, error) {
	return r.FindNearby(ctx, point, Hospital)
}

// FindNearbyPharmacies is FindNearby for Pharmacy.
func (r *Resolver) FindNearbyPharmacies(ctx context.Context, point spatial.Point) ([]PointOfInterest, error) {
	return r.FindNearby(ctx, point, Pharmacy)
}

// Results groups the lookups of FindAll. Errors holds the failure of each
// category that could not be looked up; that category's slice is nil.
type Results struct {
	Hospitals  []PointOfInterest  `json:"hospitals"`
	Pharmacies []PointOfInterest  `json:"pharmacies"`
	Errors     map[Category]error `json:"-"`
}

// Get returns the lookup result of c.
func (r *Results) Get(c Category) ([]PointOfInterest, error) {
	if c == Pharmacy {
		return r.Pharmacies, r.Errors[c]
	}

	return r.Hospitals, r.Errors[c]
}

// FindAll looks up hospitals and pharmacies concurrently. The lookups are
// independent: one failing neither cancels nor discards the other, and is
// reported in Results.Errors. The returned error is non-nil only when the
// location is invalid or every lookup failed.
func (r *Resolver) FindAll(ctx context.Context, point spatial.Point) (*Results, error) {
	if err := point.Validate(); err != nil {
		return nil, &Error{Kind: InvalidLocation, Message: "invalid location", Err: err}
	}

	var (
		g                        errgroup.Group
		hospitals, pharmacies    []PointOfInterest
		hospitalErr, pharmacyErr error
	)

	g.Go(func() error {
		hospitals, hospitalErr = r.FindNearby(ctx, point, Hospital)

		return nil
	})

	g.Go(func() error {
		pharmacies, pharmacyErr = r.FindNearby(ctx, point, Pharmacy)

		return nil
	})

	_ = g.Wait()

	res := &Results{Hospitals: hospitals, Pharmacies: pharmacies}

	for c, err := range map[Category]error{Hospital: hospitalErr, Pharmacy: pharmacyErr} {
		if err == nil {
			continue
		}

		if res.Errors == nil {
			res.Errors = make(map[Category]error, len(Categories))
		}

		res.Errors[c] = err
	}

	if len(res.Errors) == len(Categories) {
		return nil, errors.Join(hospitalErr, pharmacyErr)
	}

	return res, nil
}
