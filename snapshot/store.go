// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot keeps raw Overpass features in DuckDB so lookups can be
// answered offline. Rows are bucketed by H3 cell for the radius search.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/medlocator/medlocator/locator"
	"github.com/medlocator/medlocator/overpass"
	"github.com/medlocator/medlocator/spatial"
	"github.com/sirupsen/logrus"
)

// Store is a DuckDB backed locator.FallbackDataset.
type Store struct {
	db     *sql.DB
	logger logrus.FieldLogger
}

var _ locator.FallbackDataset = (*Store)(nil)

// NewStore wraps db. Call CreateSchema before use.
func NewStore(db *sql.DB, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Store{db: db, logger: logger}
}

// CreateSchema creates the features table. location holds the WKT text of
// a spatial.Point.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS features (
			category VARCHAR NOT NULL,
			ref VARCHAR NOT NULL,
			location VARCHAR NOT NULL,
			h3_res5 UBIGINT NOT NULL,
			raw VARCHAR NOT NULL,
			saved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (category, ref)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating features table: %w", err)
	}

	return nil
}

// Save upserts features of category. Elements without an upstream id or
// without a usable position are skipped. Undecodable elements are reported
// in the returned error, after every other element has been saved. A
// database failure rolls back the whole batch and reports 0 saved.
func (s *Store) Save(ctx context.Context, category locator.Category, features []overpass.RawFeature) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.WithError(err).Errorf("failed to rollback transaction saving %s features", category)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO features (category, ref, location, h3_res5, raw)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	var (
		saved int
		errs  []error
	)

	for i, raw := range features {
		e, err := raw.Decode()
		if err != nil {
			errs = append(errs, fmt.Errorf("element %d: %w", i, err))

			continue
		}

		if !e.Tags.Is("amenity", string(category)) {
			continue
		}

		ref := e.Ref()
		point, ok := locator.ResolveLocation(e)

		if ref == "" || !ok {
			s.logger.WithFields(logrus.Fields{"index": i, "ref": ref}).Debug("skipping feature without id or position")

			continue
		}

		cell, err := point.Cell(spatial.IndexResolution)
		if err != nil {
			errs = append(errs, fmt.Errorf("element %s: %w", ref, err))

			continue
		}

		location, err := point.Value()
		if err != nil {
			return 0, fmt.Errorf("encoding location of %s: %w", ref, err)
		}

		if _, err := stmt.ExecContext(ctx, string(category), ref, location, uint64(cell), string(raw)); err != nil {
			return 0, fmt.Errorf("saving %s: %w", ref, err)
		}

		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing features: %w", err)
	}

	return saved, errors.Join(errs...)
}

// Features implements locator.FallbackDataset: the stored features of
// category within the search radius of point, ordered by ref.
func (s *Store) Features(ctx context.Context, point spatial.Point, category locator.Category) ([]overpass.RawFeature, error) {
	cells, err := point.CoveringCells(locator.SearchRadiusMeters / 1000)
	if err != nil {
		return nil, err
	}

	args := make([]any, 0, len(cells)+1)
	args = append(args, string(category))

	for _, c := range cells {
		args = append(args, uint64(c))
	}

	query := fmt.Sprintf(`
		SELECT location, raw FROM features
		WHERE category = ? AND h3_res5 IN (%s)
		ORDER BY ref
	`, strings.Repeat("?,", len(cells)-1)+"?") // #nosec G201 -- placeholders only

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying features: %w", err)
	}
	defer rows.Close()

	features := []overpass.RawFeature{}

	for rows.Next() {
		var (
			p   spatial.Point
			raw string
		)

		if err := rows.Scan(&p, &raw); err != nil {
			return nil, fmt.Errorf("scanning feature: %w", err)
		}

		if spatial.DistanceKm(point, p) > locator.SearchRadiusMeters/1000 {
			continue
		}

		features = append(features, overpass.RawFeature(raw))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating features: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"category": category,
		"cells":    len(cells),
		"features": len(features),
	}).Debug("read features from snapshot")

	return features, nil
}

// Count returns the number of stored features of category.
func (s *Store) Count(ctx context.Context, category locator.Category) (int, error) {
	var n int

	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM features WHERE category = ?`, string(category)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting features: %w", err)
	}

	return n, nil
}
