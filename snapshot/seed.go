// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/medlocator/medlocator/locator"
	"github.com/medlocator/medlocator/overpass"
)

// SeedData is the JSON export of a snapshot. Features are sorted by ref so
// the file diffs well under version control.
type SeedData struct {
	Version     string                                     `json:"version"`
	LastUpdated time.Time                                  `json:"last_updated"`
	Features    map[locator.Category][]overpass.RawFeature `json:"features"`
}

// All returns every stored feature of category, ordered by ref.
func (s *Store) All(ctx context.Context, category locator.Category) ([]overpass.RawFeature, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT raw FROM features WHERE category = ? ORDER BY ref`, string(category))
	if err != nil {
		return nil, fmt.Errorf("listing features: %w", err)
	}
	defer rows.Close()

	features := []overpass.RawFeature{}

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning feature: %w", err)
		}

		features = append(features, overpass.RawFeature(raw))
	}

	return features, rows.Err()
}

// ExportToJSON writes every stored feature to filepath.
func ExportToJSON(ctx context.Context, store *Store, filepath string) (int, error) {
	seed := &SeedData{
		Version:     "1.0",
		LastUpdated: time.Now().UTC(),
		Features:    make(map[locator.Category][]overpass.RawFeature, len(locator.Categories)),
	}

	total := 0

	for _, c := range locator.Categories {
		features, err := store.All(ctx, c)
		if err != nil {
			return 0, err
		}

		seed.Features[c] = features
		total += len(features)
	}

	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling JSON: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0o600); err != nil {
		return 0, fmt.Errorf("writing file: %w", err)
	}

	return total, nil
}

// ImportFromJSON saves the features of a seed file into store.
func ImportFromJSON(ctx context.Context, store *Store, filepath string) (int, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by the operator
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parsing JSON: %w", err)
	}

	imported := 0

	for c, features := range seed.Features {
		if _, err := locator.ParseCategory(string(c)); err != nil {
			return imported, err
		}

		n, err := store.Save(ctx, c, features)
		imported += n

		if err != nil {
			return imported, fmt.Errorf("importing %s: %w", c, err)
		}
	}

	return imported, nil
}

// SeedIfEmpty imports filepath when the store holds no features. A missing
// seed file is not an error.
func SeedIfEmpty(ctx context.Context, store *Store, filepath string) (bool, int, error) {
	total := 0

	for _, c := range locator.Categories {
		n, err := store.Count(ctx, c)
		if err != nil {
			return false, 0, err
		}

		total += n
	}

	if total > 0 {
		return false, total, nil
	}

	if _, err := os.Stat(filepath); errors.Is(err, os.ErrNotExist) {
		return false, 0, nil
	}

	imported, err := ImportFromJSON(ctx, store, filepath)
	if err != nil {
		return false, imported, err
	}

	return true, imported, nil
}
