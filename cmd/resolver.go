// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/medlocator/medlocator/geolocation"
	"github.com/medlocator/medlocator/locator"
	"github.com/medlocator/medlocator/snapshot"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	snapshotFile = "medlocator.duckdb"
	seedFile     = "snapshot.json"
)

func snapshotPath() string {
	return filepath.Join(options.DbPath, snapshotFile)
}

func seedPath() string {
	return filepath.Join(options.DbPath, seedFile)
}

func exists(path string) bool {
	_, err := os.Stat(path)

	return !errors.Is(err, os.ErrNotExist)
}

func newFetcher() *locator.OverpassFetcher {
	var traceWriter io.Writer
	if options.HTTPTrace || options.HTTPBodyTrace {
		traceWriter = os.Stderr
	}

	var limiter *rate.Limiter
	if options.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(options.RateLimit), 1)
	}

	return locator.NewOverpassFetcher(&locator.FetcherOptions{
		Endpoint:    options.OverpassURL,
		Method:      strings.ToUpper(options.OverpassMethod),
		Timeout:     options.Timeout,
		UserAgent:   fmt.Sprintf("medlocator/%s", Version),
		TraceWriter: traceWriter,
		TraceBody:   options.HTTPBodyTrace,
		Limiter:     limiter,
	})
}

// newResolver builds the resolver for the global options. The returned
// function releases the snapshot database, if one was opened.
func newResolver(ctx context.Context) (*locator.Resolver, func(), error) {
	opts := []locator.Option{
		locator.WithLocale(locator.ParseLocale(options.Lang)),
	}

	closer := func() {}

	if options.Dev {
		ds, c, err := devFallback(ctx)
		if err != nil {
			return nil, nil, err
		}

		opts = append(opts, locator.WithFallback(ds))
		closer = c
	}

	return locator.NewResolver(newFetcher(), opts...), closer, nil
}

// devFallback prefers a snapshot database, seeded from the JSON export when
// empty, and falls back to sample data.
func devFallback(ctx context.Context) (locator.FallbackDataset, func(), error) {
	path := snapshotPath()

	if !exists(path) && !exists(seedPath()) {
		logrus.Info("development mode: using built-in sample data as fallback")

		return locator.SampleDataset{}, func() {}, nil
	}

	store, closer, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	seeded, n, err := snapshot.SeedIfEmpty(ctx, store, seedPath())
	if err != nil {
		closer()

		return nil, nil, fmt.Errorf("seeding snapshot: %w", err)
	}

	if seeded {
		logrus.WithField("features", n).Info("seeded snapshot from " + seedPath())
	}

	logrus.WithField("path", path).Info("development mode: using snapshot as fallback")

	return store, closer, nil
}

func openStore(ctx context.Context) (*snapshot.Store, func(), error) {
	if err := os.MkdirAll(options.DbPath, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", snapshotPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening snapshot: %w", err)
	}

	store := snapshot.NewStore(db, logrus.StandardLogger())
	if err := store.CreateSchema(ctx); err != nil {
		db.Close()

		return nil, nil, err
	}

	return store, func() { db.Close() }, nil
}

// geocodingAPIKey reads GOOGLE_MAPS_API_KEY, then tries Application Default
// Credentials. An empty key disables address lookups.
func geocodingAPIKey(ctx context.Context) string {
	if key := os.Getenv(envMapsAPIKey); key != "" {
		return key
	}

	logrus.Debugf("%s is not set, attempting to retrieve it via ADC", envMapsAPIKey)

	key, err := geolocation.APIKeyFromADC(ctx, os.Getenv("GOOGLE_CLOUD_PROJECT"))
	if err != nil {
		logrus.WithError(err).Debug("no geocoding key via ADC, address lookups are disabled")

		return ""
	}

	logrus.Info("retrieved Google Maps API key via ADC")

	return key
}
