// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics declares the Prometheus collectors of the locator. They are
// registered on the default registry and exposed by the server at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upstream request outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeMalformed   = "malformed"
)

var (
	// UpstreamRequests counts Overpass requests by category and outcome.
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medlocator",
		Name:      "upstream_requests_total",
		Help:      "Overpass requests by category and outcome.",
	}, []string{"category", "outcome"})

	// UpstreamLatency observes the duration of Overpass requests.
	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "medlocator",
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of Overpass requests.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"category"})

	// DroppedFeatures counts elements excluded during normalization.
	DroppedFeatures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medlocator",
		Name:      "dropped_features_total",
		Help:      "Upstream elements excluded during normalization, by reason.",
	}, []string{"category", "reason"})

	// FallbackCoordinates counts features placed at the default coordinate.
	FallbackCoordinates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medlocator",
		Name:      "fallback_coordinates_total",
		Help:      "Features without a usable position placed at the default coordinate.",
	}, []string{"category"})

	// FallbackDatasetUsed counts lookups answered from the fallback dataset.
	FallbackDatasetUsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medlocator",
		Name:      "fallback_dataset_used_total",
		Help:      "Lookups answered from the fallback dataset after an upstream failure.",
	}, []string{"category"})
)
