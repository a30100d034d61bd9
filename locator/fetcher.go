// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/medlocator/medlocator/metrics"
	"github.com/medlocator/medlocator/overpass"
	"github.com/medlocator/medlocator/spatial"
	"github.com/medlocator/medlocator/utils/httputils"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultFetchTimeout bounds one upstream request.
const DefaultFetchTimeout = 10 * time.Second

// Fetcher retrieves the raw features of a category around a point.
type Fetcher interface {
	Fetch(ctx context.Context, point spatial.Point, category Category) ([]overpass.RawFeature, error)
}

// FetcherOptions configures an OverpassFetcher.
type FetcherOptions struct {
	// Endpoint of the Overpass interpreter, defaults to overpass.DefaultEndpoint
	Endpoint string

	// Method is http.MethodPost (form-encoded body, default) or http.MethodGet
	Method string

	// Timeout of one request, defaults to DefaultFetchTimeout
	Timeout time.Duration

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// TraceWriter receives a dump of every request and response when set
	TraceWriter io.Writer

	// Enables full HTTP body tracing
	TraceBody bool

	// Limiter throttles requests to a shared public endpoint
	Limiter *rate.Limiter

	// Transport overrides the base transport, mostly for tests
	Transport http.RoundTripper

	Logger logrus.FieldLogger
}

// OverpassFetcher queries the Overpass API. Each Fetch makes exactly one
// request and never retries.
type OverpassFetcher struct {
	endpoint string
	method   string
	client   *http.Client
	logger   logrus.FieldLogger
}

// NewOverpassFetcher creates a fetcher with the provided options.
func NewOverpassFetcher(options *FetcherOptions) *OverpassFetcher {
	if options == nil {
		options = &FetcherOptions{}
	}

	endpoint := overpass.DefaultEndpoint
	if options.Endpoint != "" {
		endpoint = options.Endpoint
	}

	method := http.MethodPost
	if options.Method == http.MethodGet {
		method = http.MethodGet
	}

	timeout := DefaultFetchTimeout
	if options.Timeout > 0 {
		timeout = options.Timeout
	}

	userAgent := "medlocator/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	var logger logrus.FieldLogger = logrus.StandardLogger()
	if options.Logger != nil {
		logger = options.Logger
	}

	transport := options.Transport
	if transport == nil {
		transport = &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     30 * time.Second,
		}
	}

	traceTransport := &httputils.TraceRoundTripper{
		Transport: transport,
		Logger:    logger,
		Writer:    options.TraceWriter,
		DumpBody:  options.TraceBody,
	}

	headerTransport := &httputils.HeaderRoundTripper{
		Headers: http.Header{
			"User-Agent": {userAgent},
			"Accept":     {"application/json"},
		},
		Transport: traceTransport,
	}

	return &OverpassFetcher{
		endpoint: endpoint,
		method:   method,
		logger:   logger,
		client: &http.Client{
			Timeout: timeout,
			Transport: &httputils.RateLimitRoundTripper{
				Limiter:   options.Limiter,
				Transport: headerTransport,
			},
		},
	}
}

// Fetch implements Fetcher. It fails with InvalidLocation before any network
// call, with UpstreamUnavailable on transport errors and non-2xx statuses,
// and with MalformedResponse when the body has no elements array.
func (f *OverpassFetcher) Fetch(ctx context.Context, point spatial.Point, category Category) ([]overpass.RawFeature, error) {
	if err := point.Validate(); err != nil {
		return nil, &Error{Kind: InvalidLocation, Message: "invalid location", Err: err}
	}

	query := overpass.AmenityQuery(string(category), point.Lat, point.Lng, SearchRadiusMeters)

	req, err := f.newRequest(ctx, query)
	if err != nil {
		return nil, &Error{Kind: UpstreamUnavailable, Message: "building overpass request", Err: err}
	}

	logger := f.logger.WithFields(logrus.Fields{"category": category, "location": point.String()})
	logger.Debug("querying overpass")

	start := time.Now()
	features, err := f.do(req)
	metrics.UpstreamLatency.WithLabelValues(string(category)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(string(category), outcome(err)).Inc()
		logger.WithError(err).Error("overpass request failed")

		return nil, err
	}

	metrics.UpstreamRequests.WithLabelValues(string(category), metrics.OutcomeOK).Inc()
	logger.WithField("elements", len(features)).Debug("overpass request done")

	return features, nil
}

func (f *OverpassFetcher) newRequest(ctx context.Context, query string) (*http.Request, error) {
	form := url.Values{"data": {query}}

	if f.method == http.MethodGet {
		return http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+"?"+form.Encode(), nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req, nil
}

func (f *OverpassFetcher) do(req *http.Request) ([]overpass.RawFeature, error) {
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: UpstreamUnavailable, Message: "overpass request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:       UpstreamUnavailable,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("overpass returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	var body overpass.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &Error{
			Kind:       MalformedResponse,
			StatusCode: resp.StatusCode,
			Message:    "decoding overpass response",
			Err:        err,
		}
	}

	if body.Elements == nil {
		return nil, &Error{
			Kind:       MalformedResponse,
			StatusCode: resp.StatusCode,
			Message:    "overpass response has no elements array",
		}
	}

	return body.Elements, nil
}

func outcome(err error) string {
	if kind, _ := KindOf(err); kind == MalformedResponse {
		return metrics.OutcomeMalformed
	}

	return metrics.OutcomeUnavailable
}
