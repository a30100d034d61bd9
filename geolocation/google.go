// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/medlocator/medlocator/spatial"
	"github.com/sirupsen/logrus"
)

// DefaultGoogleGeocodeURL is the Google Maps Geocoding endpoint.
const DefaultGoogleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleGeocoder resolves a postal address to a position with the Google
// Maps Geocoding API. It is the Provider used when the user types an address
// instead of sharing coordinates.
type GoogleGeocoder struct {
	Address string
	// Region biases results, e.g. "de".
	Region string

	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     logrus.FieldLogger
	now        func() time.Time
}

// NewGoogleGeocoder creates a geocoder for address. An empty apiKey makes
// Locate fail with Unsupported.
func NewGoogleGeocoder(apiKey, address string) *GoogleGeocoder {
	return &GoogleGeocoder{
		Address:  address,
		apiKey:   apiKey,
		endpoint: DefaultGoogleGeocodeURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logrus.StandardLogger(),
		now:    time.Now,
	}
}

// WithEndpoint overrides the geocoding URL.
func (g *GoogleGeocoder) WithEndpoint(endpoint string) *GoogleGeocoder {
	g.endpoint = endpoint

	return g
}

// WithHTTPClient overrides the HTTP client.
func (g *GoogleGeocoder) WithHTTPClient(c *http.Client) *GoogleGeocoder {
	g.httpClient = c

	return g
}

// WithLogger overrides the logger.
func (g *GoogleGeocoder) WithLogger(l logrus.FieldLogger) *GoogleGeocoder {
	g.logger = l

	return g
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message,omitempty"`
}

// Locate implements Provider.
func (g *GoogleGeocoder) Locate(ctx context.Context) (Reading, error) {
	if g.apiKey == "" {
		return Reading{}, &Error{Kind: Unsupported, Message: "address lookup requires GOOGLE_MAPS_API_KEY"}
	}

	if g.Address == "" {
		return Reading{}, &Error{Kind: PositionUnavailable, Message: "empty address"}
	}

	params := url.Values{}
	params.Set("address", g.Address)
	params.Set("key", g.apiKey)

	if g.Region != "" {
		params.Set("region", g.Region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Reading{}, &Error{Kind: Unsupported, Message: "building geocoding request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Reading{}, classifyTransportError(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Reading{}, classifyHTTPStatus(resp.StatusCode)
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return Reading{}, &Error{Kind: PositionUnavailable, Message: "decoding geocoding response", Err: err}
	}

	if gmResp.Status != "OK" {
		return Reading{}, classifyStatus(gmResp.Status, gmResp.ErrorMessage)
	}

	if len(gmResp.Results) == 0 {
		return Reading{}, &Error{Kind: PositionUnavailable, Message: fmt.Sprintf("no results found for address: %s", g.Address)}
	}

	result := gmResp.Results[0]
	point := spatial.Point{Lat: result.Geometry.Location.Lat, Lng: result.Geometry.Location.Lng}
	if err := point.Validate(); err != nil {
		return Reading{}, &Error{Kind: PositionUnavailable, Message: "geocoding returned an invalid position", Err: err}
	}

	g.logger.WithFields(logrus.Fields{
		"address":       g.Address,
		"formatted":     result.FormattedAddress,
		"location_type": result.Geometry.LocationType,
	}).Debug("geocoded address")

	return Reading{
		Point:     point,
		Accuracy:  accuracyFor(result.Geometry.LocationType),
		Timestamp: g.now(),
	}, nil
}

// accuracyFor approximates an uncertainty radius in meters from Google's
// location_type.
func accuracyFor(locationType string) float64 {
	switch locationType {
	case "ROOFTOP":
		return 10
	case "RANGE_INTERPOLATED":
		return 50
	case "GEOMETRIC_CENTER":
		return 250
	default:
		return 5000
	}
}

func classifyStatus(status, message string) *Error {
	msg := "geocoding status: " + status
	if message != "" {
		msg += " (" + message + ")"
	}

	if status == "REQUEST_DENIED" {
		return &Error{Kind: PermissionDenied, Message: msg}
	}

	// ZERO_RESULTS, OVER_QUERY_LIMIT, INVALID_REQUEST, UNKNOWN_ERROR and
	// anything newer.
	return &Error{Kind: PositionUnavailable, Message: msg}
}

func classifyTransportError(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: Timeout, Message: "geocoding request timed out", Err: err}
	}

	if errors.Is(err, context.Canceled) {
		return classifyContextError(err)
	}

	return &Error{Kind: PositionUnavailable, Message: "geocoding request failed", Err: err}
}
