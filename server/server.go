// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the locator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httputil"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medlocator/medlocator/geolocation"
	"github.com/medlocator/medlocator/locator"
	"github.com/medlocator/medlocator/spatial"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// DefaultListenAddr is used when no address is configured.
const DefaultListenAddr = "localhost:8080"

// Options configures a Server.
type Options struct {
	// GeocodingAPIKey enables the address parameter of /api/nearby
	GeocodingAPIKey string

	// Dumps incoming requests at debug level
	TraceRequests bool

	Logger logrus.FieldLogger
}

// Server serves nearby lookups, emergency numbers and metrics.
type Server struct {
	resolver *locator.Resolver
	options  Options
	logger   logrus.FieldLogger

	// newAddressProvider is replaced in tests.
	newAddressProvider func(address string) geolocation.Provider
}

// NewServer creates a server on top of resolver.
func NewServer(resolver *locator.Resolver, options Options) *Server {
	var logger logrus.FieldLogger = logrus.StandardLogger()
	if options.Logger != nil {
		logger = options.Logger
	}

	s := &Server{
		resolver: resolver,
		options:  options,
		logger:   logger.WithField("prefix", "gin"),
	}

	s.newAddressProvider = func(address string) geolocation.Provider {
		return geolocation.NewGoogleGeocoder(s.options.GeocodingAPIKey, address).WithLogger(s.logger)
	}

	return s
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequest)

	r.GET("/api/nearby", s.nearby)
	r.GET("/api/emergency-numbers", s.emergencyNumbers)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultListenAddr
	}

	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	go func() {
		<-ctx.Done()

		if err := srv.Shutdown(context.Background()); err != nil {
			s.logger.WithError(err).Error("shutting down server")
		}
	}()

	s.logger.WithField("addr", addr).Info("listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) logRequest(c *gin.Context) {
	if s.options.TraceRequests {
		if dump, err := httputil.DumpRequest(c.Request, false); err == nil {
			s.logger.WithField("req", string(dump)).Debug("incoming request")
		}
	}

	c.Next()

	s.logger.WithFields(logrus.Fields{
		"status": c.Writer.Status(),
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Info("request")
}

// NearbyResponse is the body of a successful /api/nearby call.
type NearbyResponse struct {
	Location spatial.Point `json:"location"`
	Accuracy float64       `json:"accuracy"`
	// Radius is the display radius in km, 0 when unbounded.
	Radius  float64                                        `json:"radius"`
	Results map[locator.Category][]locator.PointOfInterest `json:"results"`
	// Errors lists the categories whose lookup failed while others succeeded.
	Errors map[locator.Category]ErrorResponse `json:"errors,omitempty"`
}

// ErrorResponse is the body of a failed call.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) nearby(c *gin.Context) {
	locale := requestLocale(c)

	categories, err := parseCategories(c.DefaultQuery("category", "all"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "invalid_parameters"})

		return
	}

	radius, err := nonNegativeQuery(c, "radius", locator.DefaultFilterRadiusKm)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "invalid_parameters"})

		return
	}

	accuracy, err := nonNegativeQuery(c, "accuracy", 0)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "invalid_parameters"})

		return
	}

	provider, err := s.provider(c, accuracy)
	if err != nil {
		s.abortWithError(c, err, locale)

		return
	}

	reading, err := provider.Locate(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err, locale)

		return
	}

	resolver := s.resolver.Localized(locale)
	resp := NearbyResponse{
		Location: reading.Point,
		Accuracy: reading.Accuracy,
		Radius:   radius,
		Results:  make(map[locator.Category][]locator.PointOfInterest, len(categories)),
	}

	if len(categories) == len(locator.Categories) {
		all, err := resolver.FindAll(c.Request.Context(), reading.Point)
		if err != nil {
			s.abortWithError(c, err, locale)

			return
		}

		for _, cat := range locator.Categories {
			pois, err := all.Get(cat)
			if err != nil {
				s.reportPartial(&resp, cat, err, locale)

				continue
			}

			resp.Results[cat] = pois
		}
	} else {
		pois, err := resolver.FindNearby(c.Request.Context(), reading.Point, categories[0])
		if err != nil {
			s.abortWithError(c, err, locale)

			return
		}

		resp.Results[categories[0]] = pois
	}

	query := c.Query("q")
	for cat, pois := range resp.Results {
		resp.Results[cat] = locator.Filter(pois, query, radius)
	}

	c.JSON(http.StatusOK, resp)
}

// provider picks the position source: lat/lng parameters or an address.
func (s *Server) provider(c *gin.Context, accuracy float64) (geolocation.Provider, error) {
	if address := strings.TrimSpace(c.Query("address")); address != "" && c.Query("lat") == "" && c.Query("lng") == "" {
		return s.newAddressProvider(address), nil
	}

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)

	if err := errors.Join(errLat, errLng); err != nil {
		return nil, &locator.Error{Kind: locator.InvalidLocation, Message: "lat and lng must be numbers", Err: err}
	}

	p := spatial.Point{Lat: lat, Lng: lng}
	if err := p.Validate(); err != nil {
		return nil, &locator.Error{Kind: locator.InvalidLocation, Message: "invalid location", Err: err}
	}

	return &geolocation.StaticProvider{Point: p, Accuracy: accuracy}, nil
}

// nonNegativeQuery parses the optional query parameter key as a finite,
// non-negative number.
func nonNegativeQuery(c *gin.Context, key string, def float64) (float64, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be a non-negative number", key)
	}

	return f, nil
}

func parseCategories(s string) ([]locator.Category, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return locator.Categories, nil
	}

	c, err := locator.ParseCategory(s)
	if err != nil {
		return nil, err
	}

	return []locator.Category{c}, nil
}

func (s *Server) emergencyNumbers(c *gin.Context) {
	c.JSON(http.StatusOK, locator.EmergencyNumbers(requestLocale(c)))
}

// requestLocale prefers the lang parameter over Accept-Language.
func requestLocale(c *gin.Context) locator.Locale {
	if lang := c.Query("lang"); lang != "" {
		return locator.ParseLocale(lang)
	}

	return locator.ParseLocale(c.GetHeader("Accept-Language"))
}

// reportPartial records the failure of one category of a combined lookup.
func (s *Server) reportPartial(resp *NearbyResponse, cat locator.Category, err error, locale locator.Locale) {
	_, kind := classify(err)

	s.logger.WithError(err).WithFields(logrus.Fields{"kind": kind, "category": cat}).Warn("category lookup failed, returning the others")

	if resp.Errors == nil {
		resp.Errors = make(map[locator.Category]ErrorResponse)
	}

	resp.Errors[cat] = ErrorResponse{Error: locator.UserMessage(err, locale), Kind: kind}
}

func (s *Server) abortWithError(c *gin.Context, err error, locale locator.Locale) {
	status, kind := classify(err)

	entry := s.logger.WithError(err).WithField("kind", kind)
	if status >= http.StatusInternalServerError {
		entry.Error("nearby lookup failed")
	} else {
		entry.Warn("nearby lookup rejected")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: locator.UserMessage(err, locale), Kind: kind})
}

func classify(err error) (int, string) {
	if kind, ok := geolocation.KindOf(err); ok {
		if kind == geolocation.Unsupported {
			return http.StatusNotImplemented, kind.String()
		}

		return http.StatusUnprocessableEntity, kind.String()
	}

	if kind, ok := locator.KindOf(err); ok {
		if kind == locator.InvalidLocation {
			return http.StatusBadRequest, kind.String()
		}

		return http.StatusBadGateway, kind.String()
	}

	return http.StatusInternalServerError, "internal"
}
