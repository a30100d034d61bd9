// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/medlocator/medlocator/metrics"
	"github.com/medlocator/medlocator/overpass"
	"github.com/medlocator/medlocator/spatial"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/idna"
)

// DefaultCoordinate is used for features without any usable position
// (Berlin Mitte).
var DefaultCoordinate = spatial.Point{Lat: 52.5200, Lng: 13.4050}

// Tags read by the normalizer.
const (
	tagAmenity      = "amenity"
	tagName         = "name"
	tagPhone        = "phone"
	tagWebsite      = "website"
	tagOpeningHours = "opening_hours"
	tagEmergency    = "emergency"
	tagWheelchair   = "wheelchair"
	tagLat          = "lat"
	tagLon          = "lon"
)

// Normalizer turns raw features of one category into PointOfInterest
// records relative to Origin.
type Normalizer struct {
	Category Category
	Origin   spatial.Point
	IDs      IDGenerator
	Locale   Locale
	Logger   logrus.FieldLogger
}

// Normalize decodes and normalizes every feature. Features of another
// amenity are dropped silently; undecodable ones are logged and dropped.
// The result is not sorted.
func (n *Normalizer) Normalize(features []overpass.RawFeature) []PointOfInterest {
	logger := n.logger()
	pois := make([]PointOfInterest, 0, len(features))

	for i, raw := range features {
		e, err := raw.Decode()
		if err != nil {
			logger.WithError(err).WithField("index", i).Warn("skipping undecodable feature")
			metrics.DroppedFeatures.WithLabelValues(string(n.Category), "undecodable").Inc()

			continue
		}

		if !e.Tags.Is(tagAmenity, string(n.Category)) {
			metrics.DroppedFeatures.WithLabelValues(string(n.Category), "other_amenity").Inc()

			continue
		}

		pois = append(pois, n.normalizeElement(e, raw))
	}

	return pois
}

func (n *Normalizer) normalizeElement(e *overpass.Element, raw overpass.RawFeature) PointOfInterest {
	location, ok := ResolveLocation(e)
	if !ok {
		n.logger().WithFields(logrus.Fields{
			"ref":  e.Ref(),
			"name": e.Tags.Value(tagName),
		}).Warn("feature without location data, using default coordinate")
		metrics.FallbackCoordinates.WithLabelValues(string(n.Category)).Inc()
	}

	id := e.Ref()
	if id == "" {
		id = n.ids().NewID(n.Category, raw)
	}

	name, hasName := e.Tags.Get(tagName)
	if !hasName {
		name = n.Locale.UnnamedPlaceholder(n.Category)
	}

	poi := PointOfInterest{
		ID:           id,
		Category:     n.Category,
		Name:         name,
		Location:     location,
		Distance:     spatial.RoundKm(spatial.DistanceKm(n.Origin, location)),
		Address:      FormatAddress(e.Tags, n.Locale),
		Phone:        e.Tags.Optional(tagPhone),
		OpeningHours: e.Tags.Optional(tagOpeningHours),
	}

	if website, ok := e.Tags.Get(tagWebsite); ok {
		website = NormalizeWebsite(website)
		poi.Website = &website
	}

	switch n.Category {
	case Hospital:
		poi.Hospital = hospitalDetails(e.Tags)
	case Pharmacy:
		if poi.OpeningHours == nil {
			placeholder := n.Locale.NotSpecified()
			poi.OpeningHours = &placeholder
		}
	}

	return poi
}

func hospitalDetails(tags overpass.Tags) *HospitalDetails {
	h := &HospitalDetails{
		EmergencyUnit:    tags.Is(tagEmergency, "yes"),
		WheelchairAccess: parseWheelchair(tags.Value(tagWheelchair)),
		Services:         []Service{},
	}

	if h.EmergencyUnit {
		h.Services = append(h.Services, ServiceEmergencyCare)
	}

	if h.WheelchairAccess == WheelchairYes {
		h.Services = append(h.Services, ServiceWheelchairAccessible)
	}

	return h
}

// ResolveLocation tries the direct coordinate, then the center, then
// lat/lon tags. It returns DefaultCoordinate and false when none is usable.
func ResolveLocation(e *overpass.Element) (spatial.Point, bool) {
	candidates := []*overpass.LatLon{&e.LatLon, e.Center}

	for _, c := range candidates {
		if !c.Complete() {
			continue
		}

		p := spatial.Point{Lat: *c.Lat, Lng: *c.Lon}
		if p.Validate() == nil {
			return p, true
		}
	}

	if p, ok := tagLocation(e.Tags); ok {
		return p, true
	}

	return DefaultCoordinate, false
}

func tagLocation(tags overpass.Tags) (spatial.Point, bool) {
	latStr, okLat := tags.Get(tagLat)
	lonStr, okLon := tags.Get(tagLon)

	if !okLat || !okLon {
		return spatial.Point{}, false
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return spatial.Point{}, false
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return spatial.Point{}, false
	}

	p := spatial.Point{Lat: lat, Lng: lon}
	if p.Validate() != nil {
		return spatial.Point{}, false
	}

	return p, true
}

// NormalizeWebsite adds a missing https scheme and converts international
// host names to their ASCII form. Values that do not parse as a URL are
// returned trimmed but otherwise unchanged.
func NormalizeWebsite(raw string) string {
	s := strings.TrimSpace(raw)

	candidate := s
	if !strings.Contains(s, "://") {
		candidate = "https://" + s
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return s
	}

	host, err := idna.Lookup.ToASCII(u.Hostname())
	if err != nil {
		return s
	}

	if port := u.Port(); port != "" {
		host = net.JoinHostPort(host, port)
	}

	u.Host = host

	return u.String()
}

func (n *Normalizer) logger() logrus.FieldLogger {
	var l logrus.FieldLogger = logrus.StandardLogger()
	if n.Logger != nil {
		l = n.Logger
	}

	return l.WithField("category", n.Category)
}

func (n *Normalizer) ids() IDGenerator {
	if n.IDs == nil {
		return UUIDGenerator{}
	}

	return n.IDs
}
