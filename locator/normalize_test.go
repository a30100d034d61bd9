// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/medlocator/medlocator/overpass"
	"github.com/medlocator/medlocator/spatial"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = spatial.Point{Lat: 52.5200, Lng: 13.4050}

func raws(elements ...string) []overpass.RawFeature {
	out := make([]overpass.RawFeature, 0, len(elements))
	for _, e := range elements {
		out = append(out, overpass.RawFeature(e))
	}

	return out
}

func strPtr(s string) *string { return &s }

func newTestNormalizer(c Category) (*Normalizer, *test.Hook) {
	logger, hook := test.NewNullLogger()

	return &Normalizer{
		Category: c,
		Origin:   origin,
		IDs:      &CounterGenerator{},
		Locale:   English,
		Logger:   logger,
	}, hook
}

func TestNormalize_Hospital(t *testing.T) {
	n, _ := newTestNormalizer(Hospital)

	got := n.Normalize(raws(`{
		"type": "node", "id": 1, "lat": 52.5300, "lon": 13.4050,
		"tags": {
			"amenity": "hospital", "name": "Charité",
			"addr:street": "Charitéplatz", "addr:housenumber": "1", "addr:city": "Berlin", "addr:postcode": "10117",
			"phone": "+49 30 450 50", "website": "www.charite.de",
			"emergency": "yes", "wheelchair": "limited", "opening_hours": "24/7"
		}
	}`))

	want := []PointOfInterest{{
		ID:           "node/1",
		Category:     Hospital,
		Name:         "Charité",
		Location:     spatial.Point{Lat: 52.5300, Lng: 13.4050},
		Distance:     1.1,
		Address:      "Charitéplatz 1, Berlin 10117",
		Phone:        strPtr("+49 30 450 50"),
		Website:      strPtr("https://www.charite.de"),
		OpeningHours: strPtr("24/7"),
		Hospital: &HospitalDetails{
			EmergencyUnit:    true,
			WheelchairAccess: WheelchairUnknown,
			Services:         []Service{ServiceEmergencyCare},
		},
	}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_Pharmacy(t *testing.T) {
	n, _ := newTestNormalizer(Pharmacy)

	got := n.Normalize(raws(`{"type":"way","id":5,"center":{"lat":52.52,"lon":13.405},"tags":{"amenity":"pharmacy"}}`))
	require.Len(t, got, 1)

	p := got[0]
	assert.Equal(t, "way/5", p.ID)
	assert.Equal(t, "Unnamed pharmacy", p.Name)
	assert.Equal(t, "address not available", p.Address)
	assert.Equal(t, 0.0, p.Distance)
	require.NotNil(t, p.OpeningHours)
	assert.Equal(t, "not specified", *p.OpeningHours)
	assert.Nil(t, p.Phone)
	assert.Nil(t, p.Website)
	assert.Nil(t, p.Hospital)
}

func TestNormalize_Containment(t *testing.T) {
	n, hook := newTestNormalizer(Hospital)

	got := n.Normalize(raws(
		`{"type":"node","id":1,"lat":52.53,"lon":13.405,"tags":{"amenity":"hospital","name":"A"}}`,
		`{"type":"node","id":2,"lat":52.53,"lon":13.405,"tags":{"amenity":"hospital","beds":120}}`,
		`"garbage"`,
		`{"type":"node","id":3,"lat":52.54,"lon":13.405,"tags":{"amenity":"pharmacy","name":"Not me"}}`,
		`{"type":"node","id":4,"lat":52.55,"lon":13.405}`,
		`{"type":"node","id":5,"lat":52.56,"lon":13.405,"tags":{"amenity":"hospital","name":"B"}}`,
	))

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "B", got[1].Name)

	var warnings int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, "undecodable") {
			warnings++
		}
	}

	assert.Equal(t, 2, warnings)
}

func TestResolveLocation(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   spatial.Point
		wantOK bool
	}{
		{"direct", `{"type":"node","id":1,"lat":1.5,"lon":2.5,"center":{"lat":9,"lon":9}}`, spatial.Point{Lat: 1.5, Lng: 2.5}, true},
		{"zero is a position", `{"type":"node","id":1,"lat":0,"lon":0}`, spatial.Point{}, true},
		{"center", `{"type":"way","id":1,"center":{"lat":3.5,"lon":4.5}}`, spatial.Point{Lat: 3.5, Lng: 4.5}, true},
		{"half direct falls to center", `{"type":"way","id":1,"lat":7,"center":{"lat":3.5,"lon":4.5}}`, spatial.Point{Lat: 3.5, Lng: 4.5}, true},
		{"tags", `{"type":"relation","id":1,"tags":{"lat":"48.1","lon":"11.5"}}`, spatial.Point{Lat: 48.1, Lng: 11.5}, true},
		{"unparsable tags", `{"type":"relation","id":1,"tags":{"lat":"north","lon":"11.5"}}`, DefaultCoordinate, false},
		{"out of range tags", `{"type":"relation","id":1,"tags":{"lat":"91","lon":"11.5"}}`, DefaultCoordinate, false},
		{"non finite tags", `{"type":"relation","id":1,"tags":{"lat":"NaN","lon":"11.5"}}`, DefaultCoordinate, false},
		{"nothing", `{"type":"relation","id":1}`, DefaultCoordinate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := overpass.RawFeature(tt.raw).Decode()
			require.NoError(t, err)

			got, ok := ResolveLocation(e)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_DefaultCoordinateWarns(t *testing.T) {
	n, hook := newTestNormalizer(Hospital)

	got := n.Normalize(raws(`{"type":"relation","id":8,"tags":{"amenity":"hospital","name":"Nowhere"}}`))
	require.Len(t, got, 1)
	assert.Equal(t, DefaultCoordinate, got[0].Location)
	assert.Equal(t, 0.0, got[0].Distance)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "relation/8", entry.Data["ref"])
}

func TestNormalize_GeneratedIDs(t *testing.T) {
	n, _ := newTestNormalizer(Pharmacy)

	got := n.Normalize(raws(
		`{"lat":52.5,"lon":13.4,"tags":{"amenity":"pharmacy"}}`,
		`{"lat":52.5,"lon":13.4,"tags":{"amenity":"pharmacy"}}`,
	))

	require.Len(t, got, 2)
	assert.Equal(t, "pharmacy-1", got[0].ID)
	assert.Equal(t, "pharmacy-2", got[1].ID)
	assert.NotContains(t, got[0].ID, "/")

	raw := []byte(`{"lat":52.5,"lon":13.4,"tags":{"amenity":"hospital"}}`)
	uuidID := UUIDGenerator{}.NewID(Hospital, raw)
	assert.True(t, strings.HasPrefix(uuidID, "hospital-"))
	assert.Len(t, uuidID, len("hospital-")+36)
	assert.NotContains(t, uuidID, "/")
	assert.Equal(t, uuidID, UUIDGenerator{}.NewID(Hospital, raw))
	assert.NotEqual(t, uuidID, UUIDGenerator{}.NewID(Hospital, []byte(`{"lat":52.6,"lon":13.4,"tags":{"amenity":"hospital"}}`)))
}

func TestNormalize_Idempotent(t *testing.T) {
	input := raws(
		`{"type":"node","id":1,"lat":52.53,"lon":13.41,"tags":{"amenity":"hospital","name":"A","wheelchair":"yes"}}`,
		`{"type":"way","id":2,"center":{"lat":52.50,"lon":13.38},"tags":{"amenity":"hospital","addr:street":"Weg"}}`,
	)

	n, _ := newTestNormalizer(Hospital)
	first := n.Normalize(input)
	second := n.Normalize(input)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Normalize() not idempotent (-first +second):\n%s", diff)
	}
}

func TestFindNearby_IdempotentWithoutUpstreamIDs(t *testing.T) {
	f := &fakeFetcher{features: map[Category][]overpass.RawFeature{
		Hospital: raws(
			`{"lat":52.53,"lon":13.41,"tags":{"amenity":"hospital","name":"Ohne ID"}}`,
			`{"type":"node","id":7,"lat":52.54,"lon":13.41,"tags":{"amenity":"hospital"}}`,
		),
	}}

	logger, _ := test.NewNullLogger()
	r := NewResolver(f, WithLogger(logger))

	first, err := r.FindNearby(context.Background(), origin, Hospital)
	require.NoError(t, err)

	second, err := r.FindNearby(context.Background(), origin, Hospital)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("FindNearby() not idempotent (-first +second):\n%s", diff)
	}

	require.Len(t, first, 2)
	assert.True(t, strings.HasPrefix(first[0].ID, "hospital-"), first[0].ID)
	assert.Equal(t, "node/7", first[1].ID)
}

func TestHospitalDetails(t *testing.T) {
	h := hospitalDetails(overpass.Tags{"emergency": "yes", "wheelchair": "yes"})
	assert.Equal(t, []Service{ServiceEmergencyCare, ServiceWheelchairAccessible}, h.Services)
	assert.True(t, h.HasService(ServiceWheelchairAccessible))

	h = hospitalDetails(overpass.Tags{"emergency": "no", "wheelchair": "no"})
	assert.False(t, h.EmergencyUnit)
	assert.Equal(t, WheelchairNo, h.WheelchairAccess)
	assert.Empty(t, h.Services)
	assert.NotNil(t, h.Services)

	assert.Equal(t, WheelchairUnknown, hospitalDetails(nil).WheelchairAccess)
}

func TestNormalizeWebsite(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.charite.de", "https://www.charite.de"},
		{"www.charite.de", "https://www.charite.de"},
		{"  http://Example.COM/path ", "http://example.com/path"},
		{"http://example.com:8080/x", "http://example.com:8080/x"},
		{"::not a url", "::not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWebsite(tt.in))
		})
	}

	idn := NormalizeWebsite("löwen-apotheke.example")
	assert.True(t, strings.HasPrefix(idn, "https://xn--"), idn)
	assert.NotContains(t, idn, "ö")
}
