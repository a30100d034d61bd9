// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package overpass

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestRawFeature_Decode(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *Element
		wantErr  bool
	}{
		{
			name: "node with direct coordinate",
			raw:  `{"type":"node","id":42,"lat":52.52,"lon":13.405,"tags":{"amenity":"hospital","name":"Charité"}}`,
			expected: &Element{
				Type:   "node",
				ID:     42,
				LatLon: LatLon{Lat: ptr(52.52), Lon: ptr(13.405)},
				Tags:   Tags{"amenity": "hospital", "name": "Charité"},
			},
		},
		{
			name: "way with center",
			raw:  `{"type":"way","id":7,"center":{"lat":52.5,"lon":13.3},"tags":{"amenity":"pharmacy"}}`,
			expected: &Element{
				Type:   "way",
				ID:     7,
				Center: &LatLon{Lat: ptr(52.5), Lon: ptr(13.3)},
				Tags:   Tags{"amenity": "pharmacy"},
			},
		},
		{
			name:     "zero coordinate is present, not absent",
			raw:      `{"type":"node","id":1,"lat":0,"lon":0}`,
			expected: &Element{Type: "node", ID: 1, LatLon: LatLon{Lat: ptr(0), Lon: ptr(0)}},
		},
		{
			name:    "non string tag value",
			raw:     `{"type":"node","id":1,"tags":{"amenity":"hospital","beds":120}}`,
			wantErr: true,
		},
		{
			name:    "not an object",
			raw:     `"garbage"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := RawFeature(tt.raw).Decode()
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)

			if diff := cmp.Diff(tt.expected, e); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResponse_KeepsRawElements(t *testing.T) {
	body := `{"version":0.6,"elements":[{"type":"node","id":1,"tags":{"a":"b"}},{"type":"way","id":2,"tags":{"x":1}}]}`

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Elements, 2)

	_, err := resp.Elements[0].Decode()
	require.NoError(t, err)

	_, err = resp.Elements[1].Decode()
	require.Error(t, err)

	var missing Response
	require.NoError(t, json.Unmarshal([]byte(`{"version":0.6}`), &missing))
	assert.Nil(t, missing.Elements)
}

func TestElement_Ref(t *testing.T) {
	assert.Equal(t, "node/12", (&Element{Type: "node", ID: 12}).Ref())
	assert.Equal(t, "12", (&Element{ID: 12}).Ref())
	assert.Equal(t, "", (&Element{Type: "way"}).Ref())
}

func TestTags(t *testing.T) {
	var nilTags Tags

	v, ok := nilTags.Get("name")
	assert.False(t, ok)
	assert.Empty(t, v)
	assert.Nil(t, nilTags.Optional("phone"))

	tags := Tags{"name": "  Apotheke am Markt ", "phone": "", "emergency": "yes"}
	assert.Equal(t, "Apotheke am Markt", tags.Value("name"))
	assert.Nil(t, tags.Optional("phone"))
	assert.True(t, tags.Is("emergency", "yes"))
	assert.False(t, tags.Is("wheelchair", "yes"))
}

func TestAmenityQuery(t *testing.T) {
	q := AmenityQuery("hospital", 52.52, 13.405, 50000)

	assert.True(t, strings.HasPrefix(q, "[out:json][timeout:50];"))
	assert.Contains(t, q, `node["amenity"="hospital"](around:50000,52.52,13.405);`)
	assert.Contains(t, q, `way["amenity"="hospital"](around:50000,52.52,13.405);`)
	assert.Contains(t, q, `relation["amenity"="hospital"](around:50000,52.52,13.405);`)
	assert.True(t, strings.HasSuffix(q, "out center;\n"))
}
