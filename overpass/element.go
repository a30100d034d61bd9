// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

// Package overpass describes the wire format of the Overpass API
// (OpenStreetMap) and builds the queries sent to it.
package overpass

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Element types returned by the Overpass API.
const (
	TypeNode     = "node"
	TypeWay      = "way"
	TypeRelation = "relation"
)

// RawFeature is one undecoded entry of the response's elements array.
// Decoding is deferred so a single malformed element can be skipped
// without rejecting the whole response.
type RawFeature json.RawMessage

// MarshalJSON returns the raw bytes unchanged.
func (r RawFeature) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}

	return r, nil
}

// UnmarshalJSON keeps a copy of the raw bytes.
func (r *RawFeature) UnmarshalJSON(data []byte) error {
	if r == nil {
		return errors.New("overpass: UnmarshalJSON on nil RawFeature")
	}

	*r = append((*r)[0:0], data...)

	return nil
}

// Decode parses the raw element.
func (r RawFeature) Decode() (*Element, error) {
	var e Element
	if err := json.Unmarshal(r, &e); err != nil {
		return nil, fmt.Errorf("decoding element: %w", err)
	}

	return &e, nil
}

// LatLon is an optional coordinate pair. Pointers tell "absent" from zero.
type LatLon struct {
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
}

// Complete reports whether both components are present.
func (c *LatLon) Complete() bool {
	return c != nil && c.Lat != nil && c.Lon != nil
}

// Element is a decoded node, way or relation. Nodes carry a direct
// coordinate, ways and relations a center when queried with "out center".
type Element struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
	LatLon
	Center *LatLon `json:"center,omitempty"`
	Tags   Tags    `json:"tags,omitempty"`
}

// Ref returns "type/id", or "" if the element has no upstream id.
func (e *Element) Ref() string {
	if e.ID == 0 {
		return ""
	}

	if e.Type == "" {
		return fmt.Sprintf("%d", e.ID)
	}

	return fmt.Sprintf("%s/%d", e.Type, e.ID)
}

// Tags is the free-form key/value mapping attached to an element.
type Tags map[string]string

// Get returns the trimmed value for key and whether it is non-empty.
// Lookups on a nil Tags are safe.
func (t Tags) Get(key string) (string, bool) {
	v := strings.TrimSpace(t[key])

	return v, v != ""
}

// Value returns the trimmed value for key or "".
func (t Tags) Value(key string) string {
	v, _ := t.Get(key)

	return v
}

// Optional returns a pointer to the value for key, or nil when absent.
func (t Tags) Optional(key string) *string {
	if v, ok := t.Get(key); ok {
		return &v
	}

	return nil
}

// Is reports whether key is set to value.
func (t Tags) Is(key, value string) bool {
	v, ok := t.Get(key)

	return ok && v == value
}

// Response is the top-level Overpass JSON document. Elements is nil when
// the key is missing from the payload.
type Response struct {
	Version   float64      `json:"version"`
	Generator string       `json:"generator"`
	Remark    string       `json:"remark,omitempty"`
	Elements  []RawFeature `json:"elements"`
}
