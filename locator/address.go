// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"strings"

	"github.com/medlocator/medlocator/overpass"
)

// Address tags.
const (
	tagStreet      = "addr:street"
	tagHouseNumber = "addr:housenumber"
	tagCity        = "addr:city"
	tagPostcode    = "addr:postcode"
	tagAddress     = "address"
)

// FormatAddress renders the address of a feature from its tags:
//
//	street + housenumber  "{street} {number}[, {city}][ {postcode}]"
//	street                "{street}[, {city}][ {postcode}]"
//	address               verbatim
//	otherwise             the locale's "address not available"
func FormatAddress(tags overpass.Tags, locale Locale) string {
	street := tags.Value(tagStreet)
	number := tags.Value(tagHouseNumber)

	if street == "" {
		if _, ok := tags.Get(tagAddress); ok {
			return tags[tagAddress]
		}

		return locale.AddressUnavailable()
	}

	var b strings.Builder

	b.WriteString(street)

	if number != "" {
		b.WriteString(" ")
		b.WriteString(number)
	}

	if city := tags.Value(tagCity); city != "" {
		b.WriteString(", ")
		b.WriteString(city)
	}

	if postcode := tags.Value(tagPostcode); postcode != "" {
		b.WriteString(" ")
		b.WriteString(postcode)
	}

	return b.String()
}
