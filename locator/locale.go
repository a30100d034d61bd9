// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Locale selects the language of placeholders and user messages.
type Locale int

const (
	English Locale = iota
	German
)

var supportedTags = []language.Tag{language.English, language.German}

var localeMatcher = language.NewMatcher(supportedTags)

// Tag returns the BCP 47 tag of l.
func (l Locale) Tag() language.Tag {
	if l < 0 || int(l) >= len(supportedTags) {
		return language.English
	}

	return supportedTags[l]
}

func (l Locale) String() string {
	return l.Tag().String()
}

// ParseLocale picks the best supported locale for an Accept-Language header
// or a plain tag such as "de". Anything unparsable yields English.
func ParseLocale(s string) Locale {
	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return English
	}

	_, index, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return English
	}

	return Locale(index)
}

// Message keys. The English text doubles as the key.
const (
	msgAddressUnavailable   = "address not available"
	msgUnnamedHospital      = "Unnamed hospital"
	msgUnnamedPharmacy      = "Unnamed pharmacy"
	msgNotSpecified         = "not specified"
	msgEmergencyCare        = "Emergency care"
	msgWheelchairAccessible = "Wheelchair accessible"

	msgPermissionDenied    = "Location access was denied. Allow location access for this application in your browser or system settings and try again, or enter an address instead."
	msgPositionUnavailable = "Your position could not be determined. Please try again."
	msgLocationTimeout     = "Determining your position took too long. Please try again."
	msgLocationUnsupported = "Location lookup is not supported here. Please enter coordinates or an address."
	msgInvalidLocation     = "The given location is invalid. Please provide a new position."
	msgUpstreamUnavailable = "The map service is currently unavailable. Please try again in a few minutes."
	msgMalformedResponse   = "The map service returned unexpected data. Please try again later."
	msgGenericFailure      = "Something went wrong. Please try again."
)

var translations = map[string]string{
	msgAddressUnavailable:   "Adresse nicht verfügbar",
	msgUnnamedHospital:      "Unbenanntes Krankenhaus",
	msgUnnamedPharmacy:      "Unbenannte Apotheke",
	msgNotSpecified:         "Keine Angabe",
	msgEmergencyCare:        "Notfallversorgung",
	msgWheelchairAccessible: "Rollstuhlgerecht",

	msgPermissionDenied:    "Der Standortzugriff wurde verweigert. Erlauben Sie dieser Anwendung den Standortzugriff in den Browser- oder Systemeinstellungen und versuchen Sie es erneut, oder geben Sie eine Adresse ein.",
	msgPositionUnavailable: "Ihr Standort konnte nicht ermittelt werden. Bitte versuchen Sie es erneut.",
	msgLocationTimeout:     "Die Standortbestimmung hat zu lange gedauert. Bitte versuchen Sie es erneut.",
	msgLocationUnsupported: "Die Standortbestimmung wird hier nicht unterstützt. Bitte geben Sie Koordinaten oder eine Adresse ein.",
	msgInvalidLocation:     "Der angegebene Standort ist ungültig. Bitte geben Sie einen neuen Standort an.",
	msgUpstreamUnavailable: "Der Kartendienst ist derzeit nicht erreichbar. Bitte versuchen Sie es in einigen Minuten erneut.",
	msgMalformedResponse:   "Der Kartendienst hat unerwartete Daten geliefert. Bitte versuchen Sie es später erneut.",
	msgGenericFailure:      "Etwas ist schiefgelaufen. Bitte versuchen Sie es erneut.",
}

var messages = newCatalog()

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	for key, de := range translations {
		if err := b.SetString(language.English, key, key); err != nil {
			panic(err)
		}

		if err := b.SetString(language.German, key, de); err != nil {
			panic(err)
		}
	}

	return b
}

func (l Locale) printer() *message.Printer {
	return message.NewPrinter(l.Tag(), message.Catalog(messages))
}

// AddressUnavailable is the placeholder for features without an address.
func (l Locale) AddressUnavailable() string {
	return l.printer().Sprintf(msgAddressUnavailable)
}

// NotSpecified is the placeholder for missing pharmacy opening hours.
func (l Locale) NotSpecified() string {
	return l.printer().Sprintf(msgNotSpecified)
}

// UnnamedPlaceholder is the name given to features without a name tag.
func (l Locale) UnnamedPlaceholder(c Category) string {
	if c == Pharmacy {
		return l.printer().Sprintf(msgUnnamedPharmacy)
	}

	return l.printer().Sprintf(msgUnnamedHospital)
}

// ServiceLabel is the display label of a hospital service.
func (l Locale) ServiceLabel(s Service) string {
	switch s {
	case ServiceEmergencyCare:
		return l.printer().Sprintf(msgEmergencyCare)
	case ServiceWheelchairAccessible:
		return l.printer().Sprintf(msgWheelchairAccessible)
	default:
		return string(s)
	}
}
