// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/medlocator/medlocator/geolocation"
	"github.com/stretchr/testify/assert"
)

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in   string
		want Locale
	}{
		{"", English},
		{"de", German},
		{"de-AT", German},
		{"de-DE,de;q=0.9,en;q=0.8", German},
		{"en-US,en;q=0.9,de;q=0.5", English},
		{"fr-FR", English},
		{"!!!", English},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLocale(tt.in))
		})
	}
}

func TestLocale_Placeholders(t *testing.T) {
	assert.Equal(t, "address not available", English.AddressUnavailable())
	assert.Equal(t, "Unnamed hospital", English.UnnamedPlaceholder(Hospital))
	assert.Equal(t, "Unnamed pharmacy", English.UnnamedPlaceholder(Pharmacy))
	assert.Equal(t, "not specified", English.NotSpecified())
	assert.Equal(t, "Emergency care", English.ServiceLabel(ServiceEmergencyCare))

	assert.Equal(t, "Adresse nicht verfügbar", German.AddressUnavailable())
	assert.Equal(t, "Unbenanntes Krankenhaus", German.UnnamedPlaceholder(Hospital))
	assert.Equal(t, "Unbenannte Apotheke", German.UnnamedPlaceholder(Pharmacy))
	assert.Equal(t, "Keine Angabe", German.NotSpecified())
	assert.Equal(t, "Rollstuhlgerecht", German.ServiceLabel(ServiceWheelchairAccessible))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"permission", &geolocation.Error{Kind: geolocation.PermissionDenied}, msgPermissionDenied},
		{"position", fmt.Errorf("locate: %w", geolocation.ErrPositionUnavailable), msgPositionUnavailable},
		{"timeout", geolocation.ErrTimeout, msgLocationTimeout},
		{"unsupported", geolocation.ErrUnsupported, msgLocationUnsupported},
		{"invalid location", &Error{Kind: InvalidLocation}, msgInvalidLocation},
		{"upstream", fmt.Errorf("find: %w", &Error{Kind: UpstreamUnavailable, StatusCode: 503}), msgUpstreamUnavailable},
		{"malformed", ErrMalformedResponse, msgMalformedResponse},
		{"untyped", errors.New("permission denied"), msgGenericFailure},
		{"text does not matter", &Error{Kind: UpstreamUnavailable, Message: "permission denied"}, msgUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err, English))
		})
	}
}

func TestUserMessage_German(t *testing.T) {
	assert.Equal(t,
		"Der Kartendienst ist derzeit nicht erreichbar. Bitte versuchen Sie es in einigen Minuten erneut.",
		UserMessage(ErrUpstreamUnavailable, German))
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &Error{Kind: MalformedResponse, Message: "x"})

	assert.True(t, errors.Is(err, ErrMalformedResponse))
	assert.False(t, errors.Is(err, ErrUpstreamUnavailable))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, "malformed_response", kind.String())
}
