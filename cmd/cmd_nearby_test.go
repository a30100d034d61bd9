// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/medlocator/medlocator/locator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategoryFlag(t *testing.T) {
	all, err := parseCategoryFlag("ALL")
	require.NoError(t, err)
	assert.Equal(t, locator.Categories, all)

	one, err := parseCategoryFlag("pharmacy")
	require.NoError(t, err)
	assert.Equal(t, []locator.Category{locator.Pharmacy}, one)

	_, err = parseCategoryFlag("dentist")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Universitä…", truncate("Universitätsklinikum", 11))
	assert.Equal(t, 11, len([]rune(truncate("Universitätsklinikum", 11))))
}

func TestPrintTable(t *testing.T) {
	hours := "24/7"
	pois := []locator.PointOfInterest{{
		Name:         "Klinikum Mitte",
		Address:      "Hauptstraße 12, Berlin",
		Distance:     1.4,
		OpeningHours: &hours,
		Hospital: &locator.HospitalDetails{
			EmergencyUnit: true,
			Services:      []locator.Service{locator.ServiceEmergencyCare},
		},
	}}

	var buf bytes.Buffer
	printTable(&buf, locator.Hospital, pois, locator.German)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "hospital (1):\n"))
	assert.Contains(t, out, "│   1.4 │ Klinikum Mitte")
	assert.Contains(t, out, "Notfallversorgung; 24/7")

	lines := strings.Split(strings.TrimSpace(out), "\n")[1:]
	width := len([]rune(lines[0]))

	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), "misaligned row %q", l)
	}
}
