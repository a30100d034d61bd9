// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils holds string normalization helpers shared by the search
// filters.
package textutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LowerASCIIFolding normalizes a string by removing accents, lowercasing, and trimming spaces.
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

// ContainsFolded reports whether needle occurs in haystack once both are
// folded with LowerASCIIFolding. An empty needle matches everything.
func ContainsFolded(haystack, needle string) bool {
	needle = LowerASCIIFolding(needle)
	if needle == "" {
		return true
	}

	return strings.Contains(LowerASCIIFolding(haystack), needle)
}

// ExpandGermanUmlauts rewrites ä, ö, ü and ß the way German speakers type
// them without the special keys ("Strasse", "Aerztehaus").
func ExpandGermanUmlauts(s string) string {
	return umlauts.Replace(s)
}

var umlauts = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue",
	"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
	"ß", "ss",
)
