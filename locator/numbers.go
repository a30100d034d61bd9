// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package locator

// EmergencyNumber is a German emergency hotline.
type EmergencyNumber struct {
	Service string `json:"service"`
	Number  string `json:"number"`
}

var emergencyNumbers = []struct {
	en, de, number string
}{
	{"General emergency", "Notruf (Allgemein)", "112"},
	{"Ambulance", "Rettungsdienst", "112"},
	{"Police", "Polizei", "110"},
	{"Fire brigade", "Feuerwehr", "112"},
	{"Poison control Berlin", "Giftnotruf Berlin", "030 19240"},
	{"On-call doctor", "Ärztlicher Bereitschaftsdienst", "116 117"},
}

// EmergencyNumbers lists the emergency numbers with service names in locale.
func EmergencyNumbers(locale Locale) []EmergencyNumber {
	out := make([]EmergencyNumber, 0, len(emergencyNumbers))

	for _, n := range emergencyNumbers {
		service := n.en
		if locale == German {
			service = n.de
		}

		out = append(out, EmergencyNumber{Service: service, Number: n.number})
	}

	return out
}
