// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "BR"

// Digits strips every non-digit character from a raw phone string.
// This is the canonical form used to de-duplicate inbound contact events.
// Pure and total: empty or garbage input yields an empty string.
// No country-code stripping happens here.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatDisplay renders a digits-only phone number in international format
// for display purposes. If the number cannot be parsed as a valid number,
// the input is returned unchanged.
func FormatDisplay(digits string) string {
	trimmed := strings.TrimSpace(digits)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}
