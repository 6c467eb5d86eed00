// Package common holds utilities shared across the service:
// Arabic pluralization, number formatting and time handling.
package common

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultTimezone is the platform's home timezone.
const DefaultTimezone = "Asia/Riyadh"

// FormatNumber formats n with the thousands grouping of the given language.
//
//	FormatNumber(language.English, 2350) → "2,350"
func FormatNumber(tag language.Tag, n int64) string {
	return message.NewPrinter(tag).Sprintf("%d", n)
}

// LoadLocation loads name and falls back to UTC+3 when the tz database is missing.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// Riyadh has no DST, a fixed zone is exact.
		return time.FixedZone("AST", 3*60*60)
	}
	return loc
}
