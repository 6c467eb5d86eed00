// Package common: pluralize.go agrees the word «نقطة» (point) with a count.
package common

import (
	"fmt"

	"golang.org/x/text/language"
)

// PluralizePoints returns the form of «نقطة» that follows the number n.
//
// Rules:
//   - 2 → "نقطتان" (dual)
//   - n%100 in [3..10] → "نقاط" (3-10, 103-110, ...)
//   - everything else → "نقطة" (0, 1, 11-102, ...)
func PluralizePoints(n int64) string {
	if n < 0 {
		n = -n
	}
	if n == 2 {
		return "نقطتان"
	}
	if r := n % 100; r >= 3 && r <= 10 {
		return "نقاط"
	}
	return "نقطة"
}

// FormatPoints renders a point amount for display.
//
//	FormatPoints(1)  → "نقطة واحدة"
//	FormatPoints(2)  → "نقطتان"
//	FormatPoints(5)  → "5 نقاط"
//	FormatPoints(50) → "50 نقطة"
func FormatPoints(n int64) string {
	switch n {
	case 1:
		return "نقطة واحدة"
	case 2:
		return "نقطتان"
	}
	return fmt.Sprintf("%d %s", n, PluralizePoints(n))
}

// FormatPointsAmount renders a signed credit like "+50 نقطة".
func FormatPointsAmount(n int64) string {
	if n >= 0 {
		return fmt.Sprintf("+%d %s", n, PluralizePoints(n))
	}
	return fmt.Sprintf("%d %s", n, PluralizePoints(n))
}

// FormatPointsLocalized renders n with Arabic locale digits and grouping.
func FormatPointsLocalized(n int64) string {
	return FormatNumber(language.Arabic, n) + " " + PluralizePoints(n)
}
