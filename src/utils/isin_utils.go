// backend/src/utils/isin_utils.go
package utils

import (
	"regexp"
	"strings"
)

// ISIN shape: two-letter country prefix, nine alphanumeric characters for
// the national security identifier, one check digit.
var isinRe = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// IsValidISIN reports whether s looks like an ISIN. Rows whose instrument
// code fails this are rejected outright, never coerced.
func IsValidISIN(s string) bool {
	return isinRe.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// CountryCodeFromISIN returns the two-letter country prefix of an ISIN,
// or "" if the code is too short to carry one.
func CountryCodeFromISIN(isin string) string {
	isin = strings.TrimSpace(isin)
	if len(isin) < 2 {
		return ""
	}
	return strings.ToUpper(isin[:2])
}
