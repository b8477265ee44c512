// backend/src/utils/isin_utils_test.go
package utils

import "testing"

func TestIsValidISIN(t *testing.T) {
	tests := []struct {
		isin string
		want bool
	}{
		{"INE467B01029", true},
		{"IN0020220060", true},
		{"ine467b01029", true},  // case-folded before matching
		{" INE467B01029 ", true},
		{"US0378331005", true},
		{"INE467B0102", false},   // eleven characters
		{"INE467B010290", false}, // thirteen characters
		{"1NE467B01029", false},  // digit in country code
		{"INE467B0102X", false},  // letter check digit
		{"", false},
		{"-", false},
	}
	for _, tc := range tests {
		if got := IsValidISIN(tc.isin); got != tc.want {
			t.Errorf("IsValidISIN(%q) = %v, want %v", tc.isin, got, tc.want)
		}
	}
}

func TestCountryCodeFromISIN(t *testing.T) {
	tests := []struct{ isin, want string }{
		{"INE467B01029", "IN"},
		{"us0378331005", "US"},
		{"I", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := CountryCodeFromISIN(tc.isin); got != tc.want {
			t.Errorf("CountryCodeFromISIN(%q) = %q, want %q", tc.isin, got, tc.want)
		}
	}
}
