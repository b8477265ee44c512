// backend/src/ingest/sections_test.go
package ingest

import "testing"

func TestMatchCategory(t *testing.T) {
	tests := []struct {
		rowText string
		want    string
		ok      bool
	}{
		{"equity & equity related instruments", CategoryEquity, true},
		{"debt instruments", CategoryDebt, true},
		{"non-convertible debentures", CategoryDebt, true},
		{"money market instruments", CategoryMoneyMarket, true},
		{"government securities", CategoryGovt, true},
		{"treasury bill", CategoryGovt, true},
		{"units of reit & invit", CategoryREIT, true},
		{"other current assets", CategoryOthers, true},
		{"infosys ltd ine009a01021 software", "", false},
	}
	for _, tc := range tests {
		got, ok := matchCategory(tc.rowText)
		if got != tc.want || ok != tc.ok {
			t.Errorf("matchCategory(%q) = (%q, %v), want (%q, %v)", tc.rowText, got, ok, tc.want, tc.ok)
		}
	}
}

func TestIsIrrelevantRow(t *testing.T) {
	tests := []struct {
		rowText string
		want    bool
	}{
		{"grand total 19500.5 100.00", true},
		{"sub total 4500 23.1", true},
		{"net current assets 120.5", true},
		{"notes: the portfolio turnover ratio", true},
		{"^ unlisted security", true},
		{"* thinly traded security", true},
		{"infosys ltd ine009a01021 software 100", false},
		{"7.26% goi 2033 in0020220060", false},
	}
	for _, tc := range tests {
		if got := isIrrelevantRow(tc.rowText); got != tc.want {
			t.Errorf("isIrrelevantRow(%q) = %v, want %v", tc.rowText, got, tc.want)
		}
	}
}

func TestApplyREITOverride(t *testing.T) {
	tests := []struct {
		instrument string
		category   string
		want       string
	}{
		{"Embassy Office Parks REIT", CategoryEquity, CategoryREIT},
		{"Powergrid Infrastructure InvIT", CategoryDebt, CategoryREIT},
		{"Infosys Ltd", CategoryEquity, CategoryEquity},
		{"HDFC Bank Ltd", CategoryDebt, CategoryDebt},
	}
	for _, tc := range tests {
		if got := applyREITOverride(tc.instrument, tc.category); got != tc.want {
			t.Errorf("applyREITOverride(%q, %q) = %q, want %q", tc.instrument, tc.category, got, tc.want)
		}
	}
}

func TestRowHasValidISIN(t *testing.T) {
	if !rowHasValidISIN(row("Infosys Ltd", "INE009A01021", "100")) {
		t.Error("expected ISIN to be found")
	}
	if rowHasValidISIN(row("Equity & Equity related Instruments", "", "")) {
		t.Error("section header must not report an ISIN")
	}
}
