// backend/src/layout/classify_test.go
package layout

import (
	"testing"

	"github.com/username/fundfolio/backend/src/sheet"
)

func textGrid(name string, rows ...[]string) *sheet.Grid {
	g := &sheet.Grid{Name: name}
	for _, r := range rows {
		cells := make([]sheet.Cell, len(r))
		for i, s := range r {
			cells[i] = sheet.Cell{Raw: s}
		}
		g.Rows = append(g.Rows, cells)
	}
	return g
}

func TestClassifyByContent(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		header   []string
		want     Layout
	}{
		{
			"holdings statement",
			"monthly_portfolio.csv",
			[]string{"Name of the Instrument", "ISIN", "Rating / Industry", "Quantity", "Market Value (Rs. in Lacs)", "% to NAV"},
			Holdings,
		},
		{
			"ratings master",
			"ratings_master.csv",
			[]string{"ISIN", "Issuer Name", "Security Description", "Rating", "Rating Agency", "Coupon", "Maturity Date"},
			RatingsMaster,
		},
		{
			"exchange trades without name hint",
			"deals_jan.csv",
			[]string{"ISIN", "Trade Date", "Trade Time", "Deal size", "Buyer Deal Type"},
			NSE,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(textGrid("Sheet1", tc.header), tc.fileName)
			if c.Layout != tc.want {
				t.Fatalf("Classify() layout = %s, want %s", c.Layout, tc.want)
			}
			if c.Guessed {
				t.Errorf("Classify() guessed = true, want confident classification")
			}
			if !c.HasHeader {
				t.Errorf("Classify() hasHeader = false, want true")
			}
		})
	}
}

// A literal NSE/BSE marker in the file or sheet name overrides whatever the
// content scoring says.
func TestClassifyNameHintAuthoritative(t *testing.T) {
	bseHeader := []string{"Scrip Code", "Scrip Name", "Deal Date", "Deal Time", "Quantity", "Trade Price"}

	c := Classify(textGrid("Sheet1", bseHeader), "NSE_block_deals_jan.csv")
	if c.Layout != NSE {
		t.Fatalf("file name hint: layout = %s, want %s", c.Layout, NSE)
	}

	c = Classify(textGrid("BSE bulk deals", bseHeader), "deals.xlsx")
	if c.Layout != BSE {
		t.Fatalf("sheet name hint: layout = %s, want %s", c.Layout, BSE)
	}
}

// Equal content scores resolve in the fixed priority order, NSE first.
func TestClassifyTieBreak(t *testing.T) {
	// "trade price" and "deal size" score NSE, "trade price" and "deal time"
	// score BSE: two hits each.
	c := Classify(textGrid("Sheet1", []string{"Trade Price", "Deal Time", "Deal Size"}), "deals.csv")
	if c.Layout != NSE {
		t.Fatalf("tie break: layout = %s, want %s", c.Layout, NSE)
	}
}

func TestClassifyFallbackGuessed(t *testing.T) {
	c := Classify(textGrid("Sheet1", []string{"alpha", "beta", "gamma"}), "report.csv")
	if c.Layout != Holdings {
		t.Fatalf("fallback layout = %s, want %s", c.Layout, Holdings)
	}
	if !c.Guessed {
		t.Errorf("fallback classification must be flagged as guessed")
	}
	if c.HasHeader {
		t.Errorf("zero-score fallback must not claim a header row")
	}
}

func TestClassifyBlankSheet(t *testing.T) {
	c := Classify(textGrid("Sheet1", []string{"", ""}, []string{}), "report.csv")
	if c.Layout != Unknown {
		t.Fatalf("blank sheet layout = %s, want %s", c.Layout, Unknown)
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Trade   Date ", "trade date"},
		{"RATING / INDUSTRY", "rating / industry"},
		{"Name of\tthe Instrument", "name of the instrument"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := NormalizeHeader(tc.in); got != tc.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
