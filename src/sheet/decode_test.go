// backend/src/sheet/decode_test.go
package sheet

import (
	"strings"
	"testing"
)

func TestDecodeCSV(t *testing.T) {
	input := "ISIN,Quantity,Price\nINE467B01029,500000,101.25\nnote only\n"
	g, err := DecodeCSV(strings.NewReader(input), "deals")
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if g.Name != "deals" {
		t.Errorf("grid name = %q, want deals", g.Name)
	}
	if len(g.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(g.Rows))
	}

	// Ragged rows survive as-is.
	if len(g.Rows[2]) != 1 {
		t.Errorf("short row length = %d, want 1", len(g.Rows[2]))
	}

	qty := g.Cell(1, 1)
	if !qty.IsNumber || qty.Number != 500000 {
		t.Errorf("quantity cell = %+v, want numeric 500000", qty)
	}
	if isin := g.Cell(1, 0); isin.IsNumber {
		t.Errorf("isin cell typed numeric: %+v", isin)
	}
	// CSV carries no display formats.
	if qty.PercentFmt {
		t.Errorf("csv cell must not carry a percent hint")
	}
}

func TestDecodeDispatchesOnExtension(t *testing.T) {
	grids, err := Decode(strings.NewReader("a,b\n1,2\n"), "report.CSV")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(grids) != 1 {
		t.Fatalf("grids = %d, want 1", len(grids))
	}
	if grids[0].Name != "report" {
		t.Errorf("grid name = %q, want file stem", grids[0].Name)
	}

	if _, err := Decode(strings.NewReader("not a zip container"), "report.xlsx"); err == nil {
		t.Error("garbage xlsx must fail to open")
	}
}

func TestGridHelpers(t *testing.T) {
	g := &Grid{Name: "s", Rows: [][]Cell{
		{{Raw: "  "}, {Raw: ""}},
		{{Raw: "Equity Instruments"}, {Raw: "INE009A01021"}},
	}}

	if got := g.FirstNonEmptyRow(); got != 1 {
		t.Errorf("FirstNonEmptyRow = %d, want 1", got)
	}
	if got := g.RowText(1); got != "equity instruments ine009a01021" {
		t.Errorf("RowText = %q", got)
	}
	if c := g.Cell(5, 5); !c.IsEmpty() {
		t.Errorf("out-of-range cell = %+v, want empty", c)
	}
	if !g.Rows[0][0].IsEmpty() {
		t.Error("whitespace-only cell must read as empty")
	}
}
