// backend/src/layout/columns.go
package layout

import (
	"strings"

	"github.com/username/fundfolio/backend/src/sheet"
	"github.com/username/fundfolio/backend/src/utils"
)

// fieldPattern binds one canonical field to its ordered header patterns,
// most specific first. The first pattern that matches any header cell wins
// the field and mapping stops for that field.
type fieldPattern struct {
	field    string
	patterns []string
}

var nsePatterns = []fieldPattern{
	{FieldISIN, []string{"isin"}},
	{FieldSymbol, []string{"symbol"}},
	{FieldSecurityName, []string{"security name", "security"}},
	{FieldTradeDate, []string{"trade date", "date"}},
	{FieldTradeTime, []string{"trade time", "time"}},
	{FieldQuantity, []string{"deal size", "quantity of shares", "quantity"}},
	{FieldPrice, []string{"trade price", "price"}},
	{FieldDealType, []string{"buyer deal type", "seller deal type", "deal type"}},
	{FieldClientName, []string{"client name", "client"}},
}

var bsePatterns = []fieldPattern{
	{FieldISIN, []string{"isin"}},
	{FieldSymbol, []string{"scrip code", "scrip id"}},
	{FieldSecurityName, []string{"scrip name", "security name"}},
	{FieldTradeDate, []string{"deal date", "trade date", "date"}},
	{FieldTradeTime, []string{"deal time", "trade time", "time"}},
	{FieldQuantity, []string{"quantity"}},
	{FieldPrice, []string{"trade price", "deal price", "price"}},
	{FieldDealType, []string{"deal type"}},
	{FieldClientName, []string{"client name", "client"}},
}

var ratingsMasterPatterns = []fieldPattern{
	{FieldISIN, []string{"isin"}},
	{FieldIssuer, []string{"issuer name", "issuer"}},
	{FieldDescription, []string{"security description", "description", "security name"}},
	{FieldAgency, []string{"rating agency", "agency"}},
	{FieldRating, []string{"rating"}},
	{FieldCoupon, []string{"coupon"}},
	{FieldMaturity, []string{"maturity date", "maturity"}},
}

var holdingsPatterns = []fieldPattern{
	{FieldSecurityName, []string{"name of the instrument", "name of instrument", "instrument name", "name"}},
	{FieldISIN, []string{"isin"}},
	{FieldRating, []string{"rating / industry", "rating/industry", "industry / rating", "rating"}},
	{FieldQuantity, []string{"quantity"}},
	{FieldMarketValue, []string{"market value", "market/fair value", "value (rs", "amount"}},
	{FieldPctToNAV, []string{"% to nav", "% to net assets", "% of nav", "% age of nav"}},
	{FieldYield, []string{"yield of the instrument", "yield to maturity", "ytm", "yield"}},
	{FieldCoupon, []string{"coupon"}},
}

func patternsFor(l Layout) []fieldPattern {
	switch l {
	case NSE:
		return nsePatterns
	case BSE:
		return bsePatterns
	case RatingsMaster:
		return ratingsMasterPatterns
	case Holdings:
		return holdingsPatterns
	default:
		return nil
	}
}

// headerWindow is how many leading rows are scanned for a usable header row.
// Holdings statements stack title and disclosure rows above their headers.
const headerWindow = 8

// MapColumns resolves the layout's canonical fields to column indexes. The
// first scanned row that yields at least two mapped fields is taken as the
// header row; the row after it may supply sub-labels for fields the header
// row left unmapped. The second return value is the first data row index.
func MapColumns(g *sheet.Grid, c Classification) (ColumnMap, int) {
	patterns := patternsFor(c.Layout)
	if patterns == nil {
		return ColumnMap{}, c.HeaderRow
	}

	start := c.HeaderRow
	if start < 0 {
		start = 0
	}
	end := start + headerWindow
	if end > len(g.Rows) {
		end = len(g.Rows)
	}

	for row := start; row < end; row++ {
		m := mapRow(g, row, patterns, ColumnMap{})
		if len(m) < 2 {
			continue
		}
		dataStart := row + 1
		// A sub-label row directly under the header may carry the more
		// specific captions of merged header cells. A row with an
		// ISIN-shaped cell is data and never merged.
		if row+1 < len(g.Rows) && !rowHasISIN(g.Rows[row+1]) {
			before := len(m)
			m = mapRow(g, row+1, patterns, m)
			if len(m) > before {
				dataStart = row + 2
			}
		}
		return m, dataStart
	}

	return ColumnMap{}, start
}

// mapRow tries every pattern of every still-unmapped field against the
// normalized cells of one row, first-match-wins.
func mapRow(g *sheet.Grid, row int, patterns []fieldPattern, m ColumnMap) ColumnMap {
	cells := g.Rows[row]
	normalized := make([]string, len(cells))
	for i, c := range cells {
		normalized[i] = NormalizeHeader(c.Raw)
	}

	for _, fp := range patterns {
		if m.Has(fp.field) {
			continue
		}
	match:
		for _, pat := range fp.patterns {
			for col, cell := range normalized {
				if cell == "" {
					continue
				}
				if strings.Contains(cell, pat) && !columnTaken(m, col) {
					m[fp.field] = col
					break match
				}
			}
		}
	}
	return m
}

func rowHasISIN(row []sheet.Cell) bool {
	for _, c := range row {
		if utils.IsValidISIN(c.Text()) {
			return true
		}
	}
	return false
}

func columnTaken(m ColumnMap, col int) bool {
	for _, v := range m {
		if v == col {
			return true
		}
	}
	return false
}
