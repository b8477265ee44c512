// backend/src/ingest/pipeline.go
package ingest

import (
	"github.com/username/fundfolio/backend/src/layout"
	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/models"
	"github.com/username/fundfolio/backend/src/sheet"
)

// SheetResult is the canonical output of one sheet-processing pass.
type SheetResult struct {
	Classification layout.Classification
	Columns        layout.ColumnMap
	Trades         []models.TradeRecord
	Holdings       []models.HoldingRecord
	Securities     []models.Security
	Rejections     []models.RowRejection
}

// MappedFieldCount reports how many canonical fields resolved to columns,
// used to decide whether any sheet of a file was recognizable at all.
func (r *SheetResult) MappedFieldCount() int {
	return len(r.Columns)
}

// ProcessGrid runs the full per-sheet pipeline: classify, map columns, walk
// rows, normalize and build canonical records. Rows are processed strictly
// top to bottom because section state depends on row order. Row-level
// failures never abort the pass; they accumulate as rejections.
func ProcessGrid(g *sheet.Grid, fileName string) *SheetResult {
	res := &SheetResult{}
	res.Classification = layout.Classify(g, fileName)
	if res.Classification.Layout == layout.Unknown {
		return res
	}

	var dataStart int
	res.Columns, dataStart = layout.MapColumns(g, res.Classification)
	logger.L.Debug("columns mapped",
		"sheet", g.Name, "layout", string(res.Classification.Layout),
		"mappedFields", len(res.Columns), "dataStart", dataStart)

	switch res.Classification.Layout {
	case layout.NSE, layout.BSE:
		walkTrades(g, dataStart, res)
	case layout.RatingsMaster:
		walkSecurities(g, dataStart, res)
	case layout.Holdings:
		walkHoldings(g, dataStart, res)
	}
	return res
}

func walkTrades(g *sheet.Grid, dataStart int, res *SheetResult) {
	l := res.Classification.Layout
	for i := dataStart; i < len(g.Rows); i++ {
		row := g.Rows[i]
		if rowEmpty(row) {
			continue
		}
		rec, reason := buildTrade(row, res.Columns, l, g.Name)
		if reason != "" {
			res.reject(g.Name, i, reason)
			continue
		}
		res.Trades = append(res.Trades, rec)
	}
}

func walkSecurities(g *sheet.Grid, dataStart int, res *SheetResult) {
	for i := dataStart; i < len(g.Rows); i++ {
		row := g.Rows[i]
		if rowEmpty(row) {
			continue
		}
		sec, reason := buildSecurity(row, res.Columns)
		if reason != "" {
			res.reject(g.Name, i, reason)
			continue
		}
		res.Securities = append(res.Securities, sec)
	}
}

// walkHoldings is the section state machine. State is the current category,
// set by category-header rows and inherited by the data rows beneath them.
// Structurally valid rows seen before any category header are dropped but
// counted, never silently lost.
func walkHoldings(g *sheet.Grid, dataStart int, res *SheetResult) {
	category := ""
	for i := dataStart; i < len(g.Rows); i++ {
		row := g.Rows[i]
		if rowEmpty(row) {
			continue
		}
		rowText := g.RowText(i)

		// A category match with no ISIN in the row is a section header: it
		// changes state and produces no record.
		if cat, ok := matchCategory(rowText); ok && !rowHasValidISIN(row) {
			category = cat
			continue
		}
		// The footnote/total filter only applies to rows without an ISIN:
		// issuers like "Total Transport Systems Ltd" are data, not totals.
		if isIrrelevantRow(rowText) && !rowHasValidISIN(row) {
			continue
		}

		rec, reason := buildHolding(row, res.Columns, category, g.Name)
		if reason != "" {
			res.reject(g.Name, i, reason)
			continue
		}
		if category == "" {
			res.reject(g.Name, i, "data row before any category header")
			continue
		}
		res.Holdings = append(res.Holdings, rec)
	}
}

func (r *SheetResult) reject(sheetName string, row int, reason string) {
	r.Rejections = append(r.Rejections, models.RowRejection{Sheet: sheetName, Row: row, Reason: reason})
}

func rowEmpty(row []sheet.Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
