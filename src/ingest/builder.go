// backend/src/ingest/builder.go
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/username/fundfolio/backend/src/layout"
	"github.com/username/fundfolio/backend/src/models"
	"github.com/username/fundfolio/backend/src/normalize"
	"github.com/username/fundfolio/backend/src/sheet"
	"github.com/username/fundfolio/backend/src/utils"
)

// cellAt fetches the mapped cell for a canonical field, or a zero cell when
// the field is unmapped for this layout.
func cellAt(row []sheet.Cell, m layout.ColumnMap, field string) sheet.Cell {
	col, ok := m[field]
	if !ok || col < 0 || col >= len(row) {
		return sheet.Cell{}
	}
	return row[col]
}

// placeholderName rejects instrument names that are really footnote or
// placeholder tokens: a lone dash, or a fully bracketed note marker.
func placeholderName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == "-" || name == "--" {
		return true
	}
	if strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")") {
		return true
	}
	if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		return true
	}
	return false
}

// buildTrade assembles one canonical trade record from a mapped row.
// Validation short-circuits: instrument code first, then name.
func buildTrade(row []sheet.Cell, m layout.ColumnMap, l layout.Layout, sourceSheet string) (models.TradeRecord, string) {
	isin := strings.ToUpper(cellAt(row, m, layout.FieldISIN).Text())
	symbol := cellAt(row, m, layout.FieldSymbol).Text()
	if isin == "" && symbol == "" {
		return models.TradeRecord{}, "missing instrument code"
	}
	if isin != "" && !utils.IsValidISIN(isin) {
		return models.TradeRecord{}, fmt.Sprintf("invalid ISIN %q", isin)
	}

	// An unmapped name column is structurally absent for the layout, not an
	// error; a mapped one must not be a footnote or placeholder token.
	name := cellAt(row, m, layout.FieldSecurityName).Text()
	if m.Has(layout.FieldSecurityName) && placeholderName(name) && placeholderName(symbol) {
		return models.TradeRecord{}, "missing instrument name"
	}
	if name == "" {
		name = symbol
	}

	rec := models.TradeRecord{
		Exchange:     string(l),
		Symbol:       symbol,
		SecurityName: name,
		ISIN:         isin,
		SourceSheet:  sourceSheet,
	}

	rec.TradeDate, _ = normalize.Date(cellAt(row, m, layout.FieldTradeDate))
	rec.TradeTime, _ = normalize.Time(cellAt(row, m, layout.FieldTradeTime))
	rec.DealType = strings.ToUpper(cellAt(row, m, layout.FieldDealType).Text())
	rec.ClientName = cellAt(row, m, layout.FieldClientName).Text()

	if qty, ok := normalize.Number(cellAt(row, m, layout.FieldQuantity)); ok {
		rec.Quantity = qty
	}
	if price, ok := normalize.Number(cellAt(row, m, layout.FieldPrice)); ok {
		rec.Price = price
	}

	// NSE reports the deal size as a rupee amount; BSE exposes quantity and
	// price and the amount is derived from them.
	switch l {
	case layout.NSE:
		rec.AmountLacs = utils.RoundFloat(normalize.AmountLacs(rec.Quantity, l), 6)
	case layout.BSE:
		rec.AmountLacs = utils.RoundFloat(normalize.AmountLacs(rec.Quantity*rec.Price, l), 6)
	}

	rec.HashID = TradeIdentity(rec)
	return rec, ""
}

// buildHolding assembles one canonical holding record. Validation order:
// (a) ISIN present and shaped, (b) at least one of quantity / market value /
// percent-of-fund present, (c) instrument name present and not a
// placeholder token.
func buildHolding(row []sheet.Cell, m layout.ColumnMap, category, sourceSheet string) (models.HoldingRecord, string) {
	isin := strings.ToUpper(cellAt(row, m, layout.FieldISIN).Text())
	if !utils.IsValidISIN(isin) {
		return models.HoldingRecord{}, fmt.Sprintf("invalid ISIN %q", isin)
	}

	rec := models.HoldingRecord{
		SchemeName:  sourceSheet,
		ISIN:        isin,
		SourceSheet: sourceSheet,
	}

	if qty, ok := normalize.Number(cellAt(row, m, layout.FieldQuantity)); ok {
		rec.Quantity = &qty
	}
	if mv, ok := normalize.Number(cellAt(row, m, layout.FieldMarketValue)); ok {
		rec.MarketValue = &mv
	}
	if pct, ok := normalize.Percent(cellAt(row, m, layout.FieldPctToNAV)); ok {
		rec.PctToNAV = &pct
	}
	if rec.Quantity == nil && rec.MarketValue == nil && rec.PctToNAV == nil {
		return models.HoldingRecord{}, "no quantity, market value or % to NAV"
	}

	rec.InstrumentName = cellAt(row, m, layout.FieldSecurityName).Text()
	if placeholderName(rec.InstrumentName) {
		return models.HoldingRecord{}, "missing or placeholder instrument name"
	}

	if y, ok := normalize.Percent(cellAt(row, m, layout.FieldYield)); ok {
		rec.YieldPct = &y
	}
	rec.Rating = cellAt(row, m, layout.FieldRating).Text()
	rec.Category = applyREITOverride(rec.InstrumentName, category)
	rec.HashID = HoldingIdentity(rec)
	return rec, ""
}

// buildSecurity assembles one ratings-master entry.
func buildSecurity(row []sheet.Cell, m layout.ColumnMap) (models.Security, string) {
	isin := strings.ToUpper(cellAt(row, m, layout.FieldISIN).Text())
	if !utils.IsValidISIN(isin) {
		return models.Security{}, fmt.Sprintf("invalid ISIN %q", isin)
	}
	sec := models.Security{
		ISIN:        isin,
		Issuer:      cellAt(row, m, layout.FieldIssuer).Text(),
		Description: cellAt(row, m, layout.FieldDescription).Text(),
		Rating:      cellAt(row, m, layout.FieldRating).Text(),
		Agency:      cellAt(row, m, layout.FieldAgency).Text(),
	}
	if c, ok := normalize.Percent(cellAt(row, m, layout.FieldCoupon)); ok {
		sec.Coupon = c
	}
	sec.Maturity, _ = normalize.Date(cellAt(row, m, layout.FieldMaturity))
	return sec, ""
}

// TradeIdentity derives the deterministic identity key of a trade from its
// already-normalized fields. Two ingestions of overlapping files collapse
// to the same identity.
func TradeIdentity(rec models.TradeRecord) string {
	instrument := rec.ISIN
	if instrument == "" {
		instrument = rec.Symbol
	}
	input := fmt.Sprintf("%s|%s|%s|%s|%f|%f",
		rec.Exchange, instrument, rec.TradeDate, rec.DealType, rec.AmountLacs, rec.Price)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// HoldingIdentity keys a holding by scheme, instrument and category.
func HoldingIdentity(rec models.HoldingRecord) string {
	input := fmt.Sprintf("%s|%s|%s", rec.SchemeName, rec.ISIN, rec.Category)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}
