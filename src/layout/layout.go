// backend/src/layout/layout.go
package layout

// Layout identifies one of the fixed, known source file shapes. It is
// assigned once per sheet and immutable thereafter; downstream stages pick
// their pattern tables and section rules off it.
type Layout string

const (
	NSE           Layout = "NSE"
	BSE           Layout = "BSE"
	RatingsMaster Layout = "RATINGS_MASTER"
	Holdings      Layout = "HOLDINGS"
	Unknown       Layout = "UNKNOWN"
)

// AmountInWholeRupees reports whether the layout quotes amounts in whole
// rupees that must be divided down to lacs. This is a property of the
// layout, never inferred from a value's magnitude.
func (l Layout) AmountInWholeRupees() bool {
	return l == NSE || l == BSE
}

// IsTrade reports whether the layout yields trade confirmations.
func (l Layout) IsTrade() bool {
	return l == NSE || l == BSE
}

// Classification is the classifier's verdict for one sheet. Guessed marks
// the permissive fallback path so callers can choose to reject
// low-confidence results instead of silently processing them.
type Classification struct {
	Layout    Layout `json:"layout"`
	Score     int    `json:"score"`
	Guessed   bool   `json:"guessed"`
	HasHeader bool   `json:"has_header"`
	HeaderRow int    `json:"header_row"`
}

// Canonical field names resolved by the column mapper.
const (
	FieldISIN         = "isin"
	FieldSymbol       = "symbol"
	FieldSecurityName = "securityName"
	FieldTradeDate    = "tradeDate"
	FieldTradeTime    = "tradeTime"
	FieldQuantity     = "quantity"
	FieldPrice        = "price"
	FieldAmount       = "amount"
	FieldDealType     = "dealType"
	FieldClientName   = "clientName"
	FieldRating       = "rating"
	FieldAgency       = "agency"
	FieldIssuer       = "issuer"
	FieldDescription  = "description"
	FieldCoupon       = "coupon"
	FieldMaturity     = "maturity"
	FieldPctToNAV     = "pctToNav"
	FieldYield        = "yield"
	FieldMarketValue  = "marketValue"
)

// ColumnMap resolves canonical field names to zero-based column indexes
// within one grid. A field absent from the source layout is simply
// unmapped, not an error.
type ColumnMap map[string]int

// Has reports whether the field was resolved to a source column.
func (m ColumnMap) Has(field string) bool {
	_, ok := m[field]
	return ok
}
