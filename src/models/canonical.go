// backend/src/models/canonical.go
package models

// TradeRecord is the unified representation of one exchange trade
// confirmation row. Every field carries its canonical type: dates are ISO
// (2006-01-02), times are HH:MM:SS, amounts are in lacs.
type TradeRecord struct {
	Exchange     string  `json:"exchange"` // "NSE" or "BSE"
	Symbol       string  `json:"symbol"`
	SecurityName string  `json:"security_name"`
	ISIN         string  `json:"isin"`
	TradeDate    string  `json:"trade_date"`
	TradeTime    string  `json:"trade_time"`
	DealType     string  `json:"deal_type"`
	ClientName   string  `json:"client_name"`
	Rating       string  `json:"rating"`
	RatingGroup  string  `json:"rating_group"`
	Quantity     float64 `json:"quantity"`
	Price        float64 `json:"price"`
	AmountLacs   float64 `json:"amount_lacs"`
	SourceSheet  string  `json:"source_sheet"`

	// HashID is the deterministic identity used for deduplication and the
	// idempotent upsert key in storage.
	HashID string `json:"hash_id"`
}

// HoldingRecord is one normalized portfolio holding from a custodian
// statement. Optional numerics are pointers so a cell that failed
// normalization stays visibly absent instead of collapsing to zero.
type HoldingRecord struct {
	SchemeName     string   `json:"scheme_name"`
	InstrumentName string   `json:"instrument_name"`
	ISIN           string   `json:"isin"`
	Category       string   `json:"category"`
	Rating         string   `json:"rating"`
	RatingGroup    string   `json:"rating_group"`
	Quantity       *float64 `json:"quantity,omitempty"`
	MarketValue    *float64 `json:"market_value_lacs,omitempty"`
	PctToNAV       *float64 `json:"pct_to_nav,omitempty"`
	YieldPct       *float64 `json:"yield_pct,omitempty"`
	SourceSheet    string   `json:"source_sheet"`

	HashID string `json:"hash_id"`
}

// Security is one entry of the ratings master list, keyed by ISIN.
type Security struct {
	ISIN        string  `json:"isin"`
	Issuer      string  `json:"issuer"`
	Description string  `json:"description"`
	Rating      string  `json:"rating"`
	Agency      string  `json:"agency"`
	Coupon      float64 `json:"coupon"`
	Maturity    string  `json:"maturity"`
}
