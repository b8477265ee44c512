// backend/src/database/storage_test.go
package database

import (
	"testing"

	"github.com/username/fundfolio/backend/src/models"
)

func openTestDB(t *testing.T, name string) {
	t.Helper()
	InitDB("file:" + name + "?mode=memory&cache=shared")
	t.Cleanup(func() { DB.Close() })
}

func sampleTrade(hash string) models.TradeRecord {
	return models.TradeRecord{
		HashID: hash, Exchange: "NSE", ISIN: "INE467B01029", SecurityName: "Tata Steel",
		TradeDate: "2024-01-15", TradeTime: "09:30:00", DealType: "DIRECT",
		RatingGroup: "UNRATED", Quantity: 500000, Price: 101.25, AmountLacs: 5,
		SourceSheet: "Sheet1",
	}
}

func TestUpsertTradesStats(t *testing.T) {
	openTestDB(t, "storage_trade_stats")

	rec := sampleTrade("h1")
	stats, err := UpsertTrades([]models.TradeRecord{rec})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if stats.Inserted != 1 || stats.Updated != 0 || stats.Unchanged != 0 {
		t.Fatalf("first upsert stats = %+v, want one insert", stats)
	}

	stats, err = UpsertTrades([]models.TradeRecord{rec})
	if err != nil {
		t.Fatalf("identical upsert: %v", err)
	}
	if stats.Unchanged != 1 || stats.Inserted != 0 || stats.Updated != 0 {
		t.Fatalf("identical upsert stats = %+v, want one unchanged", stats)
	}

	rec.Price = 102.50
	stats, err = UpsertTrades([]models.TradeRecord{rec})
	if err != nil {
		t.Fatalf("modified upsert: %v", err)
	}
	if stats.Updated != 1 || stats.Inserted != 0 || stats.Unchanged != 0 {
		t.Fatalf("modified upsert stats = %+v, want one update", stats)
	}

	var price float64
	if err := DB.QueryRow(`SELECT price FROM trades WHERE hash_id = ?`, "h1").Scan(&price); err != nil {
		t.Fatalf("reading trade back: %v", err)
	}
	if price != 102.50 {
		t.Errorf("stored price = %v, want 102.50", price)
	}
}

// A row that fails to write must not take the rest of the batch down with
// it: the other rows commit and the failure is reported in the stats.
func TestUpsertTradesRowFailureKeepsRest(t *testing.T) {
	openTestDB(t, "storage_trade_rowfail")

	// Recreate the table with a stricter constraint so a single mid-batch
	// row can be made to fail.
	if _, err := DB.Exec(`DROP TABLE trades`); err != nil {
		t.Fatalf("dropping trades: %v", err)
	}
	if _, err := DB.Exec(`
	CREATE TABLE trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hash_id TEXT NOT NULL UNIQUE,
		exchange TEXT NOT NULL,
		symbol TEXT,
		security_name TEXT,
		isin TEXT,
		trade_date TEXT NOT NULL,
		trade_time TEXT,
		deal_type TEXT,
		client_name TEXT,
		rating TEXT,
		rating_group TEXT,
		quantity REAL,
		price REAL,
		amount_lacs REAL CHECK (amount_lacs >= 0),
		source_sheet TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		t.Fatalf("recreating trades: %v", err)
	}

	bad := sampleTrade("h-bad")
	bad.AmountLacs = -1

	stats, err := UpsertTrades([]models.TradeRecord{sampleTrade("h1"), bad, sampleTrade("h2")})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if stats.Inserted != 2 {
		t.Errorf("inserted = %d, want 2", stats.Inserted)
	}
	if len(stats.Failures) != 1 {
		t.Fatalf("failures = %v, want exactly one", stats.Failures)
	}

	var count int
	if err := DB.QueryRow(`SELECT COUNT(1) FROM trades`).Scan(&count); err != nil {
		t.Fatalf("counting trades: %v", err)
	}
	if count != 2 {
		t.Errorf("trades in storage = %d, want 2 (batch must survive the bad row)", count)
	}
}

func TestUpsertHoldingsUnchangedWithAbsentNumerics(t *testing.T) {
	openTestDB(t, "storage_holding_nil")

	mv := 950.5
	rec := models.HoldingRecord{
		HashID: "hh1", SchemeName: "Portfolio", InstrumentName: "9.0% Bond",
		ISIN: "INE040A01034", Category: "Debt Instruments", Rating: "CRISIL AAA",
		RatingGroup: "AAA", MarketValue: &mv, SourceSheet: "Portfolio",
	}

	if stats, err := UpsertHoldings([]models.HoldingRecord{rec}); err != nil || stats.Inserted != 1 {
		t.Fatalf("first upsert = (%+v, %v), want one insert", stats, err)
	}
	stats, err := UpsertHoldings([]models.HoldingRecord{rec})
	if err != nil {
		t.Fatalf("identical upsert: %v", err)
	}
	if stats.Unchanged != 1 {
		t.Fatalf("stats = %+v, want one unchanged (nil numerics must round-trip)", stats)
	}

	qty := 100.0
	rec.Quantity = &qty
	stats, err = UpsertHoldings([]models.HoldingRecord{rec})
	if err != nil {
		t.Fatalf("modified upsert: %v", err)
	}
	if stats.Updated != 1 {
		t.Fatalf("stats = %+v, want one update after filling a numeric", stats)
	}
}
