// backend/src/database/storage.go
package database

import (
	"database/sql"
	"fmt"

	"github.com/username/fundfolio/backend/src/models"
)

// UpsertStats reports one bulk write: rows created, rows whose fields
// changed, and rows that matched storage without modification (the
// "duplicates against storage" count).
type UpsertStats struct {
	Inserted  int
	Updated   int
	Unchanged int

	// Failures are per-row write errors. A failed row never rolls back the
	// rest of the batch; the caller surfaces these as rejections.
	Failures []string
}

// UpsertTrades writes a batch of canonical trades keyed by identity hash:
// insert on absent, overwrite fields on present. Callers deduplicate the
// batch first, so write order within the transaction cannot conflict. Rows
// that fail individually are recorded in the stats and the rest of the
// batch still commits; only a transaction-level failure is an error.
func UpsertTrades(trades []models.TradeRecord) (UpsertStats, error) {
	var stats UpsertStats
	if len(trades) == 0 {
		return stats, nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return stats, fmt.Errorf("error beginning trade upsert transaction: %w", err)
	}
	defer tx.Rollback()

	selectStmt, err := tx.Prepare(`SELECT exchange, symbol, security_name, isin, trade_date, trade_time, deal_type, client_name, rating, rating_group, quantity, price, amount_lacs, source_sheet FROM trades WHERE hash_id = ?`)
	if err != nil {
		return stats, fmt.Errorf("error preparing trade select: %w", err)
	}
	defer selectStmt.Close()

	insertStmt, err := tx.Prepare(`INSERT INTO trades (hash_id, exchange, symbol, security_name, isin, trade_date, trade_time, deal_type, client_name, rating, rating_group, quantity, price, amount_lacs, source_sheet) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return stats, fmt.Errorf("error preparing trade insert: %w", err)
	}
	defer insertStmt.Close()

	updateStmt, err := tx.Prepare(`UPDATE trades SET exchange = ?, symbol = ?, security_name = ?, isin = ?, trade_date = ?, trade_time = ?, deal_type = ?, client_name = ?, rating = ?, rating_group = ?, quantity = ?, price = ?, amount_lacs = ?, source_sheet = ? WHERE hash_id = ?`)
	if err != nil {
		return stats, fmt.Errorf("error preparing trade update: %w", err)
	}
	defer updateStmt.Close()

	for _, rec := range trades {
		var existing models.TradeRecord
		err := selectStmt.QueryRow(rec.HashID).Scan(
			&existing.Exchange, &existing.Symbol, &existing.SecurityName, &existing.ISIN,
			&existing.TradeDate, &existing.TradeTime, &existing.DealType, &existing.ClientName,
			&existing.Rating, &existing.RatingGroup,
			&existing.Quantity, &existing.Price, &existing.AmountLacs, &existing.SourceSheet)
		switch {
		case err == sql.ErrNoRows:
			if _, err := insertStmt.Exec(rec.HashID, rec.Exchange, rec.Symbol, rec.SecurityName, rec.ISIN,
				rec.TradeDate, rec.TradeTime, rec.DealType, rec.ClientName, rec.Rating, rec.RatingGroup,
				rec.Quantity, rec.Price, rec.AmountLacs, rec.SourceSheet); err != nil {
				stats.Failures = append(stats.Failures, fmt.Sprintf("trade write failed (hash %s): %v", rec.HashID, err))
				continue
			}
			stats.Inserted++
		case err != nil:
			stats.Failures = append(stats.Failures, fmt.Sprintf("trade read failed (hash %s): %v", rec.HashID, err))
		default:
			existing.HashID = rec.HashID
			if existing == rec {
				stats.Unchanged++
				continue
			}
			if _, err := updateStmt.Exec(rec.Exchange, rec.Symbol, rec.SecurityName, rec.ISIN,
				rec.TradeDate, rec.TradeTime, rec.DealType, rec.ClientName, rec.Rating, rec.RatingGroup,
				rec.Quantity, rec.Price, rec.AmountLacs, rec.SourceSheet, rec.HashID); err != nil {
				stats.Failures = append(stats.Failures, fmt.Sprintf("trade write failed (hash %s): %v", rec.HashID, err))
				continue
			}
			stats.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return UpsertStats{}, fmt.Errorf("error committing trade upsert: %w", err)
	}
	return stats, nil
}

// UpsertHoldings writes a batch of canonical holdings keyed by identity
// hash, same insert/overwrite/unchanged accounting as trades.
func UpsertHoldings(holdings []models.HoldingRecord) (UpsertStats, error) {
	var stats UpsertStats
	if len(holdings) == 0 {
		return stats, nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return stats, fmt.Errorf("error beginning holding upsert transaction: %w", err)
	}
	defer tx.Rollback()

	selectStmt, err := tx.Prepare(`SELECT scheme_name, instrument_name, isin, category, rating, rating_group, quantity, market_value_lacs, pct_to_nav, yield_pct, source_sheet FROM holdings WHERE hash_id = ?`)
	if err != nil {
		return stats, fmt.Errorf("error preparing holding select: %w", err)
	}
	defer selectStmt.Close()

	insertStmt, err := tx.Prepare(`INSERT INTO holdings (hash_id, scheme_name, instrument_name, isin, category, rating, rating_group, quantity, market_value_lacs, pct_to_nav, yield_pct, source_sheet) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return stats, fmt.Errorf("error preparing holding insert: %w", err)
	}
	defer insertStmt.Close()

	updateStmt, err := tx.Prepare(`UPDATE holdings SET scheme_name = ?, instrument_name = ?, isin = ?, category = ?, rating = ?, rating_group = ?, quantity = ?, market_value_lacs = ?, pct_to_nav = ?, yield_pct = ?, source_sheet = ? WHERE hash_id = ?`)
	if err != nil {
		return stats, fmt.Errorf("error preparing holding update: %w", err)
	}
	defer updateStmt.Close()

	for _, rec := range holdings {
		var existing models.HoldingRecord
		var qty, mv, pct, yld sql.NullFloat64
		err := selectStmt.QueryRow(rec.HashID).Scan(
			&existing.SchemeName, &existing.InstrumentName, &existing.ISIN, &existing.Category,
			&existing.Rating, &existing.RatingGroup, &qty, &mv, &pct, &yld, &existing.SourceSheet)
		switch {
		case err == sql.ErrNoRows:
			if _, err := insertStmt.Exec(rec.HashID, rec.SchemeName, rec.InstrumentName, rec.ISIN, rec.Category,
				rec.Rating, rec.RatingGroup, nullable(rec.Quantity), nullable(rec.MarketValue),
				nullable(rec.PctToNAV), nullable(rec.YieldPct), rec.SourceSheet); err != nil {
				stats.Failures = append(stats.Failures, fmt.Sprintf("holding write failed (hash %s): %v", rec.HashID, err))
				continue
			}
			stats.Inserted++
		case err != nil:
			stats.Failures = append(stats.Failures, fmt.Sprintf("holding read failed (hash %s): %v", rec.HashID, err))
		default:
			existing.HashID = rec.HashID
			existing.Quantity = fromNullable(qty)
			existing.MarketValue = fromNullable(mv)
			existing.PctToNAV = fromNullable(pct)
			existing.YieldPct = fromNullable(yld)
			if holdingsEqual(existing, rec) {
				stats.Unchanged++
				continue
			}
			if _, err := updateStmt.Exec(rec.SchemeName, rec.InstrumentName, rec.ISIN, rec.Category,
				rec.Rating, rec.RatingGroup, nullable(rec.Quantity), nullable(rec.MarketValue),
				nullable(rec.PctToNAV), nullable(rec.YieldPct), rec.SourceSheet, rec.HashID); err != nil {
				stats.Failures = append(stats.Failures, fmt.Sprintf("holding write failed (hash %s): %v", rec.HashID, err))
				continue
			}
			stats.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return UpsertStats{}, fmt.Errorf("error committing holding upsert: %w", err)
	}
	return stats, nil
}

// UpsertSecurities writes ratings-master entries keyed by ISIN.
func UpsertSecurities(securities []models.Security) (UpsertStats, error) {
	var stats UpsertStats
	if len(securities) == 0 {
		return stats, nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return stats, fmt.Errorf("error beginning securities upsert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO securities (isin, issuer, description, rating, agency, coupon, maturity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(isin) DO UPDATE SET issuer = excluded.issuer, description = excluded.description,
			rating = excluded.rating, agency = excluded.agency, coupon = excluded.coupon,
			maturity = excluded.maturity, updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return stats, fmt.Errorf("error preparing securities upsert: %w", err)
	}
	defer stmt.Close()

	for _, sec := range securities {
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(1) FROM securities WHERE isin = ?`, sec.ISIN).Scan(&exists); err != nil {
			stats.Failures = append(stats.Failures, fmt.Sprintf("security read failed (%s): %v", sec.ISIN, err))
			continue
		}
		if _, err := stmt.Exec(sec.ISIN, sec.Issuer, sec.Description, sec.Rating, sec.Agency, sec.Coupon, sec.Maturity); err != nil {
			stats.Failures = append(stats.Failures, fmt.Sprintf("security write failed (%s): %v", sec.ISIN, err))
			continue
		}
		if exists > 0 {
			stats.Updated++
		} else {
			stats.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return UpsertStats{}, fmt.Errorf("error committing securities upsert: %w", err)
	}
	return stats, nil
}

func holdingsEqual(a, b models.HoldingRecord) bool {
	return a.SchemeName == b.SchemeName && a.InstrumentName == b.InstrumentName &&
		a.ISIN == b.ISIN && a.Category == b.Category &&
		a.Rating == b.Rating && a.RatingGroup == b.RatingGroup &&
		floatPtrEqual(a.Quantity, b.Quantity) && floatPtrEqual(a.MarketValue, b.MarketValue) &&
		floatPtrEqual(a.PctToNAV, b.PctToNAV) && floatPtrEqual(a.YieldPct, b.YieldPct) &&
		a.SourceSheet == b.SourceSheet
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func fromNullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// RatingStore adapts the database to the rating cache's refresh interface.
type RatingStore struct{}

// MasterRatings loads ISIN -> rating from the securities master.
func (RatingStore) MasterRatings() (map[string]string, error) {
	return ratingMap(`SELECT isin, rating FROM securities WHERE rating IS NOT NULL AND rating != ''`)
}

// ObservedRatings loads ISIN -> rating from previously ingested holdings.
func (RatingStore) ObservedRatings() (map[string]string, error) {
	return ratingMap(`SELECT isin, rating FROM holdings WHERE rating IS NOT NULL AND rating != ''`)
}

func ratingMap(query string) (map[string]string, error) {
	rows, err := DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying ratings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var isin, rating string
		if err := rows.Scan(&isin, &rating); err != nil {
			return nil, fmt.Errorf("error scanning rating row: %w", err)
		}
		out[isin] = rating
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rating rows: %w", err)
	}
	return out, nil
}
