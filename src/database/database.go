package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/fundfolio/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	logger.L.Info("Checking database migrations", "databasePath", databasePath)
	migrateTable("holdings", map[string]string{
		"rating_group": "TEXT",
		"yield_pct":    "REAL",
	})
	migrateTable("trades", map[string]string{
		"rating":       "TEXT",
		"rating_group": "TEXT",
	})

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS trades (
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
		amount_lacs REAL,
		source_sheet TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS holdings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hash_id TEXT NOT NULL UNIQUE,
		scheme_name TEXT NOT NULL,
		instrument_name TEXT NOT NULL,
		isin TEXT NOT NULL,
		category TEXT NOT NULL,
		rating TEXT,
		rating_group TEXT,
		quantity REAL,
		market_value_lacs REAL,
		pct_to_nav REAL,
		yield_pct REAL,
		source_sheet TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS securities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		isin TEXT NOT NULL UNIQUE,
		issuer TEXT,
		description TEXT,
		rating TEXT,
		agency TEXT,
		coupon REAL,
		maturity TEXT,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		logger.L.Error("failed to create tables", "error", err)
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	logger.L.Info("Database tables ensured/created.")
}

// migrateTable backfills columns added after the table first shipped.
func migrateTable(table string, columns map[string]string) {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			logger.L.Info("Table does not exist, no migration needed as table will be created.", "table", table)
			return
		}
		logger.L.Error("Error checking for table", "table", table, "error", err)
		return
	}

	rows, err := DB.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		logger.L.Error("Error querying table schema", "table", table, "error", err)
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			logger.L.Error("Error scanning column info", "table", table, "error", err)
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		logger.L.Error("Error iterating over column info", "table", table, "error", err)
		return
	}

	for name, dataType := range columns {
		if columnExists[name] {
			continue
		}
		if _, err := DB.Exec("ALTER TABLE " + table + " ADD COLUMN " + name + " " + dataType); err != nil {
			logger.L.Error("Error adding column", "table", table, "column", name, "error", err)
		} else {
			logger.L.Info("Added column", "table", table, "column", name)
		}
	}
}
