// backend/src/models/models.go
package models

// RowRejection records one dropped row so callers can see why a file shrank.
type RowRejection struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row"` // zero-based row index within the sheet
	Reason string `json:"reason"`
}

// ImportSummary is what the caller gets back for one ingested file. It is
// always returned, even on partial failure; only a totally unreadable file
// produces a hard error instead.
type ImportSummary struct {
	ImportID       string         `json:"import_id"`
	FileName       string         `json:"file_name"`
	DetectedLayout string         `json:"detected_layout"`
	Guessed        bool           `json:"layout_guessed"`
	Inserted       int            `json:"imported_count"`
	Updated        int            `json:"updated_count"`
	Duplicates     int            `json:"duplicate_count"`
	Total          int            `json:"total_processed"`
	Rejections     []RowRejection `json:"per_row_rejections"`
}

// PreviewResult mirrors ImportSummary for the dry-run path: the same
// pipeline output, with the records themselves instead of storage counts.
type PreviewResult struct {
	FileName       string          `json:"file_name"`
	DetectedLayout string          `json:"detected_layout"`
	Guessed        bool            `json:"layout_guessed"`
	Trades         []TradeRecord   `json:"trades"`
	Holdings       []HoldingRecord `json:"holdings"`
	Securities     []Security      `json:"securities"`
	Rejections     []RowRejection  `json:"per_row_rejections"`
}
