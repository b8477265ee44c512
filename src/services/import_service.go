// backend/src/services/import_service.go
package services

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/username/fundfolio/backend/src/database"
	"github.com/username/fundfolio/backend/src/ingest"
	"github.com/username/fundfolio/backend/src/layout"
	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/models"
	"github.com/username/fundfolio/backend/src/ratings"
	"github.com/username/fundfolio/backend/src/sheet"
)

const ckLatestImportSummary = "latest_import_summary"

type importServiceImpl struct {
	ratingCache *ratings.Cache
	resultCache *gocache.Cache
	summaryTTL  time.Duration
}

// NewImportService wires the reconciler over the injected rating cache and
// result cache.
func NewImportService(ratingCache *ratings.Cache, resultCache *gocache.Cache, summaryTTL time.Duration) ImportService {
	return &importServiceImpl{
		ratingCache: ratingCache,
		resultCache: resultCache,
		summaryTTL:  summaryTTL,
	}
}

// fileResult is the concatenated pipeline output of every sheet in a file.
type fileResult struct {
	classification layout.Classification
	trades         []models.TradeRecord
	holdings       []models.HoldingRecord
	securities     []models.Security
	rejections     []models.RowRejection
	mappedFields   int
}

// runPipeline decodes and processes every sheet of one file. Row-level
// failures accumulate; only an unreadable container or a file in which no
// sheet mapped any columns is an error.
func (s *importServiceImpl) runPipeline(file io.Reader, fileName string) (*fileResult, error) {
	grids, err := sheet.Decode(file, fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	res := &fileResult{}
	first := true
	for _, g := range grids {
		sr := ingest.ProcessGrid(g, fileName)
		if sr.Classification.Layout == layout.Unknown {
			continue
		}
		if first {
			res.classification = sr.Classification
			first = false
		}
		res.trades = append(res.trades, sr.Trades...)
		res.holdings = append(res.holdings, sr.Holdings...)
		res.securities = append(res.securities, sr.Securities...)
		res.rejections = append(res.rejections, sr.Rejections...)
		res.mappedFields += sr.MappedFieldCount()
	}

	if first || res.mappedFields < 2 {
		return nil, fmt.Errorf("%w: %s", ErrNoRecognizableLayout, fileName)
	}
	return res, nil
}

func (s *importServiceImpl) ImportFile(file io.Reader, fileName string) (*models.ImportSummary, error) {
	start := time.Now()
	logger.L.Info("ImportFile START", "file", fileName)

	res, err := s.runPipeline(file, fileName)
	if err != nil {
		return nil, err
	}

	summary := &models.ImportSummary{
		ImportID:       uuid.NewString(),
		FileName:       fileName,
		DetectedLayout: string(res.classification.Layout),
		Guessed:        res.classification.Guessed,
		Rejections:     res.rejections,
	}

	trades, tradeDups := dedupeTrades(res.trades)
	holdings, holdingDups := dedupeHoldings(res.holdings)
	summary.Duplicates = tradeDups + holdingDups

	s.enrichTrades(trades)
	s.enrichHoldings(holdings)

	tradeStats, err := database.UpsertTrades(trades)
	if err != nil {
		// Transaction-level failure: nothing committed, so the stats are
		// discarded and the whole batch surfaces as one rejection.
		logger.L.Error("trade upsert failed", "file", fileName, "error", err)
		tradeStats = database.UpsertStats{}
		summary.Rejections = append(summary.Rejections, models.RowRejection{
			Sheet: fileName, Row: -1, Reason: fmt.Sprintf("trade storage write failed: %v", err),
		})
	}
	holdingStats, err := database.UpsertHoldings(holdings)
	if err != nil {
		logger.L.Error("holding upsert failed", "file", fileName, "error", err)
		holdingStats = database.UpsertStats{}
		summary.Rejections = append(summary.Rejections, models.RowRejection{
			Sheet: fileName, Row: -1, Reason: fmt.Sprintf("holding storage write failed: %v", err),
		})
	}

	var secStats database.UpsertStats
	if len(res.securities) > 0 {
		secStats, err = database.UpsertSecurities(res.securities)
		if err != nil {
			logger.L.Error("securities upsert failed", "file", fileName, "error", err)
			secStats = database.UpsertStats{}
			summary.Rejections = append(summary.Rejections, models.RowRejection{
				Sheet: fileName, Row: -1, Reason: fmt.Sprintf("securities storage write failed: %v", err),
			})
		} else if err := s.ratingCache.Refresh(); err != nil {
			logger.L.Error("rating cache refresh failed after master upsert", "error", err)
		}
	}

	// Row-level write failures left the rest of the batch committed; each
	// one is reported individually.
	for _, reason := range tradeStats.Failures {
		summary.Rejections = append(summary.Rejections, models.RowRejection{Sheet: fileName, Row: -1, Reason: reason})
	}
	for _, reason := range holdingStats.Failures {
		summary.Rejections = append(summary.Rejections, models.RowRejection{Sheet: fileName, Row: -1, Reason: reason})
	}
	for _, reason := range secStats.Failures {
		summary.Rejections = append(summary.Rejections, models.RowRejection{Sheet: fileName, Row: -1, Reason: reason})
	}

	summary.Inserted = tradeStats.Inserted + holdingStats.Inserted + secStats.Inserted
	summary.Updated = tradeStats.Updated + holdingStats.Updated + secStats.Updated
	summary.Duplicates += tradeStats.Unchanged + holdingStats.Unchanged + secStats.Unchanged
	summary.Total = len(res.trades) + len(res.holdings) + len(res.securities) + len(res.rejections)

	s.resultCache.Set(ckLatestImportSummary, summary, s.summaryTTL)
	logger.L.Info("ImportFile END",
		"file", fileName, "layout", summary.DetectedLayout, "inserted", summary.Inserted,
		"updated", summary.Updated, "duplicates", summary.Duplicates,
		"rejections", len(summary.Rejections), "duration", time.Since(start))
	return summary, nil
}

func (s *importServiceImpl) PreviewFile(file io.Reader, fileName string) (*models.PreviewResult, error) {
	res, err := s.runPipeline(file, fileName)
	if err != nil {
		return nil, err
	}

	trades, _ := dedupeTrades(res.trades)
	holdings, _ := dedupeHoldings(res.holdings)
	s.enrichTrades(trades)
	s.enrichHoldings(holdings)

	return &models.PreviewResult{
		FileName:       fileName,
		DetectedLayout: string(res.classification.Layout),
		Guessed:        res.classification.Guessed,
		Trades:         trades,
		Holdings:       holdings,
		Securities:     res.securities,
		Rejections:     res.rejections,
	}, nil
}

func (s *importServiceImpl) ImportRatingsMaster(file io.Reader, fileName string) (*models.ImportSummary, error) {
	logger.L.Info("ImportRatingsMaster START", "file", fileName)

	res, err := s.runPipeline(file, fileName)
	if err != nil {
		return nil, err
	}
	if res.classification.Layout != layout.RatingsMaster || len(res.securities) == 0 {
		return nil, fmt.Errorf("%w: expected a ratings master file, got %s", ErrNoRecognizableLayout, res.classification.Layout)
	}

	stats, err := database.UpsertSecurities(res.securities)
	if err != nil {
		return nil, fmt.Errorf("error upserting securities: %w", err)
	}
	if err := s.ratingCache.Refresh(); err != nil {
		logger.L.Error("rating cache refresh failed after master upload", "error", err)
	}

	summary := &models.ImportSummary{
		ImportID:       uuid.NewString(),
		FileName:       fileName,
		DetectedLayout: string(layout.RatingsMaster),
		Inserted:       stats.Inserted,
		Updated:        stats.Updated,
		Duplicates:     stats.Unchanged,
		Total:          len(res.securities) + len(res.rejections),
		Rejections:     res.rejections,
	}
	for _, reason := range stats.Failures {
		summary.Rejections = append(summary.Rejections, models.RowRejection{Sheet: fileName, Row: -1, Reason: reason})
	}
	logger.L.Info("ImportRatingsMaster END", "file", fileName, "inserted", stats.Inserted, "updated", stats.Updated)
	return summary, nil
}

func (s *importServiceImpl) LatestImportSummary() (*models.ImportSummary, bool) {
	if v, found := s.resultCache.Get(ckLatestImportSummary); found {
		return v.(*models.ImportSummary), true
	}
	return nil, false
}

// enrichTrades resolves the rating and coarse rating group of every trade
// through the cache. Exchange confirmations never carry a rating of their
// own, so every record goes through the lookup; misses stay unrated.
func (s *importServiceImpl) enrichTrades(trades []models.TradeRecord) {
	for i := range trades {
		rating, group, ok := s.ratingCache.Lookup(trades[i].ISIN)
		if ok {
			trades[i].Rating = rating
		}
		trades[i].RatingGroup = group
	}
}

// enrichHoldings resolves missing ratings through the cache (master first,
// observed fallback) and attaches the coarse rating group to every record.
func (s *importServiceImpl) enrichHoldings(holdings []models.HoldingRecord) {
	for i := range holdings {
		if holdings[i].Rating == "" {
			if rating, group, ok := s.ratingCache.Lookup(holdings[i].ISIN); ok {
				holdings[i].Rating = rating
				holdings[i].RatingGroup = group
				continue
			}
		}
		holdings[i].RatingGroup = ratings.Group(holdings[i].Rating)
	}
}

// dedupeTrades collapses in-batch duplicates by identity, first occurrence
// wins, and counts what it dropped.
func dedupeTrades(in []models.TradeRecord) ([]models.TradeRecord, int) {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	dups := 0
	for _, rec := range in {
		if seen[rec.HashID] {
			dups++
			continue
		}
		seen[rec.HashID] = true
		out = append(out, rec)
	}
	return out, dups
}

func dedupeHoldings(in []models.HoldingRecord) ([]models.HoldingRecord, int) {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	dups := 0
	for _, rec := range in {
		if seen[rec.HashID] {
			dups++
			continue
		}
		seen[rec.HashID] = true
		out = append(out, rec)
	}
	return out, dups
}
