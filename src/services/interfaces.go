// backend/src/services/interfaces.go
package services

import (
	"errors"
	"io"

	"github.com/username/fundfolio/backend/src/models"
)

var (
	// ErrParsingFailed wraps unreadable containers and malformed sheets.
	ErrParsingFailed = errors.New("file parsing failed")
	// ErrNoRecognizableLayout means no sheet of the file mapped enough
	// columns under any known layout to process at all.
	ErrNoRecognizableLayout = errors.New("no recognizable layout in file")
)

// ImportService is the ingestion surface the handlers consume.
type ImportService interface {
	// ImportFile runs the full pipeline over one uploaded file and
	// persists the results. A summary is always produced unless the file
	// itself is unreadable.
	ImportFile(file io.Reader, fileName string) (*models.ImportSummary, error)

	// PreviewFile runs the same pipeline without persistence.
	PreviewFile(file io.Reader, fileName string) (*models.PreviewResult, error)

	// ImportRatingsMaster ingests a ratings master list, upserts it by
	// ISIN and refreshes the rating lookup cache.
	ImportRatingsMaster(file io.Reader, fileName string) (*models.ImportSummary, error)

	// LatestImportSummary returns the most recent run summary, if still
	// cached.
	LatestImportSummary() (*models.ImportSummary, bool)
}
