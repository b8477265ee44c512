// backend/src/handlers/import_handler_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/username/fundfolio/backend/src/config"
	"github.com/username/fundfolio/backend/src/models"
	"github.com/username/fundfolio/backend/src/services"
)

type stubImportService struct {
	importFn func(io.Reader, string) (*models.ImportSummary, error)
	latest   *models.ImportSummary
}

func (s *stubImportService) ImportFile(file io.Reader, fileName string) (*models.ImportSummary, error) {
	return s.importFn(file, fileName)
}

func (s *stubImportService) PreviewFile(file io.Reader, fileName string) (*models.PreviewResult, error) {
	return &models.PreviewResult{FileName: fileName}, nil
}

func (s *stubImportService) ImportRatingsMaster(file io.Reader, fileName string) (*models.ImportSummary, error) {
	return s.importFn(file, fileName)
}

func (s *stubImportService) LatestImportSummary() (*models.ImportSummary, bool) {
	return s.latest, s.latest != nil
}

func TestMain(m *testing.M) {
	config.Cfg = &config.AppConfig{MaxUploadSizeBytes: 10 * 1024 * 1024}
	os.Exit(m.Run())
}

func multipartUpload(t *testing.T, fieldName, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleUploadOK(t *testing.T) {
	svc := &stubImportService{
		importFn: func(_ io.Reader, fileName string) (*models.ImportSummary, error) {
			return &models.ImportSummary{ImportID: "run-1", FileName: fileName, DetectedLayout: "NSE", Inserted: 2}, nil
		},
	}
	h := NewImportHandler(svc)

	rr := httptest.NewRecorder()
	h.HandleUpload(rr, multipartUpload(t, "file", "NSE_deals.csv", "isin,trade date\n"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	var got models.ImportSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.ImportID != "run-1" || got.FileName != "NSE_deals.csv" || got.Inserted != 2 {
		t.Errorf("unexpected summary: %+v", got)
	}
}

func TestHandleUploadErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"parse failure", services.ErrParsingFailed, http.StatusBadRequest},
		{"no layout", services.ErrNoRecognizableLayout, http.StatusUnprocessableEntity},
		{"internal", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubImportService{
				importFn: func(io.Reader, string) (*models.ImportSummary, error) { return nil, tc.err },
			}
			rr := httptest.NewRecorder()
			NewImportHandler(svc).HandleUpload(rr, multipartUpload(t, "file", "x.csv", "a,b\n"))
			if rr.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
		})
	}
}

func TestHandleUploadWrongFieldName(t *testing.T) {
	svc := &stubImportService{
		importFn: func(io.Reader, string) (*models.ImportSummary, error) {
			t.Fatal("service must not be called without a file")
			return nil, nil
		},
	}
	rr := httptest.NewRecorder()
	NewImportHandler(svc).HandleUpload(rr, multipartUpload(t, "wrong", "x.csv", "a,b\n"))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestHandleGetLatestSummary(t *testing.T) {
	h := NewImportHandler(&stubImportService{})

	rr := httptest.NewRecorder()
	h.HandleGetLatestSummary(rr, httptest.NewRequest(http.MethodGet, "/api/import/latest", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status with no summary = %d, want 404", rr.Code)
	}

	h = NewImportHandler(&stubImportService{
		latest: &models.ImportSummary{ImportID: "run-9", Inserted: 3},
	})

	rr = httptest.NewRecorder()
	h.HandleGetLatestSummary(rr, httptest.NewRequest(http.MethodGet, "/api/import/latest", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	etag := rr.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/import/latest", nil)
	req.Header.Set("If-None-Match", etag)
	rr = httptest.NewRecorder()
	h.HandleGetLatestSummary(rr, req)
	if rr.Code != http.StatusNotModified {
		t.Errorf("status with matching etag = %d, want 304", rr.Code)
	}
}
