// backend/src/handlers/import_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/username/fundfolio/backend/src/config"
	"github.com/username/fundfolio/backend/src/logger"
	"github.com/username/fundfolio/backend/src/services"
	"github.com/username/fundfolio/backend/src/utils"
)

type ImportHandler struct {
	importService services.ImportService
}

func NewImportHandler(service services.ImportService) *ImportHandler {
	return &ImportHandler{
		importService: service,
	}
}

// HandleUpload ingests one statement file and returns the run summary.
func (h *ImportHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	file, fileName, ok := h.fileFromRequest(w, r)
	if !ok {
		return
	}
	defer file.Close()

	logger.L.Info("Processing upload request", "filename", fileName)
	result, err := h.importService.ImportFile(file, fileName)
	if err != nil {
		h.writeServiceError(w, fileName, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandlePreview runs the pipeline without persisting anything, so a client
// can show the user what an upload would produce.
func (h *ImportHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	file, fileName, ok := h.fileFromRequest(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.importService.PreviewFile(file, fileName)
	if err != nil {
		h.writeServiceError(w, fileName, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleRatingsUpload ingests a ratings master list and refreshes the
// rating lookup cache.
func (h *ImportHandler) HandleRatingsUpload(w http.ResponseWriter, r *http.Request) {
	file, fileName, ok := h.fileFromRequest(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.importService.ImportRatingsMaster(file, fileName)
	if err != nil {
		h.writeServiceError(w, fileName, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleGetLatestSummary serves the last run summary with ETag support.
func (h *ImportHandler) HandleGetLatestSummary(w http.ResponseWriter, r *http.Request) {
	summary, found := h.importService.LatestImportSummary()
	if !found {
		utils.SendJSONError(w, "no import has completed recently", http.StatusNotFound)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, private")
	if etag, err := utils.GenerateETag(summary); err == nil && etag != "" {
		quoted := fmt.Sprintf("%q", etag)
		w.Header().Set("ETag", quoted)
		for _, cETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(cETag) == quoted {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *ImportHandler) fileFromRequest(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, bool) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return nil, "", false
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return nil, "", false
	}

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		file.Close()
		logger.L.Warn("Uploaded file too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return nil, "", false
	}
	return file, fileHeader.Filename, true
}

func (h *ImportHandler) writeServiceError(w http.ResponseWriter, fileName string, err error) {
	switch {
	case errors.Is(err, services.ErrParsingFailed):
		logger.L.Warn("Upload failed to parse", "filename", fileName, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Error parsing file: %v", err), http.StatusBadRequest)
	case errors.Is(err, services.ErrNoRecognizableLayout):
		logger.L.Warn("Upload matched no known layout", "filename", fileName, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("File did not match any known layout: %v", err), http.StatusUnprocessableEntity)
	default:
		logger.L.Error("Internal error processing upload", "filename", fileName, "error", err)
		utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("Error encoding JSON response", "error", err)
	}
}
