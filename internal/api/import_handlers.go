package api

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Ritikraj007/FraudDetectionAI/internal/datasource"
	"github.com/Ritikraj007/FraudDetectionAI/internal/ingest"
)

// isCSVUpload accepts a file when either the declared media type or the
// filename extension indicates delimited text.
func isCSVUpload(contentType, filename string) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "text/csv" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".csv")
}

// HandleUpload handles POST /api/data-import/upload. The multipart file
// is validated for type and size before anything touches disk.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.config.Import.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusBadRequest, ingest.ErrFileTooLarge.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if !isCSVUpload(header.Header.Get("Content-Type"), header.Filename) {
		respondError(w, http.StatusBadRequest, ingest.ErrInvalidFileType.Error())
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	if int64(len(content)) > maxBytes {
		respondError(w, http.StatusBadRequest, ingest.ErrFileTooLarge.Error())
		return
	}

	result, err := h.pipeline.Ingest(header.Filename, content)
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("CSV import failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to import CSV file")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "File uploaded and processed successfully",
		"recordCount": result.RecordCount,
		"filename":    result.Filename,
	})
}

// HandleImportStatus handles GET /api/data-import/status.
func (h *Handlers) HandleImportStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"source": string(h.registry.CurrentSource()),
	})
}

// HandleSwitchSource handles POST /api/data-import/switch-source.
func (h *Handlers) HandleSwitchSource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source := datasource.Source(req.Source)
	if !source.Valid() {
		respondError(w, http.StatusBadRequest, "source must be 'database' or 'csv'")
		return
	}
	if err := h.registry.SetSource(source); err != nil {
		log.Printf("Source switch failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to switch data source")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Data source switched successfully",
		"source":  req.Source,
	})
}

// HandleListFiles handles GET /api/data-import/files.
func (h *Handlers) HandleListFiles(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.List())
}

// HandleDeleteFile handles DELETE /api/data-import/files/{filename}.
func (h *Handlers) HandleDeleteFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	err := h.catalog.Delete(filename)
	if err == datasource.ErrNotFound {
		respondError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		log.Printf("File delete failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to delete file")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "File deleted successfully"})
}
