package api

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
)

const threatExportLimit = 1000

// HandleThreats handles GET /api/threats.
func (h *Handlers) HandleThreats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	threats, err := h.query.ListThreats(r.Context(), q.Get("severity"), q.Get("type"), q.Get("timeRange"), limit)
	if err != nil {
		log.Printf("Threat query failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch threats")
		return
	}
	respondJSON(w, http.StatusOK, threats)
}

// HandleExportThreats handles GET /api/export/threats, streaming the
// recent threat list as a CSV attachment.
func (h *Handlers) HandleExportThreats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	threats, err := h.query.ListThreats(r.Context(), q.Get("severity"), q.Get("type"), q.Get("timeRange"), threatExportLimit)
	if err != nil {
		log.Printf("Threat export failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to export threats")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=threats_%s.csv", time.Now().Format("2006-01-02")))

	cw := csv.NewWriter(w)
	cw.Write([]string{"Timestamp", "Type", "Source", "Severity", "AI Score", "Status", "Description"})
	for _, t := range threats {
		cw.Write([]string{
			t.Timestamp.Format(time.RFC3339),
			t.ThreatType,
			t.Source,
			t.Severity,
			strconv.FormatFloat(t.AIScore, 'f', 2, 64),
			t.Status,
			t.Description,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("Threat export write failed: %v", err)
	}
}
