package api

import (
	"log"
	"net/http"
	"strconv"
)

// HandleTelecomActivities handles GET /api/telecom/activities.
func (h *Handlers) HandleTelecomActivities(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	timeRange := r.URL.Query().Get("timeRange")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	activities, err := h.query.ListActivities(r.Context(), userID, limit, timeRange)
	if err != nil {
		log.Printf("Activity query failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch activities")
		return
	}
	respondJSON(w, http.StatusOK, activities)
}

// HandleTelecomFraudActivities handles GET /api/telecom/fraud-activities.
func (h *Handlers) HandleTelecomFraudActivities(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	timeRange := r.URL.Query().Get("timeRange")

	activities, err := h.query.ListFraudActivities(r.Context(), userID, timeRange)
	if err != nil {
		log.Printf("Fraud activity query failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch fraud activities")
		return
	}
	respondJSON(w, http.StatusOK, activities)
}

// HandleTelecomStats handles GET /api/telecom/stats.
func (h *Handlers) HandleTelecomStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.query.Stats(r.Context(), r.URL.Query().Get("timeRange"))
	if err != nil {
		log.Printf("Stats query failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch activity stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
