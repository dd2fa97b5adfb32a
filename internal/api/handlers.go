package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Ritikraj007/FraudDetectionAI/internal/config"
	"github.com/Ritikraj007/FraudDetectionAI/internal/datasource"
	"github.com/Ritikraj007/FraudDetectionAI/internal/ingest"
	"github.com/Ritikraj007/FraudDetectionAI/internal/query"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	pipeline *ingest.Pipeline
	registry *datasource.Registry
	catalog  *datasource.Catalog
	query    *query.Service
	config   *config.Config
}

// NewHandlers creates a new Handlers instance
func NewHandlers(pipeline *ingest.Pipeline, registry *datasource.Registry, catalog *datasource.Catalog, querySvc *query.Service, cfg *config.Config) *Handlers {
	return &Handlers{
		pipeline: pipeline,
		registry: registry,
		catalog:  catalog,
		query:    querySvc,
		config:   cfg,
	}
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// HealthCheck returns server health status
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
