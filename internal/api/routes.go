package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Ritikraj007/FraudDetectionAI/internal/auth"
)

// SetupRoutes configures all API routes. When authManager is non-nil
// the /api subtree requires a live session (skipped in dev mode).
func SetupRoutes(h *Handlers, authManager *auth.Manager, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	devMode := os.Getenv("DEV_MODE") == "true" || os.Getenv("ENVIRONMENT") == "development"

	r.Route("/api", func(r chi.Router) {
		// The login round trip itself must stay reachable without a session
		if authManager != nil && !devMode {
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					if strings.HasPrefix(req.URL.Path, "/api/auth/") {
						next.ServeHTTP(w, req)
						return
					}
					if !authManager.IsAuthenticated(req) {
						respondError(w, http.StatusUnauthorized, "unauthorized")
						return
					}
					next.ServeHTTP(w, req)
				})
			})
		}

		if authManager != nil {
			r.Post("/auth/login", authManager.HandleLogin)
			r.Post("/auth/logout", authManager.HandleLogout)
			r.Get("/auth/me", authManager.HandleUserInfo)
		}

		// CSV import and source management
		r.Route("/data-import", func(r chi.Router) {
			r.Post("/upload", h.HandleUpload)
			r.Get("/status", h.HandleImportStatus)
			r.Post("/switch-source", h.HandleSwitchSource)
			r.Get("/files", h.HandleListFiles)
			r.Delete("/files/{filename}", h.HandleDeleteFile)
		})

		// Activity queries
		r.Route("/telecom", func(r chi.Router) {
			r.Get("/activities", h.HandleTelecomActivities)
			r.Get("/fraud-activities", h.HandleTelecomFraudActivities)
			r.Get("/stats", h.HandleTelecomStats)
		})

		// Threat feed
		r.Get("/threats", h.HandleThreats)
		r.Get("/export/threats", h.HandleExportThreats)
	})

	// Serve static files for the React frontend (SPA with fallback to index.html)
	spaHandler(r, "./web/dist")

	return r
}

// spaHandler serves static files and falls back to index.html for SPA routing
func spaHandler(r chi.Router, staticPath string) {
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		// Skip API routes
		if strings.HasPrefix(path, "/api") || strings.HasPrefix(path, "/health") {
			http.NotFound(w, req)
			return
		}

		filePath := filepath.Join(staticPath, path)
		if _, err := os.Stat(filePath); err == nil {
			http.ServeFile(w, req, filePath)
			return
		}

		// For SPA routing, serve index.html for unknown paths
		http.ServeFile(w, req, filepath.Join(staticPath, "index.html"))
	})
}
