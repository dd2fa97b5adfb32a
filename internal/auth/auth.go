package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ritikraj007/FraudDetectionAI/internal/config"
)

// ErrInvalidCredentials is returned when the login check fails.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Manager performs the static-credential login check and tracks
// bearer-token sessions.
type Manager struct {
	cfg   config.AuthConfig
	store SessionStore
}

// NewManager creates an auth manager over the given session store.
func NewManager(cfg config.AuthConfig, store SessionStore) *Manager {
	return &Manager{cfg: cfg, store: store}
}

// Login validates the configured admin credentials and mints a session
// token.
func (m *Manager) Login(r *http.Request, username, password string) (string, error) {
	if username != m.cfg.Username || password != m.cfg.Password {
		return "", ErrInvalidCredentials
	}

	token := uuid.New().String()
	if err := m.store.Save(r.Context(), token, username, m.cfg.SessionTTL()); err != nil {
		return "", err
	}
	return token, nil
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// IsAuthenticated reports whether the request carries a live session.
func (m *Manager) IsAuthenticated(r *http.Request) bool {
	token := bearerToken(r)
	if token == "" {
		return false
	}
	_, ok, err := m.store.Get(r.Context(), token)
	if err != nil {
		log.Printf("Session lookup failed: %v", err)
		return false
	}
	return ok
}

// HandleLogin handles POST /api/auth/login.
func (m *Manager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	token, err := m.Login(r, req.Username, req.Password)
	if err == ErrInvalidCredentials {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("Login failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":     token,
		"username":  req.Username,
		"expiresIn": int(m.cfg.SessionTTL() / time.Second),
	})
}

// HandleLogout handles POST /api/auth/logout.
func (m *Manager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := m.store.Delete(r.Context(), token); err != nil {
			log.Printf("Session delete failed: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// HandleUserInfo handles GET /api/auth/me.
func (m *Manager) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	username, ok, err := m.store.Get(r.Context(), token)
	if err != nil || !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"username": username})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
