package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ritikraj007/FraudDetectionAI/internal/auth"
	"github.com/Ritikraj007/FraudDetectionAI/internal/config"
	"github.com/Ritikraj007/FraudDetectionAI/internal/datasource"
	"github.com/Ritikraj007/FraudDetectionAI/internal/ingest"
	"github.com/Ritikraj007/FraudDetectionAI/internal/query"
	"github.com/Ritikraj007/FraudDetectionAI/internal/telecom"
)

type testEnv struct {
	handler  http.Handler
	registry *datasource.Registry
	catalog  *datasource.Catalog
	live     *query.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.Import.UploadDir = dir
	cfg.Import.MaxUploadBytes = 10 << 20
	cfg.CORS.AllowedOrigins = []string{"http://localhost:5173"}

	registry, err := datasource.NewRegistry(dir)
	require.NoError(t, err)
	catalog, err := datasource.NewCatalog(dir)
	require.NoError(t, err)

	live := query.NewMemoryStore()
	pipeline := ingest.NewPipeline(dir, registry, catalog)
	handlers := NewHandlers(pipeline, registry, catalog, query.NewService(registry, live), cfg)

	return &testEnv{
		handler:  SetupRoutes(handlers, nil, cfg.CORS.AllowedOrigins),
		registry: registry,
		catalog:  catalog,
		live:     live,
	}
}

func multipartUpload(t *testing.T, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	partHeader := make(map[string][]string)
	partHeader["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	partHeader["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/data-import/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestUploadFlow(t *testing.T) {
	env := newTestEnv(t)

	csvData := []byte("user_id,type,timestamp,is_fraud\nu1,call,2024-03-15 10:00:00,false\nu2,sms,2024-03-15 11:00:00,true\n")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, multipartUpload(t, "batch.csv", "text/csv", csvData))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["recordCount"])
	assert.Equal(t, "batch.csv", resp["filename"])

	// Selector flipped and is visible on the status endpoint
	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/data-import/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"source":"csv"}`, w.Body.String())
}

func TestUploadRejectsNonCSV(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, multipartUpload(t, "report.pdf", "application/pdf", []byte("%PDF-")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, datasource.SourceDatabase, env.registry.CurrentSource())
	assert.Empty(t, env.catalog.List(), "rejected upload must not be cataloged")
}

func TestUploadAcceptsCSVExtensionWithGenericType(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, multipartUpload(t, "batch.csv", "application/octet-stream", []byte("user_id\nu1\n")))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Import.UploadDir = dir
	cfg.Import.MaxUploadBytes = 256

	registry, err := datasource.NewRegistry(dir)
	require.NoError(t, err)
	catalog, err := datasource.NewCatalog(dir)
	require.NoError(t, err)
	pipeline := ingest.NewPipeline(dir, registry, catalog)
	handlers := NewHandlers(pipeline, registry, catalog, query.NewService(registry, query.NewMemoryStore()), cfg)
	handler := SetupRoutes(handlers, nil, nil)

	big := append([]byte("user_id\n"), bytes.Repeat([]byte("u1\n"), 200)...)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, multipartUpload(t, "big.csv", "text/csv", big))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, catalog.List())
}

func TestUploadWithoutFile(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/data-import/upload", strings.NewReader("nope"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xxx")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadMalformedCSVLeavesStateUntouched(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, multipartUpload(t, "good.csv", "text/csv", []byte("user_id\nu1\n")))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, multipartUpload(t, "bad.csv", "text/csv", []byte("user_id,x\nu2,\"unterminated\n")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Len(t, env.registry.Batch(), 1)
	assert.Equal(t, "u1", env.registry.Batch()[0].UserID)
}

func TestSwitchSource(t *testing.T) {
	env := newTestEnv(t)

	body := strings.NewReader(`{"source":"csv"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/data-import/switch-source", body)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, datasource.SourceCSV, env.registry.CurrentSource())
}

func TestSwitchSourceRejectsUnknown(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{`{"source":"mongo"}`, `{"source":""}`, `{broken`} {
		req := httptest.NewRequest(http.MethodPost, "/api/data-import/switch-source", strings.NewReader(body))
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
	assert.Equal(t, datasource.SourceDatabase, env.registry.CurrentSource())
}

func TestListAndDeleteFiles(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, multipartUpload(t, "batch.csv", "text/csv", []byte("user_id\nu1\n")))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/data-import/files", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var files []datasource.FileEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "batch.csv", files[0].Name)
	assert.Equal(t, "active", files[0].Status)

	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/data-import/files/batch.csv", nil))
	require.Equal(t, http.StatusOK, w.Code)

	// Deleting the file does not retract the active batch
	assert.Len(t, env.registry.Batch(), 1)

	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/data-import/files/batch.csv", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTelecomActivitiesFromBatch(t *testing.T) {
	env := newTestEnv(t)

	now := time.Now().UTC().Add(-time.Hour).Format("2006-01-02 15:04:05")
	csvData := []byte("user_id,type,timestamp\nu1,call," + now + "\nu2,sms," + now + "\n")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, multipartUpload(t, "batch.csv", "text/csv", csvData))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/telecom/activities?userId=u1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var activities []telecom.Activity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &activities))
	require.Len(t, activities, 1)
	assert.Equal(t, "u1", activities[0].UserID)
}

func TestTelecomActivitiesBadLimit(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/telecom/activities?limit=banana", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTelecomStats(t *testing.T) {
	env := newTestEnv(t)

	env.live.AddActivities(
		telecom.Activity{ID: "1", UserID: "u1", ActivityType: telecom.ActivityCall, Timestamp: time.Now(), Location: "Delhi", NetworkType: "4G", IsSpamOrFraud: true},
		telecom.Activity{ID: "2", UserID: "u2", ActivityType: telecom.ActivitySMS, Timestamp: time.Now(), Location: "Delhi", NetworkType: "5G"},
	)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/telecom/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats telecom.ActivityStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalActivities)
	assert.Equal(t, 1, stats.CallCount)
	assert.Equal(t, 0.5, stats.FraudRate)
	require.Len(t, stats.TopLocations, 1)
	assert.Equal(t, "Delhi", stats.TopLocations[0].Location)
}

func TestThreatsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.live.AddThreats(
		telecom.Threat{ID: "t1", ThreatType: "sim_swap", Severity: "high", Timestamp: time.Now().Add(-10 * time.Minute)},
		telecom.Threat{ID: "t2", ThreatType: "spoofing", Severity: "low", Timestamp: time.Now().Add(-20 * time.Minute)},
	)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/threats?severity=high", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var threats []telecom.Threat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &threats))
	require.Len(t, threats, 1)
	assert.Equal(t, "t1", threats[0].ID)
}

func TestExportThreatsCSV(t *testing.T) {
	env := newTestEnv(t)

	env.live.AddThreats(telecom.Threat{
		ID:          "t1",
		ThreatType:  "sim_swap",
		Source:      "+15551234567",
		Severity:    "high",
		AIScore:     0.93,
		Status:      "active",
		Description: "SIM swap detected",
		Timestamp:   time.Now().Add(-5 * time.Minute),
	})

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/export/threats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Timestamp,Type,Source,Severity,AI Score,Status,Description", lines[0])
	assert.Contains(t, lines[1], "sim_swap")
	assert.Contains(t, lines[1], "0.93")
}

func TestAuthProtectsAPIRoutes(t *testing.T) {
	t.Setenv("DEV_MODE", "")
	t.Setenv("ENVIRONMENT", "")

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Import.UploadDir = dir
	cfg.Import.MaxUploadBytes = 10 << 20
	cfg.Auth = config.AuthConfig{Enabled: true, Username: "admin", Password: "secret", SessionTTLMinutes: 60}

	registry, err := datasource.NewRegistry(dir)
	require.NoError(t, err)
	catalog, err := datasource.NewCatalog(dir)
	require.NoError(t, err)
	pipeline := ingest.NewPipeline(dir, registry, catalog)
	handlers := NewHandlers(pipeline, registry, catalog, query.NewService(registry, query.NewMemoryStore()), cfg)
	manager := auth.NewManager(cfg.Auth, auth.NewMemoryStore())
	handler := SetupRoutes(handlers, manager, nil)

	// No session: API rejects
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/data-import/status", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Login stays reachable
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"admin","password":"secret"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)

	// With the session token the API answers
	req := httptest.NewRequest(http.MethodGet, "/api/data-import/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Health stays open
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownAPIRouteIs404(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
