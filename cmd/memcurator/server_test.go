package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/memcurator/api"
	"github.com/BaSui01/memcurator/config"
	"github.com/BaSui01/memcurator/testutil"
	"github.com/BaSui01/memcurator/testutil/fixtures"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Database.Name = filepath.Join(t.TempDir(), "serve.db")
	cfg.Tokenizer.Model = "estimate"
	cfg.Indexing.Enabled = true
	cfg.Indexing.Dimension = 64
	cfg.Indexing.RequestsPerSecond = 0
	return cfg
}

func buildTestServer(t *testing.T, cfg *config.Config) (*Server, http.Handler) {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
	s := NewServer(cfg, logger, nil, prometheus.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	h, err := s.Build(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		s.runHooks(context.Background())
	})
	return s, h
}

func serve(h http.Handler, method, path string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.True(t, env.Success, w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
}

func TestServer_CurateSaveAndFetch(t *testing.T) {
	s, h := buildTestServer(t, testConfig(t))
	require.NotNil(t, s.store)
	require.NotNil(t, s.indexer)

	w := serve(h, http.MethodPost, "/v1/curate?save=true&index=true", testutil.TranscriptJSON(fixtures.OAuthSession()), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	var resp api.CurateResponse
	decodeEnvelope(t, w, &resp)
	assert.True(t, resp.Saved)
	assert.Positive(t, resp.IndexedRecords)

	w = serve(h, http.MethodGet, "/v1/documents/"+resp.Document.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(h, http.MethodPost, "/v1/search", []byte(`{"query":"oauth login","top_k":3}`), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var search api.SearchResponse
	decodeEnvelope(t, w, &search)
	assert.NotEmpty(t, search.Results)
}

func TestServer_HealthReadyAndMetrics(t *testing.T) {
	_, h := buildTestServer(t, testConfig(t))

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", nil, nil).Code)

	w := serve(h, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "database")

	serve(h, http.MethodPost, "/v1/curate", testutil.TranscriptJSON(fixtures.DecisionSession()), nil)

	w = serve(h, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "memcurator_curations_total")
	assert.Contains(t, body, `path="/v1/curate"`)
}

func TestServer_WithoutDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = ""
	cfg.Indexing.Enabled = false
	cfg.Metrics.Enabled = false
	s, h := buildTestServer(t, cfg)
	assert.Nil(t, s.store)
	assert.Nil(t, s.indexer)

	w := serve(h, http.MethodGet, "/v1/documents/abc", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/metrics", nil, nil).Code)

	w = serve(h, http.MethodPost, "/v1/anchors", []byte(`{"title":"OAuth Callback Handler"}`), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var anchorResp api.AnchorResponse
	decodeEnvelope(t, w, &anchorResp)
	assert.True(t, strings.HasPrefix(anchorResp.AnchorID, "summary-"))
}

func TestServer_APIKeyAuth(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.APIKeys = []string{"k-123"}
	_, h := buildTestServer(t, cfg)

	body := []byte(`{"title":"Session Store"}`)
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodPost, "/v1/anchors", body, nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		serve(h, http.MethodPost, "/v1/anchors", body, map[string]string{"X-API-Key": "wrong"}).Code)
	assert.Equal(t, http.StatusOK,
		serve(h, http.MethodPost, "/v1/anchors", body, map[string]string{"X-API-Key": "k-123"}).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", nil, nil).Code)
}

func signHS256(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestServer_JWTAuth(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.JWT.Secret = "jwt-secret"
	cfg.Auth.JWT.Issuer = "memcurator-test"
	_, h := buildTestServer(t, cfg)

	body := []byte(`{"title":"Session Store"}`)
	bearer := func(tok string) map[string]string { return map[string]string{"Authorization": "Bearer " + tok} }

	valid := signHS256(t, "jwt-secret", jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "memcurator-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/v1/anchors", body, bearer(valid)).Code)

	expired := signHS256(t, "jwt-secret", jwt.RegisteredClaims{
		Issuer:    "memcurator-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodPost, "/v1/anchors", body, bearer(expired)).Code)

	noExpiry := signHS256(t, "jwt-secret", jwt.RegisteredClaims{Issuer: "memcurator-test"})
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodPost, "/v1/anchors", body, bearer(noExpiry)).Code)

	wrongIssuer := signHS256(t, "jwt-secret", jwt.RegisteredClaims{
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodPost, "/v1/anchors", body, bearer(wrongIssuer)).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodPost, "/v1/anchors", body, nil).Code)
}

func TestServer_FilterConfigHotReload(t *testing.T) {
	filters := filepath.Join(t.TempDir(), "filters.jsonc")
	require.NoError(t, os.WriteFile(filters, []byte(`{ "dedupe": { "similarity_threshold": 0.85 } }`), 0o600))

	cfg := testConfig(t)
	cfg.Filter.ConfigPath = filters
	cfg.Filter.WatchInterval = 20 * time.Millisecond
	s, _ := buildTestServer(t, cfg)
	require.NotNil(t, s.watcher)
	assert.Equal(t, 0.85, s.curator.FilterConfig().Dedupe.SimilarityThreshold)

	require.NoError(t, os.WriteFile(filters, []byte(`{
		// looser near-duplicate detection
		"dedupe": { "similarity_threshold": 0.70 },
	}`), 0o600))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(filters, future, future))

	assert.Eventually(t, func() bool {
		return s.curator.FilterConfig().Dedupe.SimilarityThreshold == 0.70
	}, 3*time.Second, 20*time.Millisecond)
}

func TestServer_RunStopsOnContext(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Addr = "127.0.0.1:0"
	s := NewServer(cfg, zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel)), nil, prometheus.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))
	addr := s.manager.Addr()
	require.NotEmpty(t, addr)

	done := make(chan error, 1)
	go func() { done <- s.Wait(ctx) }()

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.False(t, s.manager.IsRunning())
	assert.Error(t, s.store.Pool().Ping(context.Background()), "database closed by shutdown hook")
}
