package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"readiness/internal/config"
	"readiness/internal/logging"
	"readiness/internal/models"
	"readiness/internal/services"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestServer(t *testing.T, cfg config.ServerConfig) (*Server, *services.AuthService) {
	t.Helper()
	return newTestServerWithFacts(t, cfg, models.HostFacts{
		Memory:   &models.MemoryInfo{TotalBytes: 8 * models.GB},
		Graphics: &models.GraphicsInfo{Name: "Test Adapter"},
	})
}

func newTestServerWithFacts(t *testing.T, cfg config.ServerConfig, facts models.HostFacts) (*Server, *services.AuthService) {
	t.Helper()
	log := logging.Discard()

	platform := &services.StaticPlatform{Facts: facts}
	auth, err := services.NewAuthService(testSecret, t.TempDir(), time.Hour, log)
	require.NoError(t, err)

	s, err := New(cfg, services.NewChecker(platform, log), auth, log)
	require.NoError(t, err)
	t.Cleanup(s.hub.Stop)
	return s, auth
}

func testConfig() config.ServerConfig {
	cfg := config.Default().Server
	cfg.CacheTTL = time.Minute
	return cfg
}

func do(t *testing.T, s *Server, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthzNeedsNoToken(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	w := do(t, s, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCompatibilityRequiresToken(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	assert.Equal(t, http.StatusUnauthorized, do(t, s, "/compatibility", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, s, "/compatibility", "not-a-token").Code)
}

func TestCompatibilityReturnsDocument(t *testing.T) {
	s, auth := newTestServer(t, testConfig())
	token, _, err := auth.GenerateToken("fleet-01")
	require.NoError(t, err)

	w := do(t, s, "/compatibility", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Return-Code"))

	var doc models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, 1, doc.ReturnCode)
	assert.Equal(t, models.ResultNotCapable, doc.ReturnResult)
	assert.Equal(t, "Processor, Storage, Secure Boot, TPM, OS Version, ", doc.ReturnReason)
	assert.Contains(t, doc.Logging, "Memory: 8GB. PASS; ")
	assert.Contains(t, doc.Logging, "Graphics: Test Adapter. PASS;")
}

func TestCompatibilityMatchesCLIRecord(t *testing.T) {
	facts := models.HostFacts{Graphics: &models.GraphicsInfo{Name: "AMD Radeon <R7> & more"}}
	s, auth := newTestServerWithFacts(t, testConfig(), facts)
	token, _, err := auth.GenerateToken("fleet-01")
	require.NoError(t, err)

	w := do(t, s, "/compatibility", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Graphics: AMD Radeon <R7> & more. PASS;")
	assert.NotContains(t, w.Body.String(), `\u003c`)

	want, err := services.MarshalDocument(services.NewDocument(services.Evaluate(facts)))
	require.NoError(t, err)
	assert.Equal(t, string(want), w.Body.String())
}

func TestCompatibilityDetails(t *testing.T) {
	s, auth := newTestServer(t, testConfig())
	token, _, err := auth.GenerateToken("fleet-01")
	require.NoError(t, err)

	w := do(t, s, "/compatibility/details", token)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Overall models.OverallVerdict `json:"overall"`
		Facets  []struct {
			Facet   string `json:"facet"`
			Verdict string `json:"verdict"`
		} `json:"facets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.NotCompatible, body.Overall)
	require.Len(t, body.Facets, len(models.Facets))
	assert.Equal(t, "Processor", body.Facets[0].Facet)
	assert.Equal(t, "PASS", body.Facets[1].Verdict)
}

func TestHistoryEndpoint(t *testing.T) {
	s, auth := newTestServer(t, testConfig())
	token, _, err := auth.GenerateToken("fleet-01")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s.history.CollectSnapshot(ctx)

	w := do(t, s, "/compatibility/history?duration=10m", token)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Duration string               `json:"duration"`
		Data     models.HistoryWindow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "10m", body.Duration)
	assert.Len(t, body.Data.Snapshots, 1)

	assert.Equal(t, http.StatusBadRequest, do(t, s, "/compatibility/history?duration=soon", token).Code)
}

func TestAllowListRejectsOtherAddresses(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedIPs = []string{"10.0.0.5"}
	s, _ := newTestServer(t, cfg)

	// httptest requests come from 192.0.2.1
	assert.Equal(t, http.StatusForbidden, do(t, s, "/healthz", "").Code)
}

func TestAllowListIgnoresForwardedFor(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedIPs = []string{"10.0.0.1"}
	s, _ := newTestServer(t, cfg)

	for _, header := range []string{"X-Forwarded-For", "X-Real-IP"} {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		req.Header.Set(header, "127.0.0.1")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code, header)
	}
}

func TestAllowListHonorsTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedIPs = []string{"10.0.0.1"}
	cfg.TrustedProxies = []string{"203.0.113.0/24"}
	s, _ := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewRejectsInvalidTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.TrustedProxies = []string{"not-an-address"}
	log := logging.Discard()
	auth, err := services.NewAuthService(testSecret, t.TempDir(), time.Hour, log)
	require.NoError(t, err)

	_, err = New(cfg, services.NewChecker(&services.StaticPlatform{}, log), auth, log)
	require.Error(t, err)
}

func TestWebSocketRequiresToken(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	assert.Equal(t, http.StatusUnauthorized, do(t, s, "/ws", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/ws?token=bogus", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebSocketStreamsEvaluations(t *testing.T) {
	s, auth := newTestServer(t, testConfig())
	token, _, err := auth.GenerateToken("fleet-01")
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first struct {
		Type string          `json:"type"`
		Data models.Document `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "evaluation", first.Type)
	assert.Equal(t, 1, first.Data.ReturnCode)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	var pong struct {
		Type string `json:"type"`
	}
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong.Type)
}
