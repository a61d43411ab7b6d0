package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marrfa-chat/internal/config"
	"marrfa-chat/internal/kb"
	"marrfa-chat/internal/model"
	"marrfa-chat/internal/nlp"
	"marrfa-chat/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	classifier := nlp.NewClassifier(nil, nil)
	index, err := kb.NewIndex([]model.KnowledgeChunk{
		{ID: "about", Title: "About Marrfa", Content: "Marrfa is a real estate company."},
	}, nil)
	require.NoError(t, err)

	chatService := service.NewChatService(
		classifier, nil, kb.NewRetriever(index, nil, 4, nil), nil, nil,
		service.NewUsageLimiter(3), nil,
		config.CacheConfig{IntentTTL: time.Minute, CompanyTTL: time.Minute},
		config.ListingConfig{PerPage: 15, ShowCount: 10},
		nil,
	)
	h := NewChatHandler(chatService, classifier, index, false)

	router := gin.New()
	router.POST("/api/chat", h.Chat)
	router.GET("/health", h.Health)
	router.GET("/version", h.Version)
	router.GET("/api/debug-intent", h.DebugIntent)
	router.GET("/api/debug-kb", h.DebugKB)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var payload map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	}
	return w, payload
}

func TestChatEndpointGreeting(t *testing.T) {
	router := newTestRouter(t)

	w, payload := doJSON(t, router, http.MethodPost, "/api/chat",
		`{"query": "hello", "is_logged_in": true}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, payload["reply"], "Marrfa AI")
}

func TestChatEndpointRejectsInvalidJSON(t *testing.T) {
	router := newTestRouter(t)

	w, payload := doJSON(t, router, http.MethodPost, "/api/chat", `{"query": `)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, payload["error"], "Invalid request")
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, payload := doJSON(t, router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, true, payload["kb_ready"])
	assert.Equal(t, false, payload["ai_enabled"])
}

func TestVersionEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, payload := doJSON(t, router, http.MethodGet, "/version", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Version, payload["version"])
}

func TestDebugIntentEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, payload := doJSON(t, router, http.MethodGet, "/api/debug-intent?query=villas+in+dubai", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PROPERTY", payload["intent"])
	assert.Equal(t, "keyword_count", payload["method"])
}

func TestDebugIntentEndpointRequiresQuery(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodGet, "/api/debug-intent", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDebugKBEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, payload := doJSON(t, router, http.MethodGet, "/api/debug-kb", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), payload["total_chunks"])
	titles, ok := payload["titles"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, titles, "About Marrfa")
}
