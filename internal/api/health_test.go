package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tournament-planner/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_ReportsEnvironmentAndWebSocketFeatureFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	cfg := &config.Config{Environment: "staging"}
	cfg.Features.EnableWebSocket = true
	router.GET("/health", HealthCheck(cfg))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "staging", body["environment"])
	services := body["services"].(map[string]interface{})
	assert.Equal(t, true, services["websocket"])
}
