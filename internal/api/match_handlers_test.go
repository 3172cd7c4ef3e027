package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHandleCreateStandaloneMatch_RejectsMissingMemberIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/matches", HandleCreateStandaloneMatch(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/matches", bytes.NewBufferString(`{"player1_sets":3}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
