package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHandleCreateTournament_RejectsMissingRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/tournaments", HandleCreateTournament(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/tournaments", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleUpdateTournamentName_RejectsNameBelowMinLength(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.PATCH("/tournaments/:id/name", HandleUpdateTournamentName(nil, nil))

	req := httptest.NewRequest(http.MethodPatch, "/tournaments/t1/name", bytes.NewBufferString(`{"name":"ab"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAddParticipant_RejectsMissingMemberID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/tournaments/:id/participants", HandleAddParticipant(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/tournaments/t1/participants", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
