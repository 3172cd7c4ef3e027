package middleware

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLogger_WritesMethodPathAndStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	router := gin.New()
	router.GET("/tournaments/:id", Logger(logger), func(c *gin.Context) { c.Status(http.StatusTeapot) })

	req := httptest.NewRequest(http.MethodGet, "/tournaments/t1?foo=bar", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	out := buf.String()
	assert.Contains(t, out, "GET")
	assert.Contains(t, out, "418")
	assert.Contains(t, out, "/tournaments/t1?foo=bar")
}
