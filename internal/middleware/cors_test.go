package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRequest(allowed []string, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(allowed))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/ping", nil)
	req.Header.Set("Origin", origin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS_AllowsAnyOriginByDefault(t *testing.T) {
	w := corsRequest(nil, http.MethodGet, "https://parish.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://parish.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_RestrictsToConfiguredOrigins(t *testing.T) {
	allowed := []string{"https://app.parish.example/"}

	w := corsRequest(allowed, http.MethodGet, "https://app.parish.example")
	assert.Equal(t, "https://app.parish.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = corsRequest(allowed, http.MethodGet, "https://evil.example")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	w := corsRequest(nil, http.MethodOptions, "https://parish.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
