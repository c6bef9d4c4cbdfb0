package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	c, w := testContext(t)
	c.Request.Header.Set("Origin", "http://localhost:3000")
	CORS(testConfig())(c)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Session-ID", w.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	c, w := testContext(t)
	c.Request.Header.Set("Origin", "http://evil.example.com")
	CORS(testConfig())(c)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMatchesWildcardSubdomain(t *testing.T) {
	c, w := testContext(t)
	c.Request.Header.Set("Origin", "https://eu.shop.example.com")
	CORS(testConfig())(c)

	assert.Equal(t, "https://eu.shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAnswersPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	c.Request.Header.Set("Origin", "http://localhost:3000")

	CORS(testConfig())(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Headers"))
}
