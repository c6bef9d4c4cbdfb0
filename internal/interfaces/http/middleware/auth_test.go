package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Storefront Backend"},
		JWT: config.JWTConfig{
			Secret:            "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: []string{"http://localhost:3000", "*.shop.example.com"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			CORSAllowedHeaders: []string{"Origin", "Content-Type", "Authorization", "X-Session-ID"},
		},
	}
}

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	return c, w
}

func TestOptionalAuthPopulatesIdentityFromBearerToken(t *testing.T) {
	cfg := testConfig()
	token, err := auth.NewJWTManager(cfg).GenerateAccessToken(42, "buyer@example.com")
	require.NoError(t, err)

	c, _ := testContext(t)
	c.Request.Header.Set("Authorization", "Bearer "+token)
	OptionalAuthMiddleware(cfg)(c)

	userID, ok := GetUserIDFromContext(c)
	require.True(t, ok)
	assert.Equal(t, uint(42), *userID)
}

func TestOptionalAuthIgnoresInvalidToken(t *testing.T) {
	c, _ := testContext(t)
	c.Request.Header.Set("Authorization", "Bearer not-a-token")
	OptionalAuthMiddleware(testConfig())(c)

	_, ok := GetUserIDFromContext(c)
	assert.False(t, ok)
	assert.False(t, c.IsAborted())
}

func TestOwnerKeyPrefersAuthenticatedUser(t *testing.T) {
	cfg := testConfig()
	token, err := auth.NewJWTManager(cfg).GenerateAccessToken(42, "buyer@example.com")
	require.NoError(t, err)

	c, _ := testContext(t)
	c.Request.Header.Set("X-Session-ID", "abc")
	Session()(c)
	assert.Equal(t, "session:abc", OwnerKey(c))

	c.Request.Header.Set("Authorization", "Bearer "+token)
	OptionalAuthMiddleware(cfg)(c)
	assert.Equal(t, "user:42", OwnerKey(c))
}

func TestSessionMintsIDForNewVisitors(t *testing.T) {
	c, w := testContext(t)
	Session()(c)

	sessionID := GetSessionIDFromContext(c)
	assert.NotEmpty(t, sessionID)
	assert.Equal(t, sessionID, w.Header().Get("X-Session-ID"))
}
