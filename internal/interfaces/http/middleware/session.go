// internal/interfaces/http/middleware/session.go
package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Session ensures every request carries a session id, minting one for new
// visitors. The id travels in the X-Session-ID header and is mirrored into a
// cookie for browser clients.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("X-Session-ID")
		if sessionID == "" {
			if cookie, err := c.Cookie("session_id"); err == nil {
				sessionID = cookie
			}
		}
		if sessionID == "" {
			sessionID = uuid.New().String()
			c.SetCookie("session_id", sessionID, 86400, "/", "", false, true)
		}

		c.Set("session_id", sessionID)
		c.Header("X-Session-ID", sessionID)
		c.Next()
	}
}

// GetSessionIDFromContext extracts the session id from gin context
func GetSessionIDFromContext(c *gin.Context) string {
	sessionID, exists := c.Get("session_id")
	if !exists {
		return ""
	}
	return sessionID.(string)
}

// OwnerKey derives the snapshot owner key for the current request: the user
// id when authenticated, otherwise the anonymous session id
func OwnerKey(c *gin.Context) string {
	if userID, ok := GetUserIDFromContext(c); ok {
		return fmt.Sprintf("user:%d", *userID)
	}
	return fmt.Sprintf("session:%s", GetSessionIDFromContext(c))
}
