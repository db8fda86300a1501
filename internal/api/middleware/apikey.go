package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/paxiitdevteam/retentionos/internal/pkg/response"
)

// APIKey guards the widget routes called server-to-server by the host SaaS.
// An empty configured key disables the routes entirely rather than leaving
// them open.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			response.AuthError(c, "api key authentication is not configured")
			c.Abort()
			return
		}

		provided := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			response.AuthError(c, "invalid api key")
			c.Abort()
			return
		}

		c.Next()
	}
}
