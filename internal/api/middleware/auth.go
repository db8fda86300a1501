package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/paxiitdevteam/retentionos/internal/pkg/jwt"
	"github.com/paxiitdevteam/retentionos/internal/pkg/response"
)

const (
	AccountIDKey = "accountID"
)

// Auth guards dashboard routes with a bearer JWT.
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "missing authorization header")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(AccountIDKey, claims.UserID)
		c.Next()
	}
}

// GetAccountID reads the authenticated account from the request context.
func GetAccountID(c *gin.Context) (int64, bool) {
	accountID, exists := c.Get(AccountIDKey)
	if !exists {
		return 0, false
	}
	id, ok := accountID.(int64)
	return id, ok
}
