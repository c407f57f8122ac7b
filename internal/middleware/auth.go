package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"authbot/internal/services"
)

const CtxUserID = "user_id"

// TokenParser is satisfied by services.AuthService.
type TokenParser interface {
	ParseAccessToken(token string) (*services.Claims, error)
}

func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		// пропускаем preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		claims, err := parser.ParseAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Next()
	}
}

// UserID returns the authenticated user set by AuthMiddleware.
func UserID(c *gin.Context) (int, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok && id > 0
}
