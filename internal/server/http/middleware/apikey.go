package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// APIKeyHeader carries the administrative key.
const APIKeyHeader = "X-API-Key"

// KeyVerifier validates administrative keys.
type KeyVerifier interface {
	Verify(key string) error
}

// RequireAPIKey guards administrative routes.
func RequireAPIKey(verifier KeyVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "API key required"})
			return
		}
		if err := verifier.Verify(key); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid API key"})
			return
		}
		c.Next()
	}
}
