package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// InternalAPIKey guards internal endpoints such as catalog import. The
// X-API-Key header must match apiKey; an empty apiKey disables the routes.
func InternalAPIKey(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"ok": false, "error": gin.H{"code": "INTERNAL_API_NOT_CONFIGURED", "message": "Internal endpoints are not configured", "retryable": false}})
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"ok": false, "error": gin.H{"code": "INVALID_API_KEY", "message": "Invalid or missing API key", "retryable": false}})
			return
		}
		c.Next()
	}
}
