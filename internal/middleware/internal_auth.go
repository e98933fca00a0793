package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blog-comment-bot/internal/response"
)

// InternalAPIKeyHeader carries the shared key on trigger and admin calls
const InternalAPIKeyHeader = "X-Internal-API-Key"

// InternalAuth guards trigger and admin routes with a shared key, accepted in
// the X-Internal-API-Key header or as a bearer token. With no key configured
// the guard is open, which is only meant for local development.
func InternalAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		provided := c.GetHeader(InternalAPIKeyHeader)
		if provided == "" {
			parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				provided = strings.TrimSpace(parts[1])
			}
		}

		if provided == "" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "API key is required")
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid API key")
			c.Abort()
			return
		}

		c.Next()
	}
}
