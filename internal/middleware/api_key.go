package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waymarker/waymarker-backend/internal/common"
)

// APIKeyAuth authenticates write requests against the single configured key.
// Checks the X-API-Key header or api_key query parameter. An empty configured
// key disables authentication, for local development only.
func APIKeyAuth(configuredKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if configuredKey == "" {
			c.Next()
			return
		}

		key := c.GetHeader("X-API-Key")
		if key == "" {
			key = c.Query("api_key")
		}
		if key == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "API key required", nil)
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(configuredKey)) != 1 {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid API key", common.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}
