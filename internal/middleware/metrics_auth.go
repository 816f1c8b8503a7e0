package middleware

import (
	"net/http"
	"strings"

	"github.com/tolutally/matchbox-web/internal/util"

	"github.com/gin-gonic/gin"
)

const metricsRealm = `Bearer realm="Metrics"`

// MetricsAuthMiddleware guards the scrape endpoint with a static bearer
// token. An empty token leaves the endpoint open.
func MetricsAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		provided, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "Bearer token required")
			return
		}
		if !util.ConstantTimeEqual(provided, token) {
			abortUnauthorized(c, "Invalid token")
			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	return strings.TrimPrefix(header, prefix), true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", metricsRealm)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
}
