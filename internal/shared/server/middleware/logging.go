package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/telemetry"
)

// StatusTransitionKey is the context key handlers use to report the final workflow transition.
const StatusTransitionKey = "statusTransition"

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		statusTransition := ""
		if raw, ok := c.Get(StatusTransitionKey); ok {
			if s, ok := raw.(string); ok {
				statusTransition = s
			}
		}

		telemetry.Info("request.complete", map[string]any{
			"request_id":        RequestIDFromContext(c),
			"method":            c.Request.Method,
			"path":              c.Request.URL.Path,
			"status":            c.Writer.Status(),
			"status_transition": statusTransition,
			"duration_ms":       float64(latency.Microseconds()) / 1000.0,
			"client_ip":         c.ClientIP(),
			"user_agent":        c.Request.UserAgent(),
		})
	}
}
