package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const preflightMaxAge = "600"

// CORS sets CORS headers and handles preflight requests.
// A "*" entry allows any origin.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	origins := make(map[string]struct{})
	allowAny := false
	for _, o := range allowedOrigins {
		trimmed := strings.TrimSpace(o)
		switch trimmed {
		case "":
		case "*":
			allowAny = true
		default:
			origins[trimmed] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			_, ok := origins[origin]
			if ok || allowAny {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Vary", "Origin")
				h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
				h.Set("Access-Control-Expose-Headers", "X-Request-Id")
				h.Set("Access-Control-Max-Age", preflightMaxAge)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		c.Next()
	}
}
