package server

import (
	"github.com/gin-gonic/gin"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/assist"
	"resume-matcher/internal/services/health"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/server/respond"
)

// RouterDeps holds the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analyses.Handler
	AssistHandler   *assist.Handler
	Health          *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	switch deps.Config.Env {
	case "production", "staging":
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/metrics", metrics.Handler())
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, deps.Health.Status())
	})
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.AssistHandler != nil {
		deps.AssistHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":5000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
