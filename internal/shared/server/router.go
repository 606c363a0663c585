package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/quota"
	"resume-tailor/internal/recommendations"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/services/health"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
)

const (
	rateLimitDefault    = "DEFAULT"
	rateLimitGeneration = "GENERATION"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config                 config.Config
	Health                 *health.Service
	ResumeHandler          *resumes.Handler
	RecommendationsHandler *recommendations.Handler
	QuotaHandler           *quota.Handler
	RateLimiter            *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	cfg := deps.Config

	r.Use(
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		body, ok := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, body)
	})

	authed := api.Group("")
	authed.Use(
		middleware.Auth(cfg.IsDevLike()),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: rateLimitDefault,
			GroupFor:     rateLimitGroup,
			Limiter:      deps.RateLimiter,
			Rules: map[string]middleware.RateLimitRule{
				rateLimitDefault:    {Rate: 10, Burst: 30},
				rateLimitGeneration: {Rate: 0.2, Burst: 3},
			},
		}),
	)
	registerMeRoutes(authed)
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(authed)
	}
	if deps.RecommendationsHandler != nil {
		deps.RecommendationsHandler.RegisterRoutes(authed)
	}
	if deps.QuotaHandler != nil {
		deps.QuotaHandler.RegisterRoutes(authed)
		if cfg.IsDevLike() {
			deps.QuotaHandler.RegisterDevRoutes(authed.Group("/dev"))
		}
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	switch c.FullPath() {
	case "/api/v1/resumes/:id/recommendations", "/api/v1/resumes/recommend":
		return rateLimitGeneration
	default:
		return rateLimitDefault
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
