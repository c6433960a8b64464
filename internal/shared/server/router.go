package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"islaapp-backend/internal/services/health"
	"islaapp-backend/internal/shared/config"
	"islaapp-backend/internal/shared/metrics"
	"islaapp-backend/internal/shared/server/middleware"
	"islaapp-backend/internal/shared/server/respond"
)

const apiPrefix = "/api/v1"

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers and identity resolver for NewRouter.
type RouterDeps struct {
	Config        config.Config
	Authenticator middleware.Authenticator
	Handlers      []RouteRegistrar
	Health        *health.Service
	RateLimits    map[string]middleware.RateLimitRule
}

// DefaultRateLimits limits credential guessing and write-heavy endpoints.
func DefaultRateLimits() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		"AUTH":  {Rate: 0.2, Burst: 5},
		"WRITE": {Rate: 1, Burst: 20},
	}
}

var rateLimitRoutes = map[string]string{
	"POST " + apiPrefix + "/auth/login":       "AUTH",
	"POST " + apiPrefix + "/auth/bootstrap":   "AUTH",
	"POST " + apiPrefix + "/service-requests": "WRITE",
	"POST " + apiPrefix + "/projects":         "WRITE",
	"POST " + apiPrefix + "/ai-build":         "WRITE",
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	limits := deps.RateLimits
	if limits == nil {
		limits = DefaultRateLimits()
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Identity(middleware.IdentityConfig{
			Authenticator: deps.Authenticator,
			LenientPaths: []string{
				apiPrefix + "/auth/session",
				apiPrefix + "/auth/logout",
				apiPrefix + "/admin/health",
			},
		}),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    limits,
			GroupFor: middleware.GroupByRoute(rateLimitRoutes),
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group(apiPrefix)
	api.GET("/health", healthHandler(deps.Health))
	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	return r
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		st := svc.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
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
