package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"islaapp-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	LogServiceRequestKey = "serviceRequestId"
	LogProjectSlugKey    = "projectSlug"
	LogStatusChangeKey   = "statusTransition"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"is_guest":    c.GetBool(isGuestKey),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if role := c.GetString(roleKey); role != "" {
			fields["role"] = role
		}
		for key, field := range map[string]string{
			LogServiceRequestKey: "service_request_id",
			LogProjectSlugKey:    "project_slug",
			LogStatusChangeKey:   "status_transition",
		} {
			if v := c.GetString(key); v != "" {
				fields[field] = v
			}
		}
		telemetry.Info("request.complete", fields)
	}
}
