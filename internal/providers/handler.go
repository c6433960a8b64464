package providers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"islaapp-backend/internal/shared/auth"
	"islaapp-backend/internal/shared/server/middleware"
	"islaapp-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/providers", h.catalog)
	rg.GET("/provider-health", h.health)
	rg.GET("/provider-config", middleware.RequireRole(auth.RoleAdmin), h.getSettings)
	rg.POST("/provider-config", middleware.RequireRole(auth.RoleAdmin), h.updateSettings)
}

func (h *Handler) catalog(c *gin.Context) {
	respond.OK(c, h.Svc.Catalog)
}

func (h *Handler) health(c *gin.Context) {
	verify, _ := strconv.ParseBool(c.Query("verify"))
	statuses, err := h.Svc.Health(c.Request.Context(), verify)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to load provider health", nil)
		return
	}
	respond.OK(c, HealthResponse{OK: true, Providers: statuses})
}

func (h *Handler) getSettings(c *gin.Context) {
	values, keys, err := h.Svc.Settings(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to load provider settings", nil)
		return
	}
	respond.OK(c, SettingsResponse{OK: true, Values: values, SavedKeys: keys})
}

func (h *Handler) updateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Request body must be a JSON object", nil)
		return
	}
	if req.Values == nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "values must be an object", nil)
		return
	}

	values := make(map[string]*string, len(req.Values))
	for k, raw := range req.Values {
		var s string
		switch v := raw.(type) {
		case nil:
		case string:
			s = v
		default:
			s = fmt.Sprint(v)
		}
		values[k] = &s
	}

	masked, keys, err := h.Svc.UpdateSettings(c.Request.Context(), values)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to save provider settings", nil)
		return
	}
	respond.OK(c, SettingsResponse{OK: true, Values: masked, SavedKeys: keys, Message: "Provider settings saved."})
}
