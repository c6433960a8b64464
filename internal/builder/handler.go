package builder

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"islaapp-backend/internal/requirements"
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
	b := rg.Group("/builder")
	b.GET("/options", h.options)
	b.GET("/draft", middleware.RequireIdentity(), h.getDraft)
	b.PUT("/draft", middleware.RequireIdentity(), h.saveDraft)
	b.GET("/requirements", h.requirementsFromQuery)
	b.POST("/requirements", h.requirementsFromBody)
}

func (h *Handler) options(c *gin.Context) {
	respond.OK(c, OptionsResponse{
		Templates: requirements.TemplateOptions,
		Features:  requirements.FeatureOptions,
		Stacks:    requirements.StackOptions,
		Targets:   requirements.TargetOptions,
	})
}

func (h *Handler) getDraft(c *gin.Context) {
	d, err := h.Svc.GetDraft(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, d)
}

func (h *Handler) saveDraft(c *gin.Context) {
	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Request body must be a JSON object", nil)
		return
	}
	d, err := h.Svc.SaveDraft(c.Request.Context(), Draft{
		OwnerID:     middleware.UserIDFromContext(c),
		ProjectName: req.ProjectName,
		Owner:       req.Owner,
		Template:    req.Template,
		Stack:       req.Stack,
		Target:      req.Target,
		Features:    req.Features,
		Prompt:      req.Prompt,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, d)
}

func (h *Handler) requirementsFromQuery(c *gin.Context) {
	if c.Query("source") == "draft" {
		ownerID := middleware.UserIDFromContext(c)
		if ownerID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}
		eval, err := h.Svc.EvaluateDraft(c.Request.Context(), ownerID)
		if err != nil {
			writeError(c, err)
			return
		}
		respond.OK(c, ToEvaluationResponse(eval))
		return
	}

	sel := requirements.Selection{
		Stack:    c.Query("stack"),
		Target:   c.Query("target"),
		Features: splitFeatures(c.QueryArray("features")),
	}
	respond.OK(c, ToEvaluationResponse(h.Svc.Evaluate(c.Request.Context(), sel)))
}

func (h *Handler) requirementsFromBody(c *gin.Context) {
	var sel requirements.Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Request body must be a JSON selection", nil)
		return
	}
	respond.OK(c, ToEvaluationResponse(h.Svc.Evaluate(c.Request.Context(), sel)))
}

// splitFeatures accepts repeated and comma-separated feature parameters.
func splitFeatures(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "No draft saved", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to process draft", nil)
	}
}
