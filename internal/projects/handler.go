package projects

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

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
	rg.POST("/projects", h.create)
	rg.GET("/projects", h.list)
	rg.GET("/projects/:slug/files/*path", h.file)
}

type createRequest struct {
	ProjectName string   `json:"projectName"`
	Owner       string   `json:"owner"`
	Template    string   `json:"template"`
	Stack       string   `json:"stack"`
	Target      string   `json:"target"`
	Features    []string `json:"features"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Request body must be a JSON object", nil)
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), CreateInput{
		ProjectName: req.ProjectName,
		Owner:       req.Owner,
		Template:    req.Template,
		Stack:       req.Stack,
		Target:      req.Target,
		Features:    req.Features,
	}, middleware.UserIDFromContext(c))
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			respond.Error(c, http.StatusBadRequest, "invalid_input", verr.Message, nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal", "Failed to create project", nil)
		}
		return
	}
	c.Set(middleware.LogProjectSlugKey, p.Slug)
	respond.Created(c, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 200 {
		limit = 200
	}
	projects, err := h.Svc.List(c.Request.Context(), limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to list projects", nil)
		return
	}
	if projects == nil {
		projects = []Project{}
	}
	respond.OK(c, gin.H{"ok": true, "projects": projects})
}

func (h *Handler) file(c *gin.Context) {
	slug := c.Param("slug")
	rel := strings.TrimPrefix(c.Param("path"), "/")
	rc, contentType, err := h.Svc.OpenFile(c.Request.Context(), slug, rel)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "File not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to load file", nil)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", contentType)
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}
