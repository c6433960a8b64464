package servicerequests

import (
	"errors"
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
	rg.POST("/service-requests", h.create)
	rg.GET("/service-requests", middleware.RequireRole(auth.RoleViewer), h.list)
	rg.GET("/service-requests/:id", middleware.RequireRole(auth.RoleViewer), h.get)
	rg.POST("/service-requests/:id/status", middleware.RequireRole(auth.RoleAdmin), h.updateStatus)
	rg.POST("/service-requests/:id/provision", middleware.RequireRole(auth.RoleAdmin), h.provision)
	rg.POST("/service-requests/:id/provisioning-results", middleware.RequireRole(auth.RoleAdmin), h.results)
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.Svc.Create(c.Request.Context(), CreateInput{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Company:      req.Company,
		ProjectName:  req.ProjectName,
		Notes:        req.Notes,
		Items:        req.Items,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.LogServiceRequestKey, r.ID)
	respond.Created(c, requestResponse{OK: true, Request: r})
}

func (h *Handler) list(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 500 {
		limit = 500
	}
	requests, err := h.Svc.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if requests == nil {
		requests = []ServiceRequest{}
	}
	respond.OK(c, listResponse{OK: true, Requests: requests})
}

func (h *Handler) get(c *gin.Context) {
	r, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, requestResponse{OK: true, Request: r})
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	id := c.Param("id")
	c.Set(middleware.LogServiceRequestKey, id)
	r, previous, err := h.Svc.UpdateStatus(c.Request.Context(), id, req.Status, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	if previous != r.Status {
		c.Set(middleware.LogStatusChangeKey, string(previous)+"->"+string(r.Status))
	}
	respond.OK(c, requestResponse{OK: true, Request: r})
}

func (h *Handler) provision(c *gin.Context) {
	var req provisionRequest
	if !bindJSON(c, &req) {
		return
	}
	id := c.Param("id")
	c.Set(middleware.LogServiceRequestKey, id)
	r, msg, err := h.Svc.Provision(c.Request.Context(), ProvisionInput{
		RequestID:   id,
		DomainName:  req.DomainName,
		Region:      req.Region,
		RetryFailed: req.RetryFailed,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	indexes := msg.ItemIndexes
	if indexes == nil {
		indexes = []int{}
	}
	respond.JSON(c, http.StatusAccepted, provisionResponse{
		OK:      true,
		Request: r,
		Job: jobResponse{
			DomainName:  msg.DomainName,
			Region:      msg.Region,
			RetryFailed: msg.RetryFailed,
			ItemIndexes: indexes,
			EnqueuedAt:  msg.EnqueuedAt,
		},
	})
}

func (h *Handler) results(c *gin.Context) {
	var req resultsRequest
	if !bindJSON(c, &req) {
		return
	}
	id := c.Param("id")
	c.Set(middleware.LogServiceRequestKey, id)
	r, summary, err := h.Svc.RecordResults(c.Request.Context(), id, req.Results)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, resultsResponse{OK: true, Request: r, Summary: summary})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Request body must be a JSON object", nil)
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Error(c, http.StatusBadRequest, "invalid_input", verr.Message, nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Request not found", nil)
	case errors.Is(err, ErrQueue):
		respond.Error(c, http.StatusServiceUnavailable, "queue_unavailable", "Provisioning queue unavailable", nil)
	case errors.Is(err, ErrNotProvisioning):
		respond.Error(c, http.StatusConflict, "not_provisioning", "Request is not provisioning", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", "Request could not be saved, retry", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to process service request", nil)
	}
}
