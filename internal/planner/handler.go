package planner

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"islaapp-backend/internal/builder"
	"islaapp-backend/internal/requirements"
	"islaapp-backend/internal/shared/server/respond"
)

// Evaluator derives requirements for a selection.
type Evaluator interface {
	Evaluate(ctx context.Context, sel requirements.Selection) builder.Evaluation
}

type Handler struct {
	Planner   *Planner
	Evaluator Evaluator
}

func NewHandler(p *Planner, evaluator Evaluator) *Handler {
	return &Handler{Planner: p, Evaluator: evaluator}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai-build", h.build)
}

type buildRequest struct {
	Prompt string `json:"prompt"`
	Owner  string `json:"owner"`
}

type buildResponse struct {
	OK           bool                        `json:"ok"`
	Source       string                      `json:"source"`
	Draft        Plan                        `json:"draft"`
	Note         string                      `json:"note,omitempty"`
	Requirements *builder.EvaluationResponse `json:"requirements,omitempty"`
}

func (h *Handler) build(c *gin.Context) {
	var req buildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Request body must be a JSON object", nil)
		return
	}

	res, err := h.Planner.Plan(c.Request.Context(), req.Prompt, req.Owner)
	if err != nil {
		if errors.Is(err, ErrPromptTooShort) {
			respond.Error(c, http.StatusBadRequest, "invalid_input", "Prompt must be at least 6 characters.", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to generate build plan", nil)
		return
	}

	out := buildResponse{OK: true, Source: res.Source, Draft: res.Plan, Note: res.Note}
	if h.Evaluator != nil {
		eval := builder.ToEvaluationResponse(h.Evaluator.Evaluate(c.Request.Context(), res.Plan.Selection()))
		out.Requirements = &eval
	}
	respond.OK(c, out)
}
