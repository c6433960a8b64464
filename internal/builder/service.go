package builder

import (
	"context"
	"time"

	"islaapp-backend/internal/requirements"
	"islaapp-backend/internal/shared/metrics"
	"islaapp-backend/internal/shared/telemetry"
)

// HealthSource supplies a fresh provider configuration snapshot.
type HealthSource interface {
	HealthMap(ctx context.Context) (requirements.HealthMap, error)
}

// Evaluation is a selection together with its derived requirements.
type Evaluation struct {
	Selection    requirements.Selection
	Requirements []requirements.Requirement
	Summary      requirements.Summary
	Providers    requirements.HealthMap
}

type Service struct {
	Repo   Repo
	Health HealthSource
	Now    func() time.Time
}

func NewService(repo Repo, health HealthSource) *Service {
	return &Service{Repo: repo, Health: health, Now: time.Now}
}

// Evaluate derives requirements for sel against the current provider health.
// When health is unavailable every provider is treated as unconfigured.
func (s *Service) Evaluate(ctx context.Context, sel requirements.Selection) Evaluation {
	health := requirements.HealthMap{}
	if s.Health != nil {
		snapshot, err := s.Health.HealthMap(ctx)
		if err != nil {
			telemetry.Warn("builder.health_unavailable", map[string]any{"error": err})
		} else if snapshot != nil {
			health = snapshot
		}
	}

	reqs := requirements.Derive(sel, health)
	metrics.IncRequirementEvaluations()
	return Evaluation{
		Selection:    sel,
		Requirements: reqs,
		Summary:      requirements.Summarize(reqs),
		Providers:    health,
	}
}

// EvaluateDraft evaluates the saved draft of ownerID.
func (s *Service) EvaluateDraft(ctx context.Context, ownerID string) (Evaluation, error) {
	d, err := s.GetDraft(ctx, ownerID)
	if err != nil {
		return Evaluation{}, err
	}
	return s.Evaluate(ctx, d.Selection()), nil
}

func (s *Service) GetDraft(ctx context.Context, ownerID string) (Draft, error) {
	if ownerID == "" {
		return Draft{}, ErrInvalidInput
	}
	return s.Repo.Get(ctx, ownerID)
}

// SaveDraft normalizes and stores the draft, replacing any previous one.
func (s *Service) SaveDraft(ctx context.Context, d Draft) (Draft, error) {
	d, err := d.normalize()
	if err != nil {
		return Draft{}, err
	}
	d.UpdatedAt = s.Now().UTC()
	if err := s.Repo.Save(ctx, d); err != nil {
		return Draft{}, err
	}
	return d, nil
}
