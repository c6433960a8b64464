package builder

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"islaapp-backend/internal/requirements"
)

type stubHealth struct {
	health requirements.HealthMap
	err    error
}

func (s stubHealth) HealthMap(ctx context.Context) (requirements.HealthMap, error) {
	return s.health, s.err
}

func TestEvaluateUsesHealthSnapshot(t *testing.T) {
	svc := NewService(NewMemoryRepo(), stubHealth{health: requirements.HealthMap{"render": true, "supabase": true}})
	eval := svc.Evaluate(context.Background(), requirements.Selection{
		Stack:    "React + Supabase",
		Target:   "MVP in 1 month",
		Features: []string{"User authentication"},
	})

	if eval.Summary.RequiredCount != 5 || eval.Summary.RequiredReadyCount != 3 {
		t.Fatalf("unexpected summary %+v", eval.Summary)
	}
	var missing []string
	for _, r := range eval.Summary.MissingRequired {
		missing = append(missing, r.ID)
	}
	if !reflect.DeepEqual(missing, []string{requirements.IDGitHub, requirements.IDDomain}) {
		t.Fatalf("unexpected missing %v", missing)
	}
}

func TestEvaluateTreatsHealthFailureAsUnconfigured(t *testing.T) {
	svc := NewService(NewMemoryRepo(), stubHealth{err: errors.New("db down")})
	eval := svc.Evaluate(context.Background(), requirements.Selection{Stack: "HTML/CSS/JS"})
	if len(eval.Providers) != 0 {
		t.Fatalf("expected empty health map, got %v", eval.Providers)
	}
	for _, r := range eval.Requirements {
		if r.Ready {
			t.Fatalf("%s should not be ready without health", r.ID)
		}
	}
	if eval.Summary.RequiredCount != 2 {
		t.Fatalf("expected hosting and github, got %+v", eval.Summary)
	}
}

func TestSaveDraftNormalizes(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return fixed }

	saved, err := svc.SaveDraft(context.Background(), Draft{
		OwnerID:     "guest:1",
		ProjectName: "  Acme  ",
		Stack:       "react + supabase",
		Target:      "beta in 2 weeks",
		Features:    []string{"payments and billing", " ", "Payments and Billing", "Custom widget"},
	})
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if saved.ProjectName != "Acme" || saved.Stack != "React + Supabase" || saved.Target != "Beta in 2 weeks" {
		t.Fatalf("unexpected draft %+v", saved)
	}
	if !reflect.DeepEqual(saved.Features, []string{"Payments and billing", "Custom widget"}) {
		t.Fatalf("unexpected features %v", saved.Features)
	}
	if !saved.UpdatedAt.Equal(fixed) {
		t.Fatalf("unexpected updatedAt %v", saved.UpdatedAt)
	}

	got, err := svc.GetDraft(context.Background(), "guest:1")
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if !reflect.DeepEqual(got, saved) {
		t.Fatalf("stored draft differs: %+v vs %+v", got, saved)
	}
}

func TestSaveDraftRejectsInvalid(t *testing.T) {
	svc := NewService(NewMemoryRepo(), nil)
	tests := []struct {
		name  string
		draft Draft
	}{
		{"missing owner", Draft{ProjectName: "x"}},
		{"long prompt", Draft{OwnerID: "u", Prompt: string(make([]byte, maxPromptLength+1))}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SaveDraft(context.Background(), tt.draft); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestEvaluateDraftMissing(t *testing.T) {
	svc := NewService(NewMemoryRepo(), nil)
	if _, err := svc.EvaluateDraft(context.Background(), "guest:none"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
