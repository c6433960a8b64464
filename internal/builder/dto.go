package builder

import (
	"islaapp-backend/internal/requirements"
)

type OptionsResponse struct {
	Templates []string `json:"templates"`
	Features  []string `json:"features"`
	Stacks    []string `json:"stacks"`
	Targets   []string `json:"targets"`
}

type DraftRequest struct {
	ProjectName string   `json:"projectName"`
	Owner       string   `json:"owner"`
	Template    string   `json:"template"`
	Stack       string   `json:"stack"`
	Target      string   `json:"target"`
	Features    []string `json:"features"`
	Prompt      string   `json:"prompt"`
}

type RequirementResponse struct {
	requirements.Requirement
	State requirements.State `json:"state"`
}

type SummaryResponse struct {
	RequiredCount      int                   `json:"requiredCount"`
	RequiredReadyCount int                   `json:"requiredReadyCount"`
	MissingRequired    []RequirementResponse `json:"missingRequired"`
}

type EvaluationResponse struct {
	Selection    requirements.Selection `json:"selection"`
	Requirements []RequirementResponse  `json:"requirements"`
	Summary      SummaryResponse        `json:"summary"`
	Providers    requirements.HealthMap `json:"providers"`
}

// ToEvaluationResponse attaches display state to each requirement.
func ToEvaluationResponse(e Evaluation) EvaluationResponse {
	sel := e.Selection
	if sel.Features == nil {
		sel.Features = []string{}
	}
	providers := e.Providers
	if providers == nil {
		providers = requirements.HealthMap{}
	}
	return EvaluationResponse{
		Selection:    sel,
		Requirements: withState(e.Requirements),
		Summary: SummaryResponse{
			RequiredCount:      e.Summary.RequiredCount,
			RequiredReadyCount: e.Summary.RequiredReadyCount,
			MissingRequired:    withState(e.Summary.MissingRequired),
		},
		Providers: providers,
	}
}

func withState(reqs []requirements.Requirement) []RequirementResponse {
	out := make([]RequirementResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, RequirementResponse{Requirement: r, State: requirements.StateOf(r)})
	}
	return out
}
