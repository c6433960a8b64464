package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"islaapp-backend/internal/llm/openai"
	"islaapp-backend/internal/requirements"
	"islaapp-backend/internal/shared/metrics"
	"islaapp-backend/internal/shared/telemetry"
)

const (
	SourceOpenAI   = "openai"
	SourceFallback = "fallback"

	minPromptLength = 6
	maxPromptLength = 4000
)

var ErrPromptTooShort = errors.New("prompt too short")

// Completer returns a JSON object completion.
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string) (json.RawMessage, error)
}

// CompleterFactory builds a completer for a resolved API key and model.
type CompleterFactory func(ctx context.Context, apiKey, model string) (Completer, error)

// SettingLookup resolves provider settings such as OPENAI_API_KEY.
type SettingLookup interface {
	Lookup(ctx context.Context, key string) (string, error)
}

// Result is a plan with the path that produced it.
type Result struct {
	Source string `json:"source"`
	Plan   Plan   `json:"draft"`
	Note   string `json:"note,omitempty"`
}

type Planner struct {
	Settings     SettingLookup
	NewCompleter CompleterFactory
	DefaultModel string
}

func New(settings SettingLookup, defaultModel string) *Planner {
	return &Planner{
		Settings:     settings,
		DefaultModel: defaultModel,
		NewCompleter: func(ctx context.Context, apiKey, model string) (Completer, error) {
			return openai.NewClient(ctx, apiKey, model)
		},
	}
}

// Plan drafts a selection for prompt. Model failures degrade to the heuristic
// plan with an explanatory note; only an invalid prompt is an error.
func (p *Planner) Plan(ctx context.Context, prompt, owner string) (Result, error) {
	prompt = strings.TrimSpace(prompt)
	if len(prompt) < minPromptLength {
		return Result{}, ErrPromptTooShort
	}
	if len(prompt) > maxPromptLength {
		prompt = prompt[:maxPromptLength]
	}
	owner = strings.TrimSpace(owner)

	res := p.plan(ctx, prompt, owner)
	metrics.IncPlan(res.Source)
	fields := map[string]any{"source": res.Source}
	if res.Note != "" {
		fields["note"] = res.Note
	}
	telemetry.Info("planner.plan", fields)
	return res, nil
}

func (p *Planner) plan(ctx context.Context, prompt, owner string) Result {
	fallback := Fallback(prompt, owner)
	withNote := func(note string) Result {
		return Result{Source: SourceFallback, Plan: fallback, Note: note}
	}

	apiKey, model := p.credentials(ctx)
	if apiKey == "" || p.NewCompleter == nil {
		return withNote("OPENAI_API_KEY is not configured. Using local AI fallback.")
	}

	client, err := p.NewCompleter(ctx, apiKey, model)
	if err != nil {
		return withNote(fmt.Sprintf("OpenAI request failed. Using fallback. Details: %v", err))
	}

	raw, err := client.CompleteJSON(ctx, systemPrompt(), userPrompt(prompt, owner))
	switch {
	case errors.Is(err, openai.ErrEmptyContent):
		return withNote("OpenAI returned empty content. Using fallback.")
	case errors.Is(err, openai.ErrInvalidJSON):
		return withNote("OpenAI response was not valid JSON. Using fallback.")
	case err != nil:
		return withNote(fmt.Sprintf("OpenAI request failed. Using fallback. Details: %v", err))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return withNote("OpenAI response shape invalid. Using fallback.")
	}
	return Result{Source: SourceOpenAI, Plan: normalizePlan(fields, fallback)}
}

func (p *Planner) credentials(ctx context.Context) (string, string) {
	model := p.DefaultModel
	if p.Settings == nil {
		return "", model
	}
	apiKey, err := p.Settings.Lookup(ctx, "OPENAI_API_KEY")
	if err != nil {
		telemetry.Warn("planner.settings_unavailable", map[string]any{"error": err})
		return "", model
	}
	if m, err := p.Settings.Lookup(ctx, "OPENAI_MODEL"); err == nil && m != "" {
		model = m
	}
	return apiKey, model
}

func systemPrompt() string {
	return "You are an app planning assistant for islaAPP. Return only valid JSON with keys: " +
		"projectName, template, features, stack, target, owner, summary, nextSteps. " +
		"Use only these templates: " + strings.Join(requirements.TemplateOptions, ", ") +
		". Use only these features: " + strings.Join(requirements.FeatureOptions, ", ") +
		". Use only these stacks: " + strings.Join(requirements.StackOptions, ", ") +
		". Use only these targets: " + strings.Join(requirements.TargetOptions, ", ") +
		". nextSteps must be an array of 3 short strings."
}

func userPrompt(prompt, owner string) string {
	if owner == "" {
		owner = defaultOwner
	}
	return fmt.Sprintf("Client request: %s\nOwner: %s\nGenerate best first draft plan.", prompt, owner)
}
