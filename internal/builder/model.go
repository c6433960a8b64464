package builder

import (
	"fmt"
	"strings"
	"time"

	"islaapp-backend/internal/requirements"
)

const (
	maxPromptLength = 4000
	maxFieldLength  = 160
	maxFeatures     = 24
)

// Draft is the saved onboarding form for one caller.
type Draft struct {
	OwnerID     string    `json:"ownerId"`
	ProjectName string    `json:"projectName"`
	Owner       string    `json:"owner"`
	Template    string    `json:"template"`
	Stack       string    `json:"stack"`
	Target      string    `json:"target"`
	Features    []string  `json:"features"`
	Prompt      string    `json:"prompt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Selection returns the part of the draft the requirements engine reads.
func (d Draft) Selection() requirements.Selection {
	return requirements.Selection{
		Stack:    d.Stack,
		Target:   d.Target,
		Features: append([]string(nil), d.Features...),
	}
}

// normalize trims fields, canonicalizes known options and dedupes features.
func (d Draft) normalize() (Draft, error) {
	out := Draft{
		OwnerID:     strings.TrimSpace(d.OwnerID),
		ProjectName: strings.TrimSpace(d.ProjectName),
		Owner:       strings.TrimSpace(d.Owner),
		Template:    canonical(d.Template, requirements.TemplateOptions),
		Stack:       canonical(d.Stack, requirements.StackOptions),
		Target:      canonical(d.Target, requirements.TargetOptions),
		Features:    normalizeFeatures(d.Features),
		Prompt:      strings.TrimSpace(d.Prompt),
		UpdatedAt:   d.UpdatedAt,
	}
	if out.OwnerID == "" {
		return Draft{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	for name, v := range map[string]string{
		"projectName": out.ProjectName,
		"owner":       out.Owner,
		"template":    out.Template,
		"stack":       out.Stack,
		"target":      out.Target,
	} {
		if len(v) > maxFieldLength {
			return Draft{}, fmt.Errorf("%w: %s is too long", ErrInvalidInput, name)
		}
	}
	if len(out.Prompt) > maxPromptLength {
		return Draft{}, fmt.Errorf("%w: prompt is too long", ErrInvalidInput)
	}
	if len(out.Features) > maxFeatures {
		return Draft{}, fmt.Errorf("%w: too many features", ErrInvalidInput)
	}
	return out, nil
}

func canonical(value string, options []string) string {
	value = strings.TrimSpace(value)
	if match := requirements.MatchOption(value, options); match != "" {
		return match
	}
	return value
}

// normalizeFeatures drops blank and case-insensitive duplicate entries, keeping order.
func normalizeFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, f := range in {
		f = canonical(f, requirements.FeatureOptions)
		if f == "" {
			continue
		}
		key := strings.ToLower(f)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}
