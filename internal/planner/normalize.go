package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"islaapp-backend/internal/requirements"
)

// normalizePlan maps a model response onto the known vocabularies; anything
// missing or unknown takes the fallback value.
func normalizePlan(fields map[string]json.RawMessage, fallback Plan) Plan {
	return Plan{
		ProjectName: textOr(fields["projectName"], fallback.ProjectName),
		Template:    choice(fields["template"], requirements.TemplateOptions, fallback.Template),
		Features:    featureList(fields["features"], fallback.Features),
		Stack:       choice(fields["stack"], requirements.StackOptions, fallback.Stack),
		Target:      choice(fields["target"], requirements.TargetOptions, fallback.Target),
		Owner:       textOr(fields["owner"], fallback.Owner),
		Summary:     textOr(fields["summary"], fallback.Summary),
		NextSteps:   stringList(fields["nextSteps"], fallback.NextSteps),
	}
}

// text renders a scalar JSON value as a trimmed string.
func text(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64, bool:
		return strings.TrimSpace(fmt.Sprint(t))
	default:
		return ""
	}
}

func textOr(raw json.RawMessage, fallback string) string {
	if s := text(raw); s != "" {
		return s
	}
	return fallback
}

func choice(raw json.RawMessage, options []string, fallback string) string {
	if match := requirements.MatchOption(text(raw), options); match != "" {
		return match
	}
	return fallback
}

func featureList(raw json.RawMessage, fallback []string) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return fallback
	}
	var out []string
	seen := map[string]struct{}{}
	for _, item := range items {
		match := requirements.MatchOption(text(item), requirements.FeatureOptions)
		if match == "" {
			continue
		}
		if _, dup := seen[match]; dup {
			continue
		}
		seen[match] = struct{}{}
		out = append(out, match)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func stringList(raw json.RawMessage, fallback []string) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return fallback
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := text(item); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
