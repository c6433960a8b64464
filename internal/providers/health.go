package providers

import (
	"strings"

	"islaapp-backend/internal/requirements"
)

// Status reports whether a provider's credentials are configured.
type Status struct {
	ID          string   `json:"id"`
	Configured  bool     `json:"configured"`
	Required    []string `json:"required"`
	Note        string   `json:"note,omitempty"`
	Verified    *bool    `json:"verified,omitempty"`
	VerifyError string   `json:"verifyError,omitempty"`
}

// Evaluate applies the credential rules for every known provider.
func Evaluate(env func(string) string) []Status {
	has := func(key string) bool { return strings.TrimSpace(env(key)) != "" }

	renderNote := ""
	if has("RENDER_OWNER_ID") || has("RENDER_API_KEY") {
		renderNote = "RENDER_OWNER_ID optional"
	}

	return []Status{
		{
			ID:         "render",
			Configured: has("RENDER_API_KEY") && has("RENDER_SERVICE_REPO"),
			Required:   []string{"RENDER_API_KEY", "RENDER_SERVICE_REPO"},
			Note:       renderNote,
		},
		{
			ID:         "dynadot",
			Configured: has("DYNADOT_API_KEY"),
			Required:   []string{"DYNADOT_API_KEY"},
			Note:       "Set DYNADOT_AUTO_REGISTER=true to place real registration orders.",
		},
		{
			ID:         "supabase",
			Configured: has("SUPABASE_ACCESS_TOKEN") && has("SUPABASE_ORG_ID"),
			Required:   []string{"SUPABASE_ACCESS_TOKEN", "SUPABASE_ORG_ID"},
		},
		{
			ID:         "neon",
			Configured: has("NEON_API_KEY"),
			Required:   []string{"NEON_API_KEY"},
		},
		{
			ID:         "openai",
			Configured: has("OPENAI_API_KEY"),
			Required:   []string{"OPENAI_API_KEY"},
			Note:       "Optional. Enables smarter AI planning in App Builder.",
		},
	}
}

// HealthMap reduces statuses to the lowercase id -> configured map the
// requirements engine consumes.
func HealthMap(statuses []Status) requirements.HealthMap {
	out := make(requirements.HealthMap, len(statuses))
	for _, s := range statuses {
		id := strings.ToLower(strings.TrimSpace(s.ID))
		if id == "" {
			continue
		}
		out[id] = s.Configured
	}
	return out
}
