package providers

import (
	"sort"
	"strings"
)

// AllowedSettingKeys are the provider settings an operator may store.
var AllowedSettingKeys = map[string]struct{}{
	"RENDER_API_KEY":             {},
	"RENDER_SERVICE_REPO":        {},
	"RENDER_OWNER_ID":            {},
	"RENDER_OWNER_SLUG":          {},
	"RENDER_OWNER_NAME":          {},
	"RENDER_SERVICE_BRANCH":      {},
	"RENDER_SERVICE_REGION":      {},
	"RENDER_BUILD_COMMAND":       {},
	"RENDER_START_COMMAND":       {},
	"DYNADOT_API_KEY":            {},
	"DYNADOT_AUTO_REGISTER":      {},
	"DYNADOT_REGISTRATION_YEARS": {},
	"SUPABASE_ACCESS_TOKEN":      {},
	"SUPABASE_ORG_ID":            {},
	"SUPABASE_DB_PASS":           {},
	"SUPABASE_REGION":            {},
	"NEON_API_KEY":               {},
	"NEON_ORG_ID":                {},
	"NEON_REGION_ID":             {},
	"NEON_PG_VERSION":            {},
	"DEFAULT_REGION":             {},
	"DEFAULT_DB_PASSWORD":        {},
	"OPENAI_API_KEY":             {},
	"OPENAI_MODEL":               {},
}

// IsAllowedSetting reports whether key may be stored.
func IsAllowedSetting(key string) bool {
	_, ok := AllowedSettingKeys[key]
	return ok
}

// Mask hides all but the last four characters of a secret.
func Mask(value string) string {
	cleaned := strings.TrimSpace(value)
	n := len([]rune(cleaned))
	if n == 0 {
		return ""
	}
	if n <= 4 {
		return strings.Repeat("*", n)
	}
	runes := []rune(cleaned)
	return strings.Repeat("*", n-4) + string(runes[n-4:])
}

// SettingsChange is the normalized form of an update request.
type SettingsChange struct {
	Set    map[string]string
	Remove []string
}

// PlanSettingsChange keeps allow-listed keys: non-blank values are set, blank ones removed.
func PlanSettingsChange(values map[string]*string) SettingsChange {
	change := SettingsChange{Set: map[string]string{}}
	for key, raw := range values {
		if !IsAllowedSetting(key) {
			continue
		}
		val := ""
		if raw != nil {
			val = strings.TrimSpace(*raw)
		}
		if val == "" {
			change.Remove = append(change.Remove, key)
			continue
		}
		change.Set[key] = val
	}
	sort.Strings(change.Remove)
	return change
}

// MaskAll masks every value and returns the sorted key list.
func MaskAll(values map[string]string) (map[string]string, []string) {
	masked := make(map[string]string, len(values))
	keys := make([]string, 0, len(values))
	for k, v := range values {
		if !IsAllowedSetting(k) {
			continue
		}
		masked[k] = Mask(v)
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return masked, keys
}
