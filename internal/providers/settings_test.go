package providers

import (
	"context"
	"reflect"
	"testing"
)

func TestMask(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  ", ""},
		{"abc", "***"},
		{"abcd", "****"},
		{"sk-123456", "*****3456"},
		{"  rnd_abcdef  ", "******cdef"},
	}
	for _, tt := range tests {
		tt := tt
		if got := Mask(tt.in); got != tt.want {
			t.Fatalf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func strPtr(s string) *string { return &s }

func TestPlanSettingsChange(t *testing.T) {
	change := PlanSettingsChange(map[string]*string{
		"RENDER_API_KEY":  strPtr("  rnd_1  "),
		"NEON_API_KEY":    strPtr("   "),
		"OPENAI_API_KEY":  nil,
		"NOT_A_PROVIDER":  strPtr("x"),
		"DYNADOT_API_KEY": strPtr("dyn"),
	})
	wantSet := map[string]string{"RENDER_API_KEY": "rnd_1", "DYNADOT_API_KEY": "dyn"}
	if !reflect.DeepEqual(change.Set, wantSet) {
		t.Fatalf("unexpected set %v", change.Set)
	}
	if !reflect.DeepEqual(change.Remove, []string{"NEON_API_KEY", "OPENAI_API_KEY"}) {
		t.Fatalf("unexpected remove %v", change.Remove)
	}
}

func TestMaskAllSortsKeys(t *testing.T) {
	masked, keys := MaskAll(map[string]string{
		"SUPABASE_ORG_ID": "org-12345",
		"NEON_API_KEY":    "neon",
		"UNKNOWN":         "zzz",
	})
	if !reflect.DeepEqual(keys, []string{"NEON_API_KEY", "SUPABASE_ORG_ID"}) {
		t.Fatalf("unexpected keys %v", keys)
	}
	if masked["SUPABASE_ORG_ID"] != "*****2345" || masked["NEON_API_KEY"] != "****" {
		t.Fatalf("unexpected masked %v", masked)
	}
	if _, ok := masked["UNKNOWN"]; ok {
		t.Fatalf("unknown key should be dropped")
	}
}

func TestMemoryRepoApply(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	if _, err := repo.Apply(ctx, SettingsChange{Set: map[string]string{"NEON_API_KEY": "a", "OPENAI_API_KEY": "b"}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got, err := repo.Apply(ctx, SettingsChange{Set: map[string]string{}, Remove: []string{"NEON_API_KEY"}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]string{"OPENAI_API_KEY": "b"}) {
		t.Fatalf("unexpected values %v", got)
	}
}

func TestResolverPrefersEnvironment(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	_, _ = repo.Apply(ctx, SettingsChange{Set: map[string]string{"NEON_API_KEY": "stored", "OPENAI_API_KEY": "stored-openai"}})

	r := &Resolver{Repo: repo, Getenv: func(key string) string {
		if key == "NEON_API_KEY" {
			return " from-env "
		}
		return ""
	}}
	if v, _ := r.Lookup(ctx, "NEON_API_KEY"); v != "from-env" {
		t.Fatalf("expected env value, got %q", v)
	}
	if v, _ := r.Lookup(ctx, "OPENAI_API_KEY"); v != "stored-openai" {
		t.Fatalf("expected stored value, got %q", v)
	}
	if v, _ := r.Lookup(ctx, "RENDER_API_KEY"); v != "" {
		t.Fatalf("expected empty, got %q", v)
	}
}
