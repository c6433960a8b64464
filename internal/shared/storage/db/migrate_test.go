package db

import (
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	names, err := MigrationNames()
	if err != nil {
		t.Fatalf("MigrationNames: %v", err)
	}
	want := []string{
		"migrations/00001_provider_settings.sql",
		"migrations/00002_builder_drafts.sql",
		"migrations/00003_projects.sql",
		"migrations/00004_service_requests.sql",
		"migrations/00005_admin_accounts.sql",
	}
	if len(names) != len(want) {
		t.Fatalf("expected %d migrations, got %v", len(want), names)
	}
	for i, name := range names {
		if name != want[i] {
			t.Fatalf("migration %d: expected %s, got %s", i, want[i], name)
		}
		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(body), "-- +goose Up") || !strings.Contains(string(body), "-- +goose Down") {
			t.Fatalf("%s is missing goose annotations", name)
		}
	}
}
