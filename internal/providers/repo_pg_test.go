package providers

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow("NEON_API_KEY", "n").
		AddRow("LEGACY_KEY", "x").
		AddRow("OPENAI_API_KEY", "")
	mock.ExpectQuery("SELECT key, value FROM provider_settings").WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got["NEON_API_KEY"] != "n" {
		t.Fatalf("unexpected values %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoApply(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO provider_settings").
		WithArgs("NEON_API_KEY", "n").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO provider_settings").
		WithArgs("RENDER_API_KEY", "r").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM provider_settings").
		WithArgs("OPENAI_API_KEY").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT key, value FROM provider_settings").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow("NEON_API_KEY", "n").
			AddRow("RENDER_API_KEY", "r"))
	mock.ExpectCommit()

	repo := &PGRepo{DB: db}
	got, err := repo.Apply(context.Background(), SettingsChange{
		Set:    map[string]string{"RENDER_API_KEY": "r", "NEON_API_KEY": "n"},
		Remove: []string{"OPENAI_API_KEY"},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected values %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
