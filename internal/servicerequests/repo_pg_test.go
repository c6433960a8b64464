package servicerequests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var requestColumnNames = []string{
	"id", "created_at", "updated_at", "customer_name", "email", "company", "project_name", "notes", "items",
	"total_monthly", "total_yearly", "total", "currency", "status", "history", "provisioning",
}

func TestPGRepoCreateConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("INSERT INTO service_requests").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	if err := repo.Create(context.Background(), ServiceRequest{ID: "SRV-20260101-0001"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoMutateLocksAndUpdates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM service_requests WHERE id = \\$1 FOR UPDATE").
		WithArgs("SRV-20260101-0001").
		WillReturnRows(sqlmock.NewRows(requestColumnNames).AddRow(
			"SRV-20260101-0001", created, created, "Dana", "dana@example.com", nil, "Bakery", nil,
			[]byte(`[{"providerId":"render","serviceId":"managed-web-hosting","planId":"pro","billingCycle":"monthly","unitPrice":25}]`),
			25.0, 0.0, 25.0, "USD", "submitted",
			[]byte(`[{"status":"submitted","timestamp":"2026-01-01T09:00:00Z","reason":"request created"}]`),
			[]byte(`[]`),
		))
	mock.ExpectExec("UPDATE service_requests").
		WithArgs("SRV-20260101-0001", "approved", sqlmock.AnyArg(), []byte(`[]`), later).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.Mutate(context.Background(), "SRV-20260101-0001", func(r *ServiceRequest) error {
		r.applyStatus(StatusApproved, "looks good", later)
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if got.Status != StatusApproved || len(got.StatusHistory) != 2 || got.Items[0].UnitPrice != 25 {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.Company != "" || got.Notes != "" {
		t.Fatalf("null columns should scan empty: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoMutateRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("SRV-missing").
		WillReturnRows(sqlmock.NewRows(requestColumnNames))
	mock.ExpectRollback()

	if _, err := repo.Mutate(context.Background(), "SRV-missing", func(*ServiceRequest) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoIDsWithPrefix(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("starts_with").
		WithArgs("SRV-20260101-").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("SRV-20260101-0001").AddRow("SRV-20260101-0007"))
	ids, err := repo.IDsWithPrefix(context.Background(), "SRV-20260101-")
	if err != nil {
		t.Fatalf("IDsWithPrefix: %v", err)
	}
	if len(ids) != 2 || ids[1] != "SRV-20260101-0007" {
		t.Fatalf("unexpected ids %v", ids)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
