package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"islaapp-backend/internal/shared/auth"
)

func newTestService(t *testing.T, adminToken string) *Service {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-secret")
	svc := NewService(NewMemoryRepo(), adminToken)
	svc.Iterations = 1000
	return svc
}

func TestBootstrapOnlyOnce(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()

	required, err := svc.BootstrapRequired(ctx)
	if err != nil || !required {
		t.Fatalf("expected bootstrap required, got %v %v", required, err)
	}
	res, err := svc.Bootstrap(ctx, "  Owner.One ", "supersecret")
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if res.User.Username != "owner.one" || res.User.Role != auth.RoleOwner || res.Token == "" {
		t.Fatalf("unexpected bootstrap result %+v", res.User)
	}
	if _, err := svc.Bootstrap(ctx, "second", "supersecret"); !errors.Is(err, ErrBootstrapClosed) {
		t.Fatalf("expected ErrBootstrapClosed, got %v", err)
	}

	p, err := svc.Authenticate(ctx, res.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.ID != res.User.ID || p.Role != auth.RoleOwner || p.Source != SourceSession {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestCredentialValidation(t *testing.T) {
	svc := newTestService(t, "")
	tests := []struct {
		name     string
		username string
		password string
		msg      string
	}{
		{"short username", "ab", "supersecret", "username must be at least 3 characters"},
		{"bad chars", "bad name", "supersecret", "username can only contain letters, numbers, dot, dash, and underscore"},
		{"no password", "owner", "", "password is required"},
		{"short password", "owner", "short", "password must be at least 8 characters"},
		{"long password", "owner", string(make([]byte, 129)), "password must be 128 characters or fewer"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Bootstrap(context.Background(), tt.username, tt.password)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Message != tt.msg {
				t.Fatalf("expected %q, got %v", tt.msg, err)
			}
		})
	}
}

func TestLoginAndLogout(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()
	if _, err := svc.Bootstrap(ctx, "owner", "supersecret"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if _, err := svc.Login(ctx, "owner", "wrongpass"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected bad credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "supersecret"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected bad credentials for unknown user, got %v", err)
	}

	res, err := svc.Login(ctx, "OWNER", "supersecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User.LastLoginAt == nil {
		t.Fatalf("expected lastLoginAt to be set")
	}
	users, _ := svc.ListUsers(ctx)
	if len(users) != 1 || users[0].LastLoginAt == nil {
		t.Fatalf("expected stored lastLoginAt, got %+v", users)
	}

	if _, err := svc.Authenticate(ctx, res.Token); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if err := svc.Logout(ctx, res.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, res.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected revoked token, got %v", err)
	}
	if err := svc.Logout(ctx, "not-a-token"); err != nil {
		t.Fatalf("Logout with junk token: %v", err)
	}
}

func TestExpiredSessionRejected(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()
	res, err := svc.Bootstrap(ctx, "owner", "supersecret")
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	svc.Now = func() time.Time { return time.Now().Add(13 * time.Hour) }
	if _, err := svc.Authenticate(ctx, res.Token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected expired session rejected, got %v", err)
	}
}

func TestAdminToken(t *testing.T) {
	svc := newTestService(t, "ops-token")
	p, err := svc.Authenticate(context.Background(), "ops-token")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.ID != AdminTokenPrincipal || p.Role != auth.RoleOwner || p.Source != SourceAdminToken {
		t.Fatalf("unexpected principal %+v", p)
	}
	if _, err := svc.Authenticate(context.Background(), "ops-tokem"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !svc.RequiresAdminToken() {
		t.Fatalf("expected admin token required")
	}
}

func TestCreateUser(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, "viewer.one", "supersecret", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Role != auth.RoleViewer {
		t.Fatalf("expected default viewer role, got %q", u.Role)
	}
	if _, err := svc.CreateUser(ctx, "Viewer.One", "supersecret", "admin"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	_, err = svc.CreateUser(ctx, "root", "supersecret", "superuser")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Message != "Invalid role" {
		t.Fatalf("expected invalid role, got %v", err)
	}
}
