package accounts

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"islaapp-backend/internal/shared/auth"
	"islaapp-backend/internal/shared/server/middleware"
	"islaapp-backend/internal/shared/telemetry"
)

const (
	SessionTTL = 12 * time.Hour

	AdminTokenPrincipal = "system_admin_token"
	adminTokenUsername  = "token-admin"

	SourceSession    = "session"
	SourceAdminToken = "admin_token"
)

type Service struct {
	Repo       Repo
	AdminToken string
	SessionTTL time.Duration
	// Iterations overrides the PBKDF2 work factor for new hashes.
	Iterations int
	Now        func() time.Time
}

func NewService(repo Repo, adminToken string) *Service {
	return &Service{
		Repo:       repo,
		AdminToken: strings.TrimSpace(adminToken),
		SessionTTL: SessionTTL,
		Iterations: passwordIterations,
		Now:        time.Now,
	}
}

// LoginResult is a user plus a freshly signed session token.
type LoginResult struct {
	User  User
	Token string
}

func (s *Service) BootstrapRequired(ctx context.Context) (bool, error) {
	n, err := s.Repo.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (s *Service) RequiresAdminToken() bool {
	return s.AdminToken != ""
}

// Bootstrap creates the first owner account. It fails once any user exists.
func (s *Service) Bootstrap(ctx context.Context, username, password string) (LoginResult, error) {
	required, err := s.BootstrapRequired(ctx)
	if err != nil {
		return LoginResult{}, err
	}
	if !required {
		return LoginResult{}, ErrBootstrapClosed
	}
	u, err := s.newUser(username, password, auth.RoleOwner)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.Repo.CreateFirstUser(ctx, u); err != nil {
		return LoginResult{}, err
	}
	telemetry.Info("accounts.bootstrap", map[string]any{"username": u.Username})
	return s.startSession(ctx, u)
}

func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = normalizeUsername(username)
	if err := validateCredentials(username, password, false); err != nil {
		return LoginResult{}, err
	}
	u, err := s.Repo.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return LoginResult{}, ErrBadCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !CheckPassword(password, u.PasswordHash) {
		telemetry.Warn("accounts.login_failed", map[string]any{"username": username})
		return LoginResult{}, ErrBadCredentials
	}
	now := s.Now().UTC()
	if err := s.Repo.TouchLogin(ctx, u.ID, now); err != nil {
		return LoginResult{}, err
	}
	u.LastLoginAt = &now
	u.UpdatedAt = now
	return s.startSession(ctx, u)
}

// Logout revokes the session behind token. Unknown or invalid tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := auth.VerifyJWT(strings.TrimSpace(token))
	if err != nil || claims.Sid == "" {
		return nil
	}
	return s.Repo.DeleteSession(ctx, claims.Sid)
}

func (s *Service) CreateUser(ctx context.Context, username, password, role string) (User, error) {
	if strings.TrimSpace(role) == "" {
		role = auth.RoleViewer
	}
	u, err := s.newUser(username, password, role)
	if err != nil {
		return User{}, err
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return User{}, err
	}
	telemetry.Info("accounts.user_created", map[string]any{"username": u.Username, "role": u.Role})
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.Repo.ListUsers(ctx)
}

// Authenticate resolves the admin API token or a session token.
func (s *Service) Authenticate(ctx context.Context, token string) (middleware.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return middleware.Principal{}, ErrUnauthorized
	}
	if s.AdminToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminToken)) == 1 {
		return middleware.Principal{
			ID:       AdminTokenPrincipal,
			Username: adminTokenUsername,
			Role:     auth.RoleOwner,
			Source:   SourceAdminToken,
		}, nil
	}

	claims, err := auth.VerifyJWT(token)
	if err != nil || claims.Sid == "" {
		return middleware.Principal{}, ErrUnauthorized
	}
	sess, err := s.Repo.GetSession(ctx, claims.Sid)
	if errors.Is(err, ErrNotFound) {
		return middleware.Principal{}, ErrUnauthorized
	}
	if err != nil {
		return middleware.Principal{}, err
	}
	if sess.UserID != claims.Sub || sess.expired(s.Now().UTC()) {
		return middleware.Principal{}, ErrUnauthorized
	}
	u, err := s.Repo.GetUser(ctx, sess.UserID)
	if errors.Is(err, ErrNotFound) {
		return middleware.Principal{}, ErrUnauthorized
	}
	if err != nil {
		return middleware.Principal{}, err
	}
	return middleware.Principal{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		Source:   SourceSession,
	}, nil
}

func (s *Service) newUser(username, password, role string) (User, error) {
	username = normalizeUsername(username)
	if err := validateCredentials(username, password, true); err != nil {
		return User{}, err
	}
	role, ok := auth.NormalizeRole(role)
	if !ok {
		return User{}, invalid("Invalid role")
	}
	hash, err := HashPassword(password, s.Iterations)
	if err != nil {
		return User{}, err
	}
	now := s.Now().UTC()
	return User{
		ID:           uuid.NewString(),
		Username:     username,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *Service) startSession(ctx context.Context, u User) (LoginResult, error) {
	now := s.Now().UTC()
	if err := s.Repo.DeleteExpiredSessions(ctx, now); err != nil {
		telemetry.Warn("accounts.session_cleanup_failed", map[string]any{"error": err.Error()})
	}
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = SessionTTL
	}
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.Repo.CreateSession(ctx, sess); err != nil {
		return LoginResult{}, err
	}
	token, err := auth.SignJWT(auth.Claims{
		Sub:      u.ID,
		Username: u.Username,
		Role:     u.Role,
		Sid:      sess.ID,
		Iat:      now.Unix(),
		Exp:      sess.ExpiresAt.Unix(),
	})
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: u, Token: token}, nil
}

var _ middleware.Authenticator = (*Service)(nil)
