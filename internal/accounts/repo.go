package accounts

import (
	"context"
	"time"
)

type Repo interface {
	CountUsers(ctx context.Context) (int, error)
	// CreateFirstUser stores u only while no users exist; otherwise ErrBootstrapClosed.
	CreateFirstUser(ctx context.Context, u User) error
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error

	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) error
}
