package accounts

import (
	"regexp"
	"strings"
	"time"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
	maxPasswordLength = 128
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]+$`)

// User is an admin account. PasswordHash never leaves the package in responses.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Role         string     `json:"role"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
}

// Session backs a signed session token; deleting it revokes the token.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// validateCredentials checks the username and password shape. Login skips
// the minimum password length so older short passwords still reach the hash check.
func validateCredentials(username, password string, enforceMinimum bool) error {
	switch {
	case len(username) < minUsernameLength:
		return invalid("username must be at least 3 characters")
	case !usernamePattern.MatchString(username):
		return invalid("username can only contain letters, numbers, dot, dash, and underscore")
	case password == "":
		return invalid("password is required")
	case enforceMinimum && len(password) < minPasswordLength:
		return invalid("password must be at least 8 characters")
	case len(password) > maxPasswordLength:
		return invalid("password must be 128 characters or fewer")
	}
	return nil
}
