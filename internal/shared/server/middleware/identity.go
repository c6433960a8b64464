package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"islaapp-backend/internal/shared/auth"
	"islaapp-backend/internal/shared/server/respond"
)

const (
	userIDKey     = "userId"
	usernameKey   = "username"
	roleKey       = "role"
	authSourceKey = "authSource"
	isGuestKey    = "isGuest"
)

// Principal is the caller identity attached to a request.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	Source   string `json:"source"`
	Guest    bool   `json:"guest"`
}

// Authenticator turns a bearer or admin token into a Principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}

// IdentityConfig configures the Identity middleware.
type IdentityConfig struct {
	Authenticator Authenticator
	// LenientPaths tolerate invalid credentials and continue anonymously.
	LenientPaths []string
}

// Identity resolves admin tokens, session tokens and guest headers into a Principal.
// Requests without any credential continue anonymously.
func Identity(cfg IdentityConfig) gin.HandlerFunc {
	lenient := make(map[string]struct{}, len(cfg.LenientPaths))
	for _, p := range cfg.LenientPaths {
		lenient[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token, malformed := credentialFrom(c)
		if malformed || token != "" {
			principal, err := authenticate(c, cfg.Authenticator, token, malformed)
			if err != nil {
				if _, ok := lenient[c.Request.URL.Path]; ok {
					c.Next()
					return
				}
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			setPrincipal(c, principal)
			c.Next()
			return
		}

		if guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id")); guestID != "" {
			setPrincipal(c, Principal{ID: "guest:" + guestID, Source: "guest", Guest: true})
		}
		c.Next()
	}
}

func credentialFrom(c *gin.Context) (string, bool) {
	if admin := strings.TrimSpace(c.GetHeader("X-Admin-Token")); admin != "" {
		return admin, false
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", true
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	return token, token == ""
}

func authenticate(c *gin.Context, a Authenticator, token string, malformed bool) (Principal, error) {
	if malformed || a == nil {
		return Principal{}, auth.ErrInvalidToken
	}
	return a.Authenticate(c.Request.Context(), token)
}

func setPrincipal(c *gin.Context, p Principal) {
	c.Set(userIDKey, p.ID)
	c.Set(isGuestKey, p.Guest)
	c.Set(authSourceKey, p.Source)
	if p.Username != "" {
		c.Set(usernameKey, p.Username)
	}
	if p.Role != "" {
		c.Set(roleKey, p.Role)
	}
}

// RequireIdentity rejects anonymous callers.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserIDFromContext(c) == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}
		c.Next()
	}
}

// RequireRole rejects callers whose admin role is below minimum.
func RequireRole(minimum string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)
		if !ok || p.Guest || p.Role == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Admin authentication required", nil)
			return
		}
		if !auth.HasRole(p.Role, minimum) {
			respond.Error(c, http.StatusForbidden, "forbidden", "Insufficient role", gin.H{"required": minimum})
			return
		}
		c.Next()
	}
}

// UserIDFromContext fetches the principal id set by Identity.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}

// PrincipalFromContext rebuilds the Principal set by Identity.
func PrincipalFromContext(c *gin.Context) (Principal, bool) {
	id := UserIDFromContext(c)
	if id == "" {
		return Principal{}, false
	}
	return Principal{
		ID:       id,
		Username: c.GetString(usernameKey),
		Role:     c.GetString(roleKey),
		Source:   c.GetString(authSourceKey),
		Guest:    c.GetBool(isGuestKey),
	}, true
}
