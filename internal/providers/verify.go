package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"islaapp-backend/internal/shared/metrics"
)

// VerifyTarget is an authenticated identity endpoint for one provider.
type VerifyTarget struct {
	URL      string
	TokenKey string
}

// DefaultVerifyTargets lists the providers that accept a bearer token.
func DefaultVerifyTargets() map[string]VerifyTarget {
	return map[string]VerifyTarget{
		"render":   {URL: "https://api.render.com/v1/owners?limit=1", TokenKey: "RENDER_API_KEY"},
		"supabase": {URL: "https://api.supabase.com/v1/organizations", TokenKey: "SUPABASE_ACCESS_TOKEN"},
		"neon":     {URL: "https://console.neon.tech/api/v2/projects?limit=1", TokenKey: "NEON_API_KEY"},
		"openai":   {URL: "https://api.openai.com/v1/models", TokenKey: "OPENAI_API_KEY"},
	}
}

// Verifier checks stored credentials against provider APIs.
type Verifier struct {
	Targets map[string]VerifyTarget
	Timeout time.Duration
	// Base is the transport-level client; nil uses http.DefaultClient.
	Base *http.Client
}

func NewVerifier(timeout time.Duration) *Verifier {
	return &Verifier{Targets: DefaultVerifyTargets(), Timeout: timeout}
}

// Supports reports whether id has a verification endpoint.
func (v *Verifier) Supports(id string) bool {
	if v == nil {
		return false
	}
	_, ok := v.Targets[id]
	return ok
}

// Verify issues one authenticated GET for provider id. A 2xx response means the
// credential works; anything else is returned as an error.
func (v *Verifier) Verify(ctx context.Context, id string, env func(string) string) error {
	target, ok := v.Targets[id]
	if !ok {
		return fmt.Errorf("no verification endpoint for %s", id)
	}
	token := strings.TrimSpace(env(target.TokenKey))
	if token == "" {
		return fmt.Errorf("%s is not set", target.TokenKey)
	}

	timeout := v.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if v.Base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, v.Base)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	metrics.ObserveProviderVerifyMs(float64(time.Since(start).Microseconds()) / 1000.0)
	if err != nil {
		return fmt.Errorf("%s verification request: %w", id, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s rejected credentials: status %d", id, resp.StatusCode)
	}
	return nil
}
