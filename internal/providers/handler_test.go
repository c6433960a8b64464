package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"islaapp-backend/internal/shared/server/middleware"
)

type tokenAuth map[string]middleware.Principal

func (a tokenAuth) Authenticate(ctx context.Context, token string) (middleware.Principal, error) {
	p, ok := a[token]
	if !ok {
		return middleware.Principal{}, errors.New("unknown token")
	}
	return p, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	svc := NewService(catalog, NewMemoryRepo(), nil)
	svc.Resolver.Getenv = func(string) string { return "" }

	r := gin.New()
	r.Use(middleware.Identity(middleware.IdentityConfig{Authenticator: tokenAuth{
		"admin":  {ID: "u1", Role: "admin", Source: "session"},
		"viewer": {ID: "u2", Role: "viewer", Source: "session"},
	}}))
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r, svc
}

func doRequest(r *gin.Engine, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestProviderConfigRequiresAdmin(t *testing.T) {
	r, _ := newTestRouter(t)
	if resp := doRequest(r, http.MethodGet, "/api/v1/provider-config", "", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if resp := doRequest(r, http.MethodGet, "/api/v1/provider-config", "viewer", nil); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestProviderConfigSaveAndHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	body := []byte(`{"values":{"NEON_API_KEY":"neon_secret_1234","OPENAI_API_KEY":"","BOGUS":"x","DYNADOT_AUTO_REGISTER":true}}`)
	resp := doRequest(r, http.MethodPost, "/api/v1/provider-config", "admin", body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var saved SettingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if saved.Message != "Provider settings saved." {
		t.Fatalf("unexpected message %q", saved.Message)
	}
	if saved.Values["NEON_API_KEY"] != "************1234" || saved.Values["DYNADOT_AUTO_REGISTER"] != "****" {
		t.Fatalf("unexpected values %v", saved.Values)
	}
	if len(saved.SavedKeys) != 2 || saved.SavedKeys[0] != "DYNADOT_AUTO_REGISTER" {
		t.Fatalf("unexpected keys %v", saved.SavedKeys)
	}

	resp = doRequest(r, http.MethodGet, "/api/v1/provider-health", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !HealthMap(health.Providers)["neon"] {
		t.Fatalf("neon should be configured after save")
	}
}

func TestProviderConfigRejectsMissingValues(t *testing.T) {
	r, _ := newTestRouter(t)
	resp := doRequest(r, http.MethodPost, "/api/v1/provider-config", "admin", []byte(`{"other":1}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestProviderCatalogRoute(t *testing.T) {
	r, _ := newTestRouter(t)
	resp := doRequest(r, http.MethodGet, "/api/v1/providers", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var c struct {
		Currency  string     `json:"currency"`
		Providers []Provider `json:"providers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Currency != "USD" || len(c.Providers) < 4 {
		t.Fatalf("unexpected catalog %+v", c)
	}
}
