package accounts

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"islaapp-backend/internal/shared/server/middleware"
)

func newTestRouter(t *testing.T, adminToken string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := newTestService(t, adminToken)
	r := gin.New()
	r.Use(middleware.Identity(middleware.IdentityConfig{
		Authenticator: svc,
		LenientPaths:  []string{"/api/v1/auth/session", "/api/v1/auth/logout", "/api/v1/admin/health"},
	}))
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
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

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestAuthFlow(t *testing.T) {
	r := newTestRouter(t, "")

	cfg := decode[configResponse](t, doRequest(r, http.MethodGet, "/api/v1/auth/config", "", nil))
	if !cfg.BootstrapRequired || cfg.RequiresAdminToken || cfg.SessionHours != 12 {
		t.Fatalf("unexpected config %+v", cfg)
	}

	resp := doRequest(r, http.MethodPost, "/api/v1/auth/bootstrap", "", []byte(`{"username":"owner","password":"supersecret"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	boot := decode[loginResponse](t, resp)
	if boot.SessionToken == "" || boot.User.Role != "owner" {
		t.Fatalf("unexpected bootstrap response %+v", boot)
	}
	if bytes.Contains(resp.Body.Bytes(), []byte("pbkdf2")) {
		t.Fatalf("password hash leaked")
	}

	if resp := doRequest(r, http.MethodPost, "/api/v1/auth/bootstrap", "", []byte(`{"username":"again","password":"supersecret"}`)); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on second bootstrap, got %d", resp.Code)
	}

	sess := decode[sessionResponse](t, doRequest(r, http.MethodGet, "/api/v1/auth/session", boot.SessionToken, nil))
	if !sess.Authenticated || sess.User == nil || sess.User.Username != "owner" || sess.User.Source != "session" {
		t.Fatalf("unexpected session %+v", sess)
	}

	resp = doRequest(r, http.MethodPost, "/api/v1/auth/users", boot.SessionToken, []byte(`{"username":"viewer1","password":"supersecret","role":"viewer"}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(r, http.MethodPost, "/api/v1/auth/login", "", []byte(`{"username":"viewer1","password":"supersecret"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	viewer := decode[loginResponse](t, resp)
	if resp := doRequest(r, http.MethodGet, "/api/v1/auth/users", viewer.SessionToken, nil); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer, got %d", resp.Code)
	}
	health := decode[adminHealthResponse](t, doRequest(r, http.MethodGet, "/api/v1/admin/health", viewer.SessionToken, nil))
	if health.Authorized || health.Role != "viewer" {
		t.Fatalf("viewer should not be admin-authorized: %+v", health)
	}

	users := decode[usersResponse](t, doRequest(r, http.MethodGet, "/api/v1/auth/users", boot.SessionToken, nil))
	if len(users.Users) != 2 {
		t.Fatalf("expected 2 users, got %+v", users.Users)
	}

	if resp := doRequest(r, http.MethodPost, "/api/v1/auth/logout", boot.SessionToken, nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	sess = decode[sessionResponse](t, doRequest(r, http.MethodGet, "/api/v1/auth/session", boot.SessionToken, nil))
	if sess.Authenticated {
		t.Fatalf("expected logged-out session to be anonymous")
	}
	if resp := doRequest(r, http.MethodGet, "/api/v1/auth/users", boot.SessionToken, nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.Code)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	r := newTestRouter(t, "")
	doRequest(r, http.MethodPost, "/api/v1/auth/bootstrap", "", []byte(`{"username":"owner","password":"supersecret"}`))
	resp := doRequest(r, http.MethodPost, "/api/v1/auth/login", "", []byte(`{"username":"owner","password":"nope"}`))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAdminTokenHeader(t *testing.T) {
	r := newTestRouter(t, "ops-token")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/health", nil)
	req.Header.Set("X-Admin-Token", "ops-token")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	health := decode[adminHealthResponse](t, resp)
	if !health.Authorized || !health.RequiresAdminToken || health.Role != "owner" || health.Username != "token-admin" {
		t.Fatalf("unexpected health %+v", health)
	}
}
