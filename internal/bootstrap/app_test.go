package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"islaapp-backend/internal/queue"
	"islaapp-backend/internal/shared/config"
)

func buildTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("OPENAI_API_KEY", "")
	app, err := Build(config.Config{
		Env:             "dev",
		LocalStoreDir:   t.TempDir(),
		CORSAllowOrigin: []string{"http://localhost:3000"},
		AdminAPIToken:   "ops-token",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return app
}

func serve(app *App, method, path string, headers map[string]string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

func TestBuildFallsBackToMemory(t *testing.T) {
	app := buildTestApp(t)
	if app.DB != nil {
		t.Fatalf("expected no database in dev without DATABASE_URL")
	}
	if _, ok := app.Queue.(*queue.MemoryClient); !ok {
		t.Fatalf("expected memory queue, got %T", app.Queue)
	}

	if resp := serve(app, http.MethodGet, "/api/v1/health", nil, ""); resp.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", resp.Code)
	}
	resp := serve(app, http.MethodGet, "/metrics", nil, "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "# TYPE") {
		t.Fatalf("metrics: unexpected response %d %q", resp.Code, resp.Body.String())
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	if _, err := Build(config.Config{Env: "production", LocalStoreDir: t.TempDir()}); err == nil {
		t.Fatalf("expected DATABASE_URL error in production")
	}
}

func TestBuildRequiresQueueOutsideDev(t *testing.T) {
	_, err := Build(config.Config{
		Env:           "production",
		DatabaseURL:   "postgres://islaapp@127.0.0.1:1/islaapp",
		LocalStoreDir: t.TempDir(),
	})
	if err == nil || !strings.Contains(err.Error(), "QUEUE_URL") {
		t.Fatalf("expected QUEUE_URL error in production, got %v", err)
	}
	if strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("database url was set, got %v", err)
	}

	if _, err := buildQueue(context.Background(), config.Config{Env: "staging"}); err == nil {
		t.Fatalf("expected buildQueue to refuse the memory queue outside dev")
	}
	client, err := buildQueue(context.Background(), config.Config{Env: "dev"})
	if err != nil || client == nil {
		t.Fatalf("dev should fall back to the memory queue: %v", err)
	}
}

func TestRoutesAreWired(t *testing.T) {
	app := buildTestApp(t)
	admin := map[string]string{"X-Admin-Token": "ops-token"}

	tests := []struct {
		name    string
		method  string
		path    string
		headers map[string]string
		body    string
		status  int
	}{
		{"catalog", http.MethodGet, "/api/v1/providers", nil, "", http.StatusOK},
		{"health", http.MethodGet, "/api/v1/provider-health", nil, "", http.StatusOK},
		{"settings need admin", http.MethodGet, "/api/v1/provider-config", nil, "", http.StatusUnauthorized},
		{"settings with admin token", http.MethodGet, "/api/v1/provider-config", admin, "", http.StatusOK},
		{"builder options", http.MethodGet, "/api/v1/builder/options", nil, "", http.StatusOK},
		{"requirements", http.MethodGet, "/api/v1/builder/requirements?stack=React%20%2B%20Supabase&target=MVP%20in%201%20month", nil, "", http.StatusOK},
		{"draft needs identity", http.MethodGet, "/api/v1/builder/draft", nil, "", http.StatusUnauthorized},
		{"ai build", http.MethodPost, "/api/v1/ai-build", nil, `{"prompt":"Landing page for a bakery"}`, http.StatusOK},
		{"projects list", http.MethodGet, "/api/v1/projects", nil, "", http.StatusOK},
		{"service requests need viewer", http.MethodGet, "/api/v1/service-requests", nil, "", http.StatusUnauthorized},
		{"auth config", http.MethodGet, "/api/v1/auth/config", nil, "", http.StatusOK},
		{"admin health", http.MethodGet, "/api/v1/admin/health", map[string]string{"Authorization": "Bearer junk"}, "", http.StatusOK},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			resp := serve(app, tt.method, tt.path, tt.headers, tt.body)
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestServiceRequestProvisionFlow(t *testing.T) {
	app := buildTestApp(t)
	admin := map[string]string{"X-Admin-Token": "ops-token"}

	resp := serve(app, http.MethodPost, "/api/v1/service-requests", nil, `{"customerName":"Dana","email":"dana@example.com",
"projectName":"Bakery","items":[{"providerId":"neon","serviceId":"serverless-postgres","planId":"launch","billingCycle":"monthly"}]}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		Request struct {
			ID string `json:"requestId"`
		} `json:"request"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp = serve(app, http.MethodPost, "/api/v1/service-requests/"+created.Request.ID+"/provision", admin, `{}`)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("provision: expected 202, got %d: %s", resp.Code, resp.Body.String())
	}
	sent := app.Queue.(*queue.MemoryClient).Messages()
	if len(sent) != 1 || sent[0].ServiceRequestID != created.Request.ID {
		t.Fatalf("unexpected queued messages %+v", sent)
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	app := buildTestApp(t)
	var last int
	for i := 0; i < 6; i++ {
		last = serve(app, http.MethodPost, "/api/v1/auth/login", nil, `{"username":"nobody","password":"whatever1"}`).Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", last)
	}
}
