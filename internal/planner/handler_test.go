package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"islaapp-backend/internal/builder"
	"islaapp-backend/internal/requirements"
)

type fixedHealth requirements.HealthMap

func (f fixedHealth) HealthMap(ctx context.Context) (requirements.HealthMap, error) {
	return requirements.HealthMap(f), nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	p, _ := newTestPlanner(staticSettings{}, &stubCompleter{})
	evaluator := builder.NewService(builder.NewMemoryRepo(), fixedHealth{"render": true})
	NewHandler(p, evaluator).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestBuildHandler(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai-build",
		bytes.NewBufferString(`{"prompt":"Landing page for a bakery","owner":"Sam"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var out buildResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.OK || out.Source != SourceFallback || out.Draft.Stack != requirements.StackStatic || out.Draft.Owner != "Sam" {
		t.Fatalf("unexpected response %+v", out)
	}
	if out.Requirements == nil || out.Requirements.Summary.RequiredCount != 4 || out.Requirements.Summary.RequiredReadyCount != 1 {
		t.Fatalf("unexpected requirements %+v", out.Requirements)
	}
}

func TestBuildHandlerShortPrompt(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai-build", bytes.NewBufferString(`{"prompt":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("Prompt must be at least 6 characters.")) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}
