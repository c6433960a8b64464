package projects

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(newTestService(t)).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestHandlerCreateListAndServe(t *testing.T) {
	r := newTestRouter(t)

	body := `{"projectName":"Bakery","owner":"Sam","template":"Marketplace","stack":"Node API + React Frontend","target":"MVP in 1 month","features":["Payments and billing"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		OK      bool    `json:"ok"`
		Project Project `json:"project"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !created.OK || created.Project.Slug != "bakery" || created.Project.PreviewPath != "web/index.html" {
		t.Fatalf("unexpected project %+v", created.Project)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"slug":"bakery"`) {
		t.Fatalf("unexpected list %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/projects/bakery/files/api/server.js", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "express") {
		t.Fatalf("unexpected file %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/javascript") {
		t.Fatalf("unexpected content type %q", ct)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/projects/bakery/files/nope.txt", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestHandlerCreateValidation(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", bytes.NewBufferString(`{"projectName":"x","owner":"y","template":"z","stack":"s","target":"t","features":[]}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest || !strings.Contains(resp.Body.String(), "features must be a non-empty array") {
		t.Fatalf("unexpected response %d: %s", resp.Code, resp.Body.String())
	}
}
