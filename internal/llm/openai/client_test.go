package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o-mini", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func withServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	oldURL := apiURL
	apiURL = server.URL
	t.Cleanup(func() {
		apiURL = oldURL
		server.Close()
	})
}

func TestCompleteJSONSendsBearerAndJSONMode(t *testing.T) {
	var gotAuth string
	var payload map[string]any
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"template\":\"Marketplace\"}"}}]}`))
	})

	client, err := NewClient(context.Background(), "sk-test", "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	raw, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if !strings.Contains(string(raw), "Marketplace") {
		t.Fatalf("unexpected content %s", raw)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if payload["model"] != defaultModel {
		t.Fatalf("expected default model, got %v", payload["model"])
	}
	format, _ := payload["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected json_object format, got %v", payload["response_format"])
	}
	if payload["temperature"] != 0.2 {
		t.Fatalf("expected temperature 0.2, got %v", payload["temperature"])
	}
}

func TestCompleteJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "api error", body: `{"error":{"message":"bad key","type":"invalid_request_error"}}`},
		{name: "no choices", body: `{"choices":[]}`},
		{name: "empty content", body: `{"choices":[{"message":{"content":"  "}}]}`},
		{name: "not json", body: `{"choices":[{"message":{"content":"hello"}}]}`},
		{name: "garbage", body: `<html>`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			withServer(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			client, err := NewClient(context.Background(), "sk-test", "gpt-4o-mini")
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			if _, err := client.CompleteJSON(context.Background(), "s", "u"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), " ", "gpt-4o-mini"); err == nil {
		t.Fatalf("expected error without key")
	}
}
