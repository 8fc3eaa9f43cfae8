package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"multichat-be/pkg/llm"
)

func newTestProvider(url string) *GeminiProvider {
	p := NewGeminiProvider("test-key")
	p.BaseURL = url
	return p
}

func TestGenerateStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "streamGenerateContent") {
			t.Errorf("path = %q, want streamGenerateContent", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("x-goog-api-key = %q", got)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		// Bot turns must be mapped to the "model" role.
		if req.Contents[1].Role != "model" {
			t.Errorf("bot role mapped to %q, want model", req.Contents[1].Role)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Hel\"}],\"role\":\"model\"}}]}\n\n")
		fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"lo\"}],\"role\":\"model\"}}]}\n\n")
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)

	history := []llm.Message{
		{Role: "user", Content: "hi"},
		{Role: "bot", Content: "hello"},
		{Role: "user", Content: "greet me"},
	}

	var chunks []string
	got, err := p.Generate(context.Background(), history, "gemini-2.0-flash-exp", func(c string) {
		chunks = append(chunks, c)
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if got != "Hello" {
		t.Errorf("result = %q, want %q", got, "Hello")
	}
	if len(chunks) != 2 {
		t.Errorf("chunk count = %d, want 2", len(chunks))
	}
}

func TestGenerateBlocking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("path = %q, want :generateContent suffix", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "Hi "}, {"text": "there"}},
					"role":  "model",
				}},
			},
		})
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)

	got, err := p.Generate(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, "gemini-1.5-flash", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Hi there" {
		t.Errorf("result = %q, want %q", got, "Hi there")
	}
}

func TestGenerateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)

	_, err := p.Generate(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, "gemini-1.5-flash", nil)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
}
