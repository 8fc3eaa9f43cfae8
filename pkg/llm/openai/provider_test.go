package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"multichat-be/pkg/llm"
)

func newTestProvider(url string) *OpenAIProvider {
	p := NewOpenAIProvider("test-key")
	p.BaseURL = url
	return p
}

func TestGenerateStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if !req.Stream {
			t.Errorf("Stream = false, want true")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n")
		fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprintf(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)

	var chunks []string
	got, err := p.Generate(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, "gpt-4o", func(c string) {
		chunks = append(chunks, c)
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if got != "Hello" {
		t.Errorf("result = %q, want %q", got, "Hello")
	}
	if len(chunks) != 2 || chunks[0] != "Hel" || chunks[1] != "lo" {
		t.Errorf("chunks = %v, want [Hel lo]", chunks)
	}
}

func TestGenerateBlocking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Errorf("Stream = true, want false")
		}
		// Sender roles must be translated to the OpenAI vocabulary.
		if req.Messages[1].Role != "assistant" {
			t.Errorf("bot role mapped to %q, want assistant", req.Messages[1].Role)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Hi there"}},
			},
		})
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)

	history := []llm.Message{
		{Role: "user", Content: "hi"},
		{Role: "bot", Content: "hello"},
		{Role: "user", Content: "how are you"},
	}
	got, err := p.Generate(context.Background(), history, "gpt-4o-mini", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Hi there" {
		t.Errorf("result = %q, want %q", got, "Hi there")
	}
}

func TestGenerateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key"}}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)

	_, err := p.Generate(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, "gpt-4o", nil)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
}
