package factory

import (
	"context"
	"testing"

	"multichat-be/pkg/llm"
)

func TestNewProviderUnsupported(t *testing.T) {
	_, err := NewProvider(llm.ProviderAnthropic, "key")
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestGatewayUnsupportedProvider(t *testing.T) {
	g := NewGateway("", "")

	_, err := g.Generate(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, llm.ModelDescriptor{
		ID:       "claude",
		Provider: llm.ProviderAnthropic,
		APIModel: "claude-3",
	}, nil)
	if err == nil {
		t.Fatal("expected error for unregistered provider")
	}
}

func TestCatalogDefault(t *testing.T) {
	def := llm.DefaultModel()
	if _, ok := llm.Lookup(def.ID); !ok {
		t.Errorf("default model %q not present in catalog", def.ID)
	}
}
