package factory

import (
	"context"
	"fmt"

	"multichat-be/pkg/llm"
	"multichat-be/pkg/llm/gemini"
	"multichat-be/pkg/llm/openai"
)

// NewProvider builds a single provider backend by name.
func NewProvider(providerType, apiKey string) (llm.Provider, error) {
	switch providerType {
	case llm.ProviderOpenAI:
		return openai.NewOpenAIProvider(apiKey), nil
	case llm.ProviderGoogle:
		return gemini.NewGeminiProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", providerType)
	}
}

// Gateway routes generation requests to the provider named by the model
// descriptor. Providers are registered once at startup; asking for an
// unregistered provider at request time is a configuration error.
type Gateway struct {
	providers map[string]llm.Provider
}

// Ensure Gateway implements Generator
var _ llm.Generator = &Gateway{}

// NewGateway registers one backend per configured provider. A missing API
// key leaves that provider unregistered rather than failing startup.
func NewGateway(openAIKey, geminiKey string) *Gateway {
	providers := make(map[string]llm.Provider)
	if openAIKey != "" {
		providers[llm.ProviderOpenAI] = openai.NewOpenAIProvider(openAIKey)
	}
	if geminiKey != "" {
		providers[llm.ProviderGoogle] = gemini.NewGeminiProvider(geminiKey)
	}
	return &Gateway{providers: providers}
}

func (g *Gateway) Generate(ctx context.Context, history []llm.Message, model llm.ModelDescriptor, onChunk llm.ChunkFunc) (string, error) {
	provider, ok := g.providers[model.Provider]
	if !ok {
		return "", fmt.Errorf("unsupported model provider: %s", model.Provider)
	}

	text, err := provider.Generate(ctx, history, model.APIModel, onChunk)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	return text, nil
}
