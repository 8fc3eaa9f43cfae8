package llm

import (
	"context"
)

// Message represents a chat turn in a provider-agnostic format.
// Role carries the internal sender vocabulary ("user" or "bot"); each
// provider maps it to its own role names ("assistant", "model", ...).
type Message struct {
	Role    string
	Content string
}

// ChunkFunc receives incremental text fragments while a streaming
// generation is in progress. Fragments arrive in generation order.
type ChunkFunc func(chunk string)

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// Provider defines the contract for a single model vendor backend.
// When onChunk is nil the provider issues one blocking request and returns
// the complete text. When onChunk is non-nil it opens a streaming request,
// invokes the callback for every non-empty fragment and returns the full
// accumulated string once the stream ends.
type Provider interface {
	Generate(ctx context.Context, history []Message, apiModel string, onChunk ChunkFunc, options ...Option) (string, error)
}

// Generator is the gateway surface the chat service depends on: it routes
// an ordered history plus a model descriptor to the matching provider.
type Generator interface {
	Generate(ctx context.Context, history []Message, model ModelDescriptor, onChunk ChunkFunc) (string, error)
}
