package service

import (
	"context"
)

// AIClient groups the generative and embedding capabilities the pipeline may
// call out to. Every method is best-effort: callers treat errors as a signal
// to take their non-generative fallback path, never as fatal.
type AIClient interface {
	// ClassifyIntent routes an ambiguous query to one of the four intent
	// labels. The returned string must be exactly one label.
	ClassifyIntent(ctx context.Context, query string) (string, error)

	// CreateEmbedding embeds a single text.
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)

	// Synthesize runs a chat completion with the given system instruction
	// and user content, returning the model text.
	Synthesize(ctx context.Context, system, user string) (string, error)

	// IsEnabled reports whether the client is configured and ready.
	IsEnabled() bool
}

// Ensure OpenAIClient implements AIClient
var _ AIClient = (*OpenAIClient)(nil)
