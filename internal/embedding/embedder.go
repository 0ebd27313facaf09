// Package embedding turns text into vectors through a remote (or local) model and
// layers a content-addressed cache in front of it.
package embedding

import (
	"context"
	"errors"
)

var (
	// ErrResultCount is returned when a provider answers with a different number of
	// vectors than inputs it was sent.
	ErrResultCount = errors.New("embedding provider returned wrong number of vectors")
	// ErrMissingAPIKey is returned when a remote provider is configured without credentials.
	ErrMissingAPIKey = errors.New("embedding provider api key is required")
	// ErrUnknownProvider is returned by NewEmbedder for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown embedding provider")
)

// Embedder produces vector embeddings for text. EmbedBatch issues a single request
// for the whole batch and returns one vector per input, in input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Model identifies the model producing the vectors; it is recorded next to cached entries.
	Model() string
	Close() error
}
