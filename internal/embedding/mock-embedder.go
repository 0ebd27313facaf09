package embedding

import (
	"context"
	"math"
	"sync"

	"github.com/hyperjump/resumerank/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests and offline runs. The same text always
// gets the same unit-length vector. It records every batch it receives.
type MockEmbedder struct {
	dimensions int
	model      string

	mu        sync.Mutex
	overrides map[string][]float32
	batches   [][]string
	err       error
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{
		dimensions: dimensions,
		model:      "mock",
		overrides:  make(map[string][]float32),
	}
}

// Set pins the vector returned for text.
func (e *MockEmbedder) Set(text string, vec []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.overrides[text] = append([]float32(nil), vec...)
}

// FailWith makes subsequent calls return err (nil restores normal behavior).
func (e *MockEmbedder) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

// Calls returns how many EmbedBatch calls were made.
func (e *MockEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.batches)
}

// Batches returns a copy of every batch received, in call order.
func (e *MockEmbedder) Batches() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]string, len(e.batches))
	for i, b := range e.batches {
		out[i] = append([]string(nil), b...)
	}
	return out
}

// EmbedBatch returns one deterministic vector per text.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batches = append(e.batches, append([]string(nil), texts...))
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := e.overrides[text]; ok {
			out[i] = append([]float32(nil), v...)
			continue
		}
		out[i] = e.vectorFor(text)
	}
	return out, nil
}

func (e *MockEmbedder) vectorFor(text string) []float32 {
	h := HashString(text)
	emb := make([]float32, e.dimensions)
	for i := range emb {
		emb[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
	}
	utils.NormalizeL2(emb)
	return emb
}

// Model returns "mock".
func (e *MockEmbedder) Model() string {
	return e.model
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}
