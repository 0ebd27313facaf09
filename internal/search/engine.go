// Package search ranks candidate embeddings against a free-text query.
package search

import (
	"context"
	"fmt"

	"github.com/hyperjump/resumerank/internal/embedding"
	"github.com/hyperjump/resumerank/internal/vector"
	"go.uber.org/zap"
)

// Engine embeds queries and ranks candidate vectors by cosine similarity.
type Engine struct {
	embedder *embedding.CachedEmbedder
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a search engine backed by embedder.
func NewEngine(embedder *embedding.CachedEmbedder, opts ...Option) *Engine {
	e := &Engine{embedder: embedder, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns candidate indices ordered by descending similarity to query.
func (e *Engine) Search(ctx context.Context, query string, candidates [][]float32) ([]int, error) {
	hits, err := e.SearchScored(ctx, query, candidates)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.Index
	}
	return out, nil
}

// SearchScored is Search with the cosine score of each candidate.
// The query is embedded without the cache; an empty candidate list returns
// immediately without embedding anything.
func (e *Engine) SearchScored(ctx context.Context, query string, candidates [][]float32) ([]vector.Hit, error) {
	if len(candidates) == 0 {
		return []vector.Hit{}, nil
	}
	vecs, err := e.embedder.GetEmbeddings(ctx, []string{query}, false)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := vector.Rank(vecs[0], candidates)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("ranked candidates",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)),
	)
	return hits, nil
}

// SearchTexts embeds candidates through the cache and ranks them against query.
func (e *Engine) SearchTexts(ctx context.Context, query string, candidates []string) ([]vector.Hit, error) {
	if len(candidates) == 0 {
		return []vector.Hit{}, nil
	}
	vecs, err := e.embedder.GetEmbeddings(ctx, candidates, true)
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}
	return e.SearchScored(ctx, query, vecs)
}
