package resume

import (
	"context"
	"fmt"

	"github.com/hyperjump/resumerank/internal/embedding"
	"github.com/hyperjump/resumerank/internal/search"
	"go.uber.org/zap"
)

// Match is one work entry in ranked order.
type Match struct {
	Rank  int     `json:"rank"`
	Index int     `json:"index"`
	Score float64 `json:"score"`
	Title string  `json:"title"`
	Work  Work    `json:"work"`
}

// Matcher ranks a resume's work history against a query.
type Matcher struct {
	embedder *embedding.CachedEmbedder
	engine   *search.Engine
	logger   *zap.Logger
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithLogger sets the matcher logger.
func WithLogger(l *zap.Logger) MatcherOption {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMatcher creates a Matcher. Work embeddings go through embedder's cache; the
// query is ranked by engine.
func NewMatcher(embedder *embedding.CachedEmbedder, engine *search.Engine, opts ...MatcherOption) *Matcher {
	m := &Matcher{embedder: embedder, engine: engine, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EmbedWork validates r and returns one cached embedding per work entry.
func (m *Matcher) EmbedWork(ctx context.Context, r *Resume) ([][]float32, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	vecs, err := m.embedder.GetEmbeddings(ctx, WorkTexts(r), true)
	if err != nil {
		return nil, fmt.Errorf("embed work entries: %w", err)
	}
	dims := 0
	if len(vecs) > 0 {
		dims = len(vecs[0])
	}
	m.logger.Info("embedded work entries", zap.Int("count", len(vecs)), zap.Int("dimensions", dims))
	return vecs, nil
}

// RankWork returns r's work entries ordered by similarity to query.
func (m *Matcher) RankWork(ctx context.Context, r *Resume, query string) ([]Match, error) {
	vecs, err := m.EmbedWork(ctx, r)
	if err != nil {
		return nil, err
	}
	hits, err := m.engine.SearchScored(ctx, query, vecs)
	if err != nil {
		return nil, err
	}
	matches := make([]Match, len(hits))
	for i, h := range hits {
		w := r.Work[h.Index]
		matches[i] = Match{Rank: i + 1, Index: h.Index, Score: h.Score, Title: Title(w), Work: w}
	}
	m.logger.Debug("ranked work entries", zap.String("query", query), zap.Int("matches", len(matches)))
	return matches, nil
}
