package embedding

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/hyperjump/resumerank/internal/contentkey"
	"github.com/hyperjump/resumerank/internal/storage"
	"go.uber.org/zap"
)

// CachedEmbedder combines a provider with a persistent content-addressed cache.
// Inputs are normalized, looked up by key, and only misses reach the provider.
type CachedEmbedder struct {
	provider     Embedder
	store        storage.Store
	maxBatchSize int
	strictModel  bool
	logger       *zap.Logger

	hits        atomic.Int64
	misses      atomic.Int64
	staleHits   atomic.Int64
	remoteCalls atomic.Int64
}

// Stats counts cache activity since construction.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	StaleHits   int64 `json:"stale_hits"`
	RemoteCalls int64 `json:"remote_calls"`
}

// CachedOption configures a CachedEmbedder.
type CachedOption func(*CachedEmbedder)

// WithLogger sets a logger for cache hit/miss and provider call events.
func WithLogger(l *zap.Logger) CachedOption {
	return func(c *CachedEmbedder) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxBatchSize splits provider calls into chunks of at most n inputs (n <= 0 means unbounded).
func WithMaxBatchSize(n int) CachedOption {
	return func(c *CachedEmbedder) { c.maxBatchSize = n }
}

// WithStrictModel treats cached entries recorded under a different model as misses.
// Without it such entries are served and logged as stale.
func WithStrictModel(strict bool) CachedOption {
	return func(c *CachedEmbedder) { c.strictModel = strict }
}

// NewCachedEmbedder wraps provider with store. A nil store disables caching entirely.
func NewCachedEmbedder(provider Embedder, store storage.Store, opts ...CachedOption) *CachedEmbedder {
	c := &CachedEmbedder{
		provider: provider,
		store:    store,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetEmbeddings returns one vector per input, in input order. With useCache, each
// normalized input is looked up by content key; the misses (deduplicated by key) are
// sent to the provider and the new vectors stored. Without useCache every input is sent.
// No remote call is made when nothing misses.
func (c *CachedEmbedder) GetEmbeddings(ctx context.Context, inputs []string, useCache bool) ([][]float32, error) {
	texts := make([]string, len(inputs))
	for i, in := range inputs {
		texts[i] = contentkey.Normalize(in)
	}
	out := make([][]float32, len(texts))
	useCache = useCache && c.store != nil

	if !useCache {
		vecs, err := c.embed(ctx, texts)
		if err != nil {
			return nil, err
		}
		copy(out, vecs)
		return out, nil
	}

	keys := contentkey.Keys(texts)
	// key -> positions waiting for that key, in first-seen order
	pending := make(map[string][]int)
	var missKeys []string
	var missTexts []string
	for i, key := range keys {
		if waiting, ok := pending[key]; ok {
			pending[key] = append(waiting, i)
			continue
		}
		vec, ok, err := c.lookup(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			out[i] = vec
			c.hits.Add(1)
			continue
		}
		pending[key] = []int{i}
		missKeys = append(missKeys, key)
		missTexts = append(missTexts, texts[i])
	}
	c.misses.Add(int64(len(missKeys)))
	c.logger.Debug("embedding cache pass",
		zap.Int("inputs", len(texts)),
		zap.Int("misses", len(missKeys)),
	)
	if len(missKeys) == 0 {
		return out, nil
	}

	vecs, err := c.embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	model := c.provider.Model()
	for j, key := range missKeys {
		for n, pos := range pending[key] {
			if n == 0 {
				out[pos] = vecs[j]
				continue
			}
			// each output position owns its backing array
			out[pos] = append([]float32(nil), vecs[j]...)
		}
		if err := c.store.Put(ctx, storage.Entry{Key: key, Vector: vecs[j], Model: model}); err != nil {
			return nil, fmt.Errorf("cache embedding: %w", err)
		}
	}
	return out, nil
}

// lookup returns the cached vector for key, applying the model staleness policy.
func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool, error) {
	entry, ok, err := c.store.Lookup(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	if model := c.provider.Model(); entry.Model != "" && entry.Model != model {
		c.staleHits.Add(1)
		c.logger.Warn("cached embedding was produced by a different model",
			zap.String("key", key),
			zap.String("cached_model", entry.Model),
			zap.String("model", model),
			zap.Bool("strict", c.strictModel),
		)
		if c.strictModel {
			return nil, false, nil
		}
	}
	return entry.Vector, true, nil
}

// embed calls the provider in chunks of maxBatchSize and concatenates the results.
func (c *CachedEmbedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	size := c.maxBatchSize
	if size <= 0 || size > len(texts) {
		size = len(texts)
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]
		c.remoteCalls.Add(1)
		c.logger.Debug("embedding provider call",
			zap.String("model", c.provider.Model()),
			zap.Int("batch_size", len(batch)),
		)
		vecs, err := c.provider.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrResultCount, len(vecs), len(batch))
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// Model returns the underlying provider's model name.
func (c *CachedEmbedder) Model() string {
	return c.provider.Model()
}

// Stats returns a snapshot of the cache counters.
func (c *CachedEmbedder) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		StaleHits:   c.staleHits.Load(),
		RemoteCalls: c.remoteCalls.Load(),
	}
}
