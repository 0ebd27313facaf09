package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIModel is the embedding model used when none is configured.
const DefaultOpenAIModel = "text-embedding-ada-002"

// OpenAIConfig configures OpenAIEmbedder.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // optional, e.g. an OpenAI-compatible gateway
	Model   string
	// MaxRetries is passed to the SDK. Zero disables retries so transport errors surface directly.
	MaxRetries int
	// RequestTimeout bounds each request; zero leaves the SDK default.
	RequestTimeout time.Duration
}

// OpenAIEmbedder calls the OpenAI embeddings endpoint through the official SDK.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates an embedder for cfg. The API key is required.
func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.RequestTimeout))
	}
	client := openai.NewClient(opts...)

	return &OpenAIEmbedder{client: &client, model: model}, nil
}

// EmbedBatch sends all texts in one request. Vectors are placed by the response index,
// so the output order matches texts regardless of the order the API lists them in.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai: %w: got %d, want %d", ErrResultCount, len(resp.Data), len(texts))
	}

	result := make([][]float32, len(texts))
	for _, d := range resp.Data {
		idx := int(d.Index)
		if idx < 0 || idx >= len(result) || result[idx] != nil {
			return nil, fmt.Errorf("openai: unexpected embedding index %d", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		result[idx] = vec
	}
	return result, nil
}

// Model returns the configured model name.
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Close is a no-op; the SDK client holds no resources.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
