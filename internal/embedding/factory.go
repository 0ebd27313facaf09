package embedding

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hyperjump/resumerank/internal/config"
)

// Provider names accepted by NewEmbedder.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderONNX   = "onnx"
	ProviderMock   = "mock"
)

// NewEmbedder creates the embedder selected by cfg.Provider.
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig) (Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI, "":
		return NewOpenAIEmbedder(OpenAIConfig{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			MaxRetries:     cfg.MaxRetries,
			RequestTimeout: cfg.RequestTimeout,
		})
	case ProviderGemini:
		return NewGeminiEmbedder(ctx, GeminiConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case ProviderONNX:
		return NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
	case ProviderMock:
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: openai, gemini, onnx, mock)", ErrUnknownProvider, cfg.Provider)
	}
}

// ModelName returns the model name the embedder built from cfg would report,
// without building it. Reports that only read the cache use it so they work
// without provider credentials.
func ModelName(cfg config.EmbeddingConfig) string {
	model := strings.TrimSpace(cfg.Model)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI, "":
		if model == "" {
			return DefaultOpenAIModel
		}
	case ProviderGemini:
		if model == "" {
			return DefaultGeminiModel
		}
	case ProviderONNX:
		return "onnx:" + filepath.Base(cfg.ModelPath)
	case ProviderMock:
		return "mock"
	}
	return model
}
