// Package config provides configuration loading and structs for resumerank.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. It is built once at startup
// and passed to constructors; nothing reads it through globals.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Resume    ResumeConfig    `yaml:"resume"`
	Server    ServerConfig    `yaml:"server"`
	Watch     WatchConfig     `yaml:"watch"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider       string        `yaml:"provider"` // openai, gemini, onnx, mock
	Model          string        `yaml:"model"`
	APIKey         string        `yaml:"api_key,omitempty"`
	BaseURL        string        `yaml:"base_url,omitempty"`
	MaxBatchSize   int           `yaml:"max_batch_size"`
	MaxRetries     int           `yaml:"max_retries"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
	// Dimensions, ModelPath and MaxTokens apply to local providers (onnx, mock).
	Dimensions int    `yaml:"dimensions,omitempty"`
	ModelPath  string `yaml:"model_path,omitempty"`
	MaxTokens  int    `yaml:"max_tokens,omitempty"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Enabled    *bool  `yaml:"enabled"`
	Backend    string `yaml:"backend"` // sqlite, bolt, memory
	Path       string `yaml:"path"`
	MemorySize int    `yaml:"memory_size"`
	// StrictModel treats entries recorded under a different model as misses.
	StrictModel bool `yaml:"strict_model"`
}

// EnabledOrDefault returns whether caching is on; defaults to true when unset.
func (c *CacheConfig) EnabledOrDefault() bool {
	if c.Enabled != nil {
		return *c.Enabled
	}
	return true
}

// ResumeConfig holds the resume source and the default ranking query.
type ResumeConfig struct {
	Path  string `yaml:"path"`
	Query string `yaml:"query"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// WatchConfig controls reloading the resume file when it changes.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Load reads and parses the config file at path, expands paths, applies environment
// overrides and defaults. An empty path yields defaults plus environment only.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	ApplyEnv(&cfg, os.LookupEnv)
	ApplyDefaults(&cfg)

	if path != "" {
		configDir := filepath.Dir(path)
		cfg.Cache.Path = expandPath(cfg.Cache.Path, configDir)
		cfg.Resume.Path = expandPath(cfg.Resume.Path, configDir)
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path. API keys are never written back.
func Save(path string, cfg *Config) error {
	out := *cfg
	out.Embedding.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects values no component can work with.
func Validate(cfg *Config) error {
	if cfg.Embedding.MaxBatchSize < 0 {
		return fmt.Errorf("embedding.max_batch_size must not be negative")
	}
	if cfg.Embedding.MaxRetries < 0 {
		return fmt.Errorf("embedding.max_retries must not be negative")
	}
	if cfg.Cache.MemorySize < 0 {
		return fmt.Errorf("cache.memory_size must not be negative")
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
