package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
embedding:
  provider: openai
  model: text-embedding-3-small
  max_batch_size: 100
  request_timeout: 30s
cache:
  backend: bolt
  path: "./data/cache.db"
resume:
  path: "./resume.yaml"
  query: "distributed systems"
server:
  port: 9000
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" || cfg.Embedding.MaxBatchSize != 100 {
		t.Errorf("unexpected embedding config: %+v", cfg.Embedding)
	}
	if cfg.Embedding.RequestTimeout != 30*time.Second {
		t.Errorf("request_timeout = %v", cfg.Embedding.RequestTimeout)
	}
	if cfg.Cache.Backend != "bolt" {
		t.Errorf("backend = %s", cfg.Cache.Backend)
	}
	if want := filepath.Join(dir, "data", "cache.db"); cfg.Cache.Path != want {
		t.Errorf("cache path = %s, want %s", cfg.Cache.Path, want)
	}
	if want := filepath.Join(dir, "resume.yaml"); cfg.Resume.Path != want {
		t.Errorf("resume path = %s, want %s", cfg.Resume.Path, want)
	}
	if cfg.Resume.Query != "distributed systems" {
		t.Errorf("query = %s", cfg.Resume.Query)
	}
	if cfg.Server.Port != 9000 || cfg.Server.Host != "localhost" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if !cfg.Cache.EnabledOrDefault() {
		t.Error("cache should default to enabled")
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_emptyPathUsesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Path != "./data/embeddings.db" {
		t.Errorf("cache path should stay relative to cwd, got %s", cfg.Cache.Path)
	}
	if cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("api key should come from env, got %q", cfg.Embedding.APIKey)
	}
}

func TestLoad_invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("embedding:\n  max_batch_size: -1\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for negative batch size")
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Embedding.Provider != "openai" || cfg.Embedding.Model != "text-embedding-ada-002" {
		t.Errorf("default provider/model: %s/%s", cfg.Embedding.Provider, cfg.Embedding.Model)
	}
	if cfg.Embedding.MaxBatchSize != 2048 {
		t.Errorf("default max_batch_size: %d", cfg.Embedding.MaxBatchSize)
	}
	if cfg.Embedding.MaxRetries != 0 {
		t.Errorf("retries should default to 0, got %d", cfg.Embedding.MaxRetries)
	}
	if cfg.Cache.Backend != "sqlite" {
		t.Errorf("default backend: %s", cfg.Cache.Backend)
	}
	if cfg.Resume.Query != "Amazon" {
		t.Errorf("default query: %s", cfg.Resume.Query)
	}
	if cfg.Watch.Debounce != 400*time.Millisecond {
		t.Errorf("default debounce: %v", cfg.Watch.Debounce)
	}

	gem := &Config{Embedding: EmbeddingConfig{Provider: "gemini"}}
	ApplyDefaults(gem)
	if gem.Embedding.Model != "text-embedding-004" {
		t.Errorf("gemini default model: %s", gem.Embedding.Model)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Run("openai key", func(t *testing.T) {
		cfg := &Config{Embedding: EmbeddingConfig{APIKey: "from-file"}}
		ApplyEnv(cfg, envMap(map[string]string{"OPENAI_API_KEY": "sk-env"}))
		if cfg.Embedding.APIKey != "sk-env" {
			t.Errorf("APIKey = %s", cfg.Embedding.APIKey)
		}
	})
	t.Run("gemini falls back to GOOGLE_API_KEY", func(t *testing.T) {
		cfg := &Config{Embedding: EmbeddingConfig{Provider: "gemini"}}
		ApplyEnv(cfg, envMap(map[string]string{"GOOGLE_API_KEY": "g-key", "OPENAI_API_KEY": "sk"}))
		if cfg.Embedding.APIKey != "g-key" {
			t.Errorf("APIKey = %s", cfg.Embedding.APIKey)
		}
	})
	t.Run("provider override selects key", func(t *testing.T) {
		cfg := &Config{}
		ApplyEnv(cfg, envMap(map[string]string{"RESUMERANK_PROVIDER": "Gemini", "GEMINI_API_KEY": "gk"}))
		if cfg.Embedding.Provider != "gemini" || cfg.Embedding.APIKey != "gk" {
			t.Errorf("embedding = %+v", cfg.Embedding)
		}
	})
	t.Run("mixed case provider from file", func(t *testing.T) {
		cfg := &Config{Embedding: EmbeddingConfig{Provider: " OpenAI "}}
		ApplyEnv(cfg, envMap(map[string]string{"OPENAI_API_KEY": "sk-env"}))
		if cfg.Embedding.Provider != "openai" || cfg.Embedding.APIKey != "sk-env" {
			t.Errorf("embedding = %+v", cfg.Embedding)
		}
	})
	t.Run("blank values ignored", func(t *testing.T) {
		cfg := &Config{Embedding: EmbeddingConfig{APIKey: "keep"}}
		ApplyEnv(cfg, envMap(map[string]string{"OPENAI_API_KEY": "  "}))
		if cfg.Embedding.APIKey != "keep" {
			t.Errorf("APIKey = %s", cfg.Embedding.APIKey)
		}
	})
	t.Run("debug", func(t *testing.T) {
		cfg := &Config{}
		ApplyEnv(cfg, envMap(map[string]string{"RESUMERANK_DEBUG": "true"}))
		if !cfg.Debug {
			t.Error("debug should be set from env")
		}
	})
	t.Run("nothing set", func(t *testing.T) {
		cfg := &Config{}
		ApplyEnv(cfg, noEnv)
		if cfg.Embedding.APIKey != "" || cfg.Debug {
			t.Errorf("unexpected changes: %+v", cfg)
		}
	})
}

func TestCacheConfig_EnabledOrDefault(t *testing.T) {
	f := false
	c := &CacheConfig{Enabled: &f}
	if c.EnabledOrDefault() {
		t.Error("explicit false should disable caching")
	}
}

func TestSave_omitsAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := &Config{
		Embedding: EmbeddingConfig{Provider: "openai", APIKey: "secret"},
		Server:    ServerConfig{Host: "localhost", Port: 9090},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "secret") {
		t.Error("saved config must not contain the api key")
	}
	if cfg.Embedding.APIKey != "secret" {
		t.Error("Save must not modify the caller's config")
	}
	t.Setenv("OPENAI_API_KEY", "")
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
}
