package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.Model == "" {
		switch cfg.Embedding.Provider {
		case "gemini":
			cfg.Embedding.Model = "text-embedding-004"
		case "openai":
			cfg.Embedding.Model = "text-embedding-ada-002"
		}
	}
	if cfg.Embedding.MaxBatchSize == 0 {
		// OpenAI accepts at most 2048 inputs per embeddings request.
		cfg.Embedding.MaxBatchSize = 2048
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "sqlite"
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "./data/embeddings.db"
	}
	if cfg.Resume.Path == "" {
		cfg.Resume.Path = "./resume.json"
	}
	if cfg.Resume.Query == "" {
		cfg.Resume.Query = "Amazon"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 400 * time.Millisecond
	}
}

// DefaultConfig returns a config with every default applied and no environment read.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
