package config

import (
	"strconv"
	"strings"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays environment settings on cfg. Credentials come from the provider's
// conventional variable; RESUMERANK_* variables override file values.
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("RESUMERANK_PROVIDER"); ok {
		cfg.Embedding.Provider = v
	}
	if v, ok := get("RESUMERANK_MODEL"); ok {
		cfg.Embedding.Model = v
	}
	if v, ok := get("RESUMERANK_CACHE_PATH"); ok {
		cfg.Cache.Path = v
	}
	if v, ok := get("RESUMERANK_RESUME"); ok {
		cfg.Resume.Path = v
	}
	if v, ok := get("RESUMERANK_DEBUG"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}

	cfg.Embedding.Provider = strings.ToLower(strings.TrimSpace(cfg.Embedding.Provider))
	switch cfg.Embedding.Provider {
	case "gemini":
		for _, key := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if v, ok := get(key); ok {
				cfg.Embedding.APIKey = v
				break
			}
		}
	case "openai", "":
		if v, ok := get("OPENAI_API_KEY"); ok {
			cfg.Embedding.APIKey = v
		}
		if v, ok := get("OPENAI_BASE_URL"); ok && cfg.Embedding.BaseURL == "" {
			cfg.Embedding.BaseURL = v
		}
	}
}
