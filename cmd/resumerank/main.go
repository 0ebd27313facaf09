// Package main is the resumerank CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/resumerank/internal/cli"
	"github.com/hyperjump/resumerank/internal/config"
	"github.com/hyperjump/resumerank/internal/embedding"
	"github.com/hyperjump/resumerank/internal/resume"
	"github.com/hyperjump/resumerank/internal/search"
	"github.com/hyperjump/resumerank/internal/server"
	"github.com/hyperjump/resumerank/internal/storage"
	"github.com/hyperjump/resumerank/internal/watcher"
	"github.com/hyperjump/resumerank/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

// loadConfig loads config from path. An empty path looks for config.yaml in the current
// directory and falls back to defaults plus environment when there is none.
// Returns the config and the path that was actually loaded ("" when none).
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				path = fallback
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}
	command, args := os.Args[1], os.Args[2:]
	var err error
	switch command {
	case "rank":
		err = runRank(args, os.Stdout)
	case "embed":
		err = runEmbed(args, os.Stdout)
	case "status":
		err = runStatus(args, os.Stdout)
	case "serve", "server":
		err = runServe(args)
	case "version", "--version", "-v":
		fmt.Printf("resumerank version %s\n", version)
	case "help", "--help", "-h":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// parseArgs parses flags wherever they appear and returns the positional
// arguments in order. Go's flag package stops at the first non-flag argument,
// so "resumerank rank --config c.yaml distributed systems --output json" would
// otherwise treat "--output json" as part of the query. Everything after "--"
// is positional.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if n := len(args) - len(rest); n > 0 && args[n-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func runRank(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("rank", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file path (default: ./config.yaml if present)")
	resumePath := fs.String("resume", "", "resume file (.json, .yaml); overrides resume.path")
	serverURL := fs.String("server", "", "rank through a running server instead of locally")
	outputFormat := fs.String("output", "text", "output format: text or json")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	query := buildQuery(positional)
	if query == "" {
		query = cfg.Resume.Query
	}
	path := cfg.Resume.Path
	if *resumePath != "" {
		path = *resumePath
	}
	r, err := resume.Load(path)
	if err != nil {
		return err
	}

	if *serverURL != "" {
		report, err := rankViaHTTP(*serverURL, query, r)
		if err != nil {
			return err
		}
		return cli.WriteMatches(out, *report, format)
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	matches, err := components.Matcher.RankWork(ctx, r, query)
	if err != nil {
		return err
	}
	return cli.WriteMatches(out, cli.RankReport{Query: query, Matches: matches}, format)
}

func rankViaHTTP(serverURL, query string, r *resume.Resume) (*cli.RankReport, error) {
	body, err := json.Marshal(map[string]interface{}{"query": query, "resume": r})
	if err != nil {
		return nil, err
	}
	var report cli.RankReport
	if err := postJSON(serverURL, "/api/v1/rank", body, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func runEmbed(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("embed", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file path (default: ./config.yaml if present)")
	noCache := fs.Bool("no-cache", false, "bypass the embedding cache")
	outputFormat := fs.String("output", "text", "output format: text or json")
	inputs, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New("usage: resumerank embed [flags] <text>...")
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	vecs, err := components.Cached.GetEmbeddings(ctx, inputs, !*noCache)
	if err != nil {
		return err
	}
	report := cli.EmbedReport{Inputs: inputs, Embeddings: vecs}
	if len(vecs) > 0 {
		report.Dimensions = len(vecs[0])
	}
	return cli.WriteEmbeddings(out, report, format)
}

func runStatus(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file path (default: ./config.yaml if present)")
	serverURL := fs.String("server", "", "query a running server instead of opening the cache")
	outputFormat := fs.String("output", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		return err
	}

	if *serverURL != "" {
		st, err := statusViaHTTP(*serverURL)
		if err != nil {
			return err
		}
		return cli.WriteStatus(out, *st, format)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// status reads the cache only; no provider is built, so missing credentials are fine
	store, err := openCache(cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	st, err := cli.CollectStatus(context.Background(), cfg.Embedding.Provider, cfg.Cache.Backend, store, nil)
	if err != nil {
		return err
	}
	st.Model = embedding.ModelName(cfg.Embedding)
	return cli.WriteStatus(out, st, format)
}

func statusViaHTTP(serverURL string) (*cli.Status, error) {
	u, err := url.JoinPath(serverURL, "/api/v1/status")
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("server request failed (is the server running?): %w", err)
	}
	defer resp.Body.Close()
	var body struct {
		Cache cli.Status `json:"cache"`
		Error string     `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return &body.Cache, nil
}

func postJSON(serverURL, path string, body []byte, out interface{}) error {
	u, err := url.JoinPath(serverURL, path)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(u, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("server request failed (is the server running?): %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
	}
	return json.Unmarshal(data, out)
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file path (default: ./config.yaml if present)")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("provider", cfg.Embedding.Provider),
		zap.Bool("debug", debugMode),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	srv := server.NewServer(
		components.Engine,
		components.Matcher,
		components.Cached,
		components.Store,
		cfg,
		logger,
	)
	if err := srv.ReloadResume(ctx, cfg.Resume.Path); err != nil {
		logger.Warn("resume not loaded; /api/v1/rank needs a resume in the request",
			zap.String("path", cfg.Resume.Path), zap.Error(err))
	}

	if cfg.Watch.Enabled {
		fw, err := watcher.NewFileWatcher(cfg.Resume.Path, func(path string) {
			if err := srv.ReloadResume(ctx, path); err != nil {
				logger.Warn("resume reload failed", zap.String("path", path), zap.Error(err))
			}
		}, watcher.WithLogger(logger), watcher.WithDebounce(cfg.Watch.Debounce))
		if err != nil {
			return err
		}
		if err := fw.Start(ctx); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer fw.Stop()
		logger.Info("watching resume", zap.String("path", fw.Path()))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

// Components holds initialized services.
type Components struct {
	Store    storage.Store // nil when caching is disabled
	Embedder embedding.Embedder
	Cached   *embedding.CachedEmbedder
	Engine   *search.Engine
	Matcher  *resume.Matcher
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	embedder, err := embedding.NewEmbedder(ctx, cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	c := &Components{Embedder: embedder}

	store, err := openCache(cfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = store

	c.Cached = embedding.NewCachedEmbedder(embedder, c.Store,
		embedding.WithLogger(logger),
		embedding.WithMaxBatchSize(cfg.Embedding.MaxBatchSize),
		embedding.WithStrictModel(cfg.Cache.StrictModel),
	)
	c.Engine = search.NewEngine(c.Cached, search.WithLogger(logger))
	c.Matcher = resume.NewMatcher(c.Cached, c.Engine, resume.WithLogger(logger))
	return c, nil
}

// openCache opens the configured embedding cache, or returns a nil store when
// caching is disabled.
func openCache(cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	if !cfg.Cache.EnabledOrDefault() {
		return nil, nil
	}
	store, err := storage.Open(storage.Options{
		Backend:    cfg.Cache.Backend,
		Path:       cfg.Cache.Path,
		MemorySize: cfg.Cache.MemorySize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}
	logger.Debug("embedding cache opened",
		zap.String("backend", cfg.Cache.Backend),
		zap.String("path", store.Path()))
	return store, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `resumerank - Rank resume entries by semantic similarity, with a persistent embedding cache

Usage:
  resumerank rank [flags] [query]     Rank work entries against a query (default from config)
  resumerank embed [flags] <text>...  Print embeddings for the given texts
  resumerank status [flags]           Show provider and cache status
  resumerank serve [flags]            Start the HTTP API
  resumerank version                  Show version
  resumerank help                     Show this help

Common Flags:
  --config string    Config file path (default: ./config.yaml if present, else defaults + env)
  --output string    Output format: text or json (default: text)

Rank Flags:
  --resume string    Resume file (.json, .yaml, .yml); overrides resume.path
  --server string    Rank through a running server (e.g. http://localhost:8080)

Embed Flags:
  --no-cache         Bypass the embedding cache

Status Flags:
  --server string    Query a running server instead of opening the cache

Serve Flags:
  --debug            Enable debug logging

Environment:
  OPENAI_API_KEY                 Credential for the openai provider
  GEMINI_API_KEY, GOOGLE_API_KEY Credential for the gemini provider
  RESUMERANK_PROVIDER, RESUMERANK_MODEL, RESUMERANK_CACHE_PATH, RESUMERANK_RESUME, RESUMERANK_DEBUG
  A .env file in the working directory is loaded at startup.

Examples:
  resumerank rank Amazon
  resumerank rank --resume resume.yaml "distributed systems" --output json
  resumerank embed "Engineer at Acme"
  resumerank status --output json
  resumerank serve --config config.yaml`)
}
