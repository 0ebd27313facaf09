// Package cli formats resumerank results for the terminal.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/resumerank/internal/embedding"
	"github.com/hyperjump/resumerank/internal/resume"
	"github.com/hyperjump/resumerank/internal/storage"
	"github.com/hyperjump/resumerank/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json" (case-insensitive); empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("invalid output format %q (use text or json)", s)
	}
}

// RankReport is the result of ranking a resume's work history.
type RankReport struct {
	Query   string         `json:"query"`
	Matches []resume.Match `json:"matches"`
}

// WriteMatches writes ranked work entries to w.
func WriteMatches(w io.Writer, report RankReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "For '%s':\n\n", report.Query)
	if len(report.Matches) == 0 {
		fmt.Fprintln(w, "No work entries.")
		return nil
	}
	for _, m := range report.Matches {
		fmt.Fprintf(w, "%2d. [%.4f] %s\n", m.Rank, m.Score, m.Title)
		if len(m.Work.Highlights) > 0 {
			fmt.Fprintf(w, "    %s\n", utils.Truncate(strings.Join(m.Work.Highlights, " "), 120))
		}
	}
	return nil
}

// EmbedReport is the result of the embed command.
type EmbedReport struct {
	Inputs     []string    `json:"inputs"`
	Embeddings [][]float32 `json:"embeddings"`
	Dimensions int         `json:"dimensions"`
}

// WriteEmbeddings writes embeddings to w. Text output shows a short preview of each vector.
func WriteEmbeddings(w io.Writer, report EmbedReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "%d embeddings, %d dimensions\n", len(report.Embeddings), report.Dimensions)
	for i, vec := range report.Embeddings {
		fmt.Fprintf(w, "%d. %s\n   %s\n", i+1, utils.Truncate(report.Inputs[i], 60), previewVector(vec, 4))
	}
	return nil
}

func previewVector(vec []float32, n int) string {
	parts := make([]string, 0, n+1)
	for i, v := range vec {
		if i == n {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, fmt.Sprintf("%.4f", v))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Status describes the embedding provider and the cache.
type Status struct {
	Provider       string          `json:"provider"`
	Model          string          `json:"model"`
	CacheEnabled   bool            `json:"cache_enabled"`
	CacheBackend   string          `json:"cache_backend"`
	CachePath      string          `json:"cache_path,omitempty"`
	Entries        int64           `json:"entries"`
	DiskUsageBytes int64           `json:"disk_usage_bytes"`
	Stats          embedding.Stats `json:"stats"`
}

// CollectStatus gathers cache and provider status. store may be nil when caching is disabled.
// ce may be nil when no provider was built; Model and Stats are then left for the caller.
func CollectStatus(ctx context.Context, provider, backend string, store storage.Store, ce *embedding.CachedEmbedder) (Status, error) {
	s := Status{
		Provider:     provider,
		CacheEnabled: store != nil,
		CacheBackend: backend,
	}
	if ce != nil {
		s.Model = ce.Model()
		s.Stats = ce.Stats()
	}
	if store == nil {
		return s, nil
	}
	n, err := store.Count(ctx)
	if err != nil {
		return s, fmt.Errorf("count cache entries: %w", err)
	}
	s.Entries = n
	s.CachePath = store.Path()
	usage, err := storage.DiskUsageBytes(storage.CacheFiles(s.CachePath)...)
	if err != nil {
		return s, fmt.Errorf("cache disk usage: %w", err)
	}
	s.DiskUsageBytes = usage
	return s, nil
}

// WriteStatus writes status to w.
func WriteStatus(w io.Writer, s Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "Provider:   %s\n", s.Provider)
	fmt.Fprintf(w, "Model:      %s\n", s.Model)
	if !s.CacheEnabled {
		fmt.Fprintln(w, "Cache:      disabled")
		return nil
	}
	fmt.Fprintf(w, "Cache:      %s\n", s.CacheBackend)
	if s.CachePath != "" {
		fmt.Fprintf(w, "Path:       %s\n", s.CachePath)
	}
	fmt.Fprintf(w, "Entries:    %d\n", s.Entries)
	fmt.Fprintf(w, "Disk usage: %s\n", FormatBytes(s.DiskUsageBytes))
	return nil
}

// FormatBytes renders n bytes with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
