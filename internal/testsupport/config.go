package testsupport

import (
	"path/filepath"
	"testing"

	"songscout/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.ReviewDir = filepath.Join(base, "review")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CatalogDB = filepath.Join(base, "catalog.db")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithLyricsRerank toggles lyric reranking on the test config.
func WithLyricsRerank(enabled bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.UseLyricsRerank = enabled
	}
}
