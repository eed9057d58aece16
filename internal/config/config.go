package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	ReviewDir  string `toml:"review_dir"`
	LogDir     string `toml:"log_dir"`
	CatalogDB  string `toml:"catalog_db"`
}

// Audio contains settings for audio extraction and the external tools it runs.
type Audio struct {
	SampleRate            int    `toml:"sample_rate"`
	FFmpegBinary          string `toml:"ffmpeg_binary"`
	ToolTimeoutSeconds    int    `toml:"tool_timeout_seconds"`
	VocalSeparatorBinary  string `toml:"vocal_separator_binary"`
	TranscriberBinary     string `toml:"transcriber_binary"`
	EnableVocalSeparation bool   `toml:"enable_vocal_separation"`
}

// Segment contains the thresholds for singing-segment detection.
type Segment struct {
	// MinSongProb is the per-second probability a second must reach to be
	// part of a raw interval.
	MinSongProb float64 `toml:"min_song_prob"`
	// MergeGapSec is the base gap tolerance between raw intervals.
	MergeGapSec float64 `toml:"merge_gap_sec"`
	// MergeConfidenceThreshold gates the extra gap bonus: both intervals must
	// average at least this probability to earn it.
	MergeConfidenceThreshold float64 `toml:"merge_confidence_threshold"`
	MergeConfidenceBonusSec  float64 `toml:"merge_confidence_bonus_sec"`
	ModelWeight              float64 `toml:"model_weight"`
	RMSWeight                float64 `toml:"rms_weight"`
	LabelWeight              float64 `toml:"label_weight"`
	// MinDurationSec and MinConfidence filter detected segments: a segment
	// survives when it satisfies either one.
	MinDurationSec float64 `toml:"min_duration_sec"`
	MinConfidence  float64 `toml:"min_confidence"`
}

// Matching contains candidate matching and lyric rerank settings.
type Matching struct {
	UseLyricsRerank bool `toml:"use_lyrics_rerank"`
	// EmbeddingBands is the length of the spectral embedding extracted from
	// an interval. Catalog embeddings of a different length never match.
	EmbeddingBands int `toml:"embedding_bands"`
}

// Training contains settings for hint-driven accuracy measurement.
type Training struct {
	WindowSec float64 `toml:"window_sec"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for songscout.
//
// Configuration sections by subsystem:
//   - Paths: staging/review/log directories and the catalog database
//   - Audio: extraction sample rate and external tool binaries/timeouts
//   - Segment: detection thresholds and blend weights
//   - Matching: candidate matching and lyric rerank settings
//   - Training: hint window for accuracy samples
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Audio    Audio    `toml:"audio"`
	Segment  Segment  `toml:"segment"`
	Matching Matching `toml:"matching"`
	Training Training `toml:"training"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/songscout/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file is not
// an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.ReviewDir, err = expandPath(c.Paths.ReviewDir); err != nil {
		return fmt.Errorf("paths.review_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.CatalogDB, err = expandPath(c.Paths.CatalogDB); err != nil {
		return fmt.Errorf("paths.catalog_db: %w", err)
	}
	if strings.TrimSpace(c.Audio.FFmpegBinary) == "" {
		c.Audio.FFmpegBinary = "ffmpeg"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

// EnsureDirectories creates the directories songscout writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.StagingDir,
		c.Paths.ReviewDir,
		c.Paths.LogDir,
		filepath.Dir(c.Paths.CatalogDB),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}
