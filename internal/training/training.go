package training

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"songscout/internal/catalog"
	"songscout/internal/logging"
	"songscout/internal/match"
	"songscout/internal/media"
)

// Hint is an externally supplied ground-truth label: at this timestamp, this
// song was being sung. Hints feed offline accuracy measurement only; they
// never influence production matching.
type Hint struct {
	TimestampSec   float64 `json:"timestamp_sec"`
	SongTitle      string  `json:"song_title"`
	OriginalArtist string  `json:"original_artist"`
	RawText        string  `json:"raw_text"`
}

// Sample is one labeled accuracy measurement, computed once and never mutated.
type Sample struct {
	TimestampSec   float64 `json:"timestamp_sec"`
	ExpectedTitle  string  `json:"expected_title"`
	ExpectedArtist string  `json:"expected_artist"`
	MatchedTitle   string  `json:"matched_title"`
	MatchedArtist  string  `json:"matched_artist"`
	MatchScore     float64 `json:"match_score"`
	LyricScore     float64 `json:"lyric_score"`
	IsMatch        bool    `json:"is_match"`
}

// Summary aggregates samples into the reported accuracy figures.
type Summary struct {
	Total          int     `json:"total"`
	Matched        int     `json:"matched"`
	Accuracy       float64 `json:"accuracy"`
	LyricsAvgScore float64 `json:"lyrics_avg_score"`
}

// hintConfidence is the prior attached to hint-derived windows: a human
// asserted the song is there, so the window starts out trusted.
const hintConfidence = 0.85

// Builder turns hints into labeled accuracy samples by running the matcher
// (and optionally the reranker) over a window around each hint.
type Builder struct {
	matcher   *match.Matcher
	reranker  *match.Reranker
	cache     *catalog.Cache
	tools     *media.Tools
	windowSec float64
	useRerank bool
	logger    *slog.Logger
}

// NewBuilder constructs a builder. Reranker may be nil to take the top
// acoustic candidate directly.
func NewBuilder(matcher *match.Matcher, reranker *match.Reranker, cache *catalog.Cache, tools *media.Tools, windowSec float64, useRerank bool, logger *slog.Logger) *Builder {
	return &Builder{
		matcher:   matcher,
		reranker:  reranker,
		cache:     cache,
		tools:     tools,
		windowSec: windowSec,
		useRerank: useRerank && reranker != nil,
		logger:    logging.NewComponentLogger(logger, "training"),
	}
}

// Build computes one sample per hint. Hints whose window produces no
// candidates are skipped, not failed.
func (b *Builder) Build(ctx context.Context, audioPath string, hints []Hint) []Sample {
	samples := make([]Sample, 0, len(hints))
	for _, hint := range hints {
		start := hint.TimestampSec - b.windowSec
		if start < 0 {
			start = 0
		}
		end := hint.TimestampSec + b.windowSec

		candidates := b.matcher.Candidates(ctx, audioPath, start, end, hintConfidence)
		if len(candidates) == 0 {
			b.logger.Warn("no candidates for hint window",
				logging.Float64("timestamp_sec", hint.TimestampSec),
				logging.String("expected_title", hint.SongTitle),
			)
			continue
		}

		best := candidates[0]
		lyricScore := 0.0
		if b.useRerank {
			transcript, err := b.tools.Transcribe(ctx, audioPath, start, end)
			if err != nil {
				b.logger.Debug("transcription unavailable for hint window", logging.Error(err))
			}
			index, err := b.cache.Snapshot(ctx)
			if err == nil {
				if winner, score, rerr := b.reranker.Rerank(ctx, transcript, hintConfidence, candidates, index); rerr == nil {
					best = winner
					lyricScore = score
				}
			}
		}

		samples = append(samples, Sample{
			TimestampSec:   hint.TimestampSec,
			ExpectedTitle:  hint.SongTitle,
			ExpectedArtist: hint.OriginalArtist,
			MatchedTitle:   best.Title,
			MatchedArtist:  best.OriginalArtist,
			MatchScore:     best.MatchScore,
			LyricScore:     round2(lyricScore),
			IsMatch: catalog.Normalize(best.Title) == catalog.Normalize(hint.SongTitle) &&
				catalog.Normalize(best.OriginalArtist) == catalog.Normalize(hint.OriginalArtist),
		})
	}
	return samples
}

// Summarize aggregates samples. Empty input reports zeros, never a division
// error.
func Summarize(samples []Sample) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	matched := 0
	lyricsSum := 0.0
	for _, sample := range samples {
		if sample.IsMatch {
			matched++
		}
		lyricsSum += sample.LyricScore
	}
	total := len(samples)
	return Summary{
		Total:          total,
		Matched:        matched,
		Accuracy:       round3(float64(matched) / float64(total)),
		LyricsAvgScore: round3(lyricsSum / float64(total)),
	}
}

// LoadHints reads a JSON hint file: a list of timestamped song labels.
func LoadHints(path string) ([]Hint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hints: %w", err)
	}
	var hints []Hint
	if err := json.Unmarshal(data, &hints); err != nil {
		return nil, fmt.Errorf("parse hints: %w", err)
	}
	for i, hint := range hints {
		if hint.TimestampSec < 0 {
			return nil, fmt.Errorf("hint %d: negative timestamp", i)
		}
		if hint.SongTitle == "" {
			return nil, errors.New("hint with empty song title")
		}
	}
	return hints, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
