package match

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"songscout/internal/catalog"
	"songscout/internal/logging"
)

// Method tags identify which scoring path produced a candidate.
const (
	MethodEmbedding = "embedding-based"
	MethodFallback  = "fallback"
)

// SongCandidate is one catalog song scored against an audio interval.
type SongCandidate struct {
	SongID         string
	Title          string
	OriginalArtist string
	MatchScore     float64
	Method         string
}

// EmbeddingExtractor derives a fixed-length acoustic embedding from an audio
// interval. Implementations may fail freely; the matcher degrades to its
// deterministic fallback scoring.
type EmbeddingExtractor interface {
	Extract(ctx context.Context, path string, startSec, endSec float64) ([]float64, error)
}

// Matcher scores audio intervals against the catalog snapshot.
type Matcher struct {
	cache     *catalog.Cache
	extractor EmbeddingExtractor
	logger    *slog.Logger
}

// NewMatcher constructs a matcher. Extractor may be nil; every candidate
// then takes the fallback path.
func NewMatcher(cache *catalog.Cache, extractor EmbeddingExtractor, logger *slog.Logger) *Matcher {
	return &Matcher{
		cache:     cache,
		extractor: extractor,
		logger:    logging.NewComponentLogger(logger, "match"),
	}
}

// Candidates scores every catalog song against the interval and returns them
// sorted descending by match score, ties broken by catalog order. Confidence
// is the detector's prior for the interval. An empty catalog or a failed
// catalog load yields an empty list, never an error.
func (m *Matcher) Candidates(ctx context.Context, path string, startSec, endSec, confidence float64) []SongCandidate {
	index, err := m.cache.Snapshot(ctx)
	if err != nil {
		m.logger.Warn("catalog snapshot unavailable", logging.Error(err))
		return nil
	}
	songs := index.Songs()
	if len(songs) == 0 {
		return nil
	}

	var intervalEmbedding []float64
	if m.extractor != nil {
		embedding, err := m.extractor.Extract(ctx, path, startSec, endSec)
		if err != nil {
			m.logger.Debug("embedding extraction failed; using fallback scores", logging.Error(err))
		} else {
			intervalEmbedding = embedding
		}
	}

	candidates := make([]SongCandidate, 0, len(songs))
	for i, song := range songs {
		candidate := SongCandidate{
			SongID:         song.SongID,
			Title:          song.Title,
			OriginalArtist: song.OriginalArtist,
		}
		if len(intervalEmbedding) > 0 && len(song.Embedding) == len(intervalEmbedding) {
			similarity := CosineSimilarity(intervalEmbedding, song.Embedding)
			candidate.MatchScore = clampScore(similarity * (0.7 + confidence*0.3))
			candidate.Method = MethodEmbedding
		} else {
			candidate.MatchScore = fallbackScore(i, startSec, endSec, confidence)
			candidate.Method = MethodFallback
		}
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].MatchScore > candidates[b].MatchScore
	})
	return candidates
}

// fallbackScore is the deterministic heuristic used when no acoustic signal
// is available. The position- and start-derived offset spreads candidates so
// the ranking stays total instead of tying at the base score.
func fallbackScore(catalogIndex int, startSec, endSec, confidence float64) float64 {
	duration := endSec - startSec
	durationTerm := duration / 240
	if durationTerm > 1 {
		durationTerm = 1
	}
	base := 0.6 + confidence*0.2 + durationTerm*0.2
	offset := float64((catalogIndex+int(startSec))%3) * 0.03
	return clampScore(base - offset)
}

// CosineSimilarity returns dot(a,b) / (|a||b|), with zero-norm inputs
// scoring 0. Spectral embeddings are non-negative, so the result lies in
// [0, 1]; it is clamped regardless.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if similarity < 0 {
		return 0
	}
	if similarity > 1 {
		return 1
	}
	return similarity
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 0.99 {
		return 0.99
	}
	return score
}
