package match

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"songscout/internal/catalog"
	"songscout/internal/logging"
)

// ErrNoDecision reports that the reranker had no candidates to choose from.
// It is distinct from a low-confidence match: there was nothing to match.
var ErrNoDecision = errors.New("match: no candidates to decide between")

// LyricsScore is the ephemeral text-similarity score for one candidate.
type LyricsScore struct {
	SongID string
	Score  float64
}

// LyricsSource provides stored lyric text per song. *catalog.Store satisfies it.
type LyricsSource interface {
	LyricsFor(ctx context.Context, songID string) (catalog.Lyrics, bool, error)
}

// FuzzyScorer compares a transcript to a lyric corpus and returns a
// normalized similarity in [0, 1]. Implementations are optional.
type FuzzyScorer interface {
	Score(transcript, corpus string) float64
}

// Reranker refines acoustic candidate rankings with a transcript signal.
type Reranker struct {
	lyrics LyricsSource
	fuzzy  FuzzyScorer
	logger *slog.Logger
}

// NewReranker constructs a reranker. Lyrics may be nil (titles and aliases
// become the corpus); fuzzy may be nil (token overlap only).
func NewReranker(lyrics LyricsSource, fuzzy FuzzyScorer, logger *slog.Logger) *Reranker {
	return &Reranker{
		lyrics: lyrics,
		fuzzy:  fuzzy,
		logger: logging.NewComponentLogger(logger, "rerank"),
	}
}

// Scores computes a lyric score per candidate. An empty transcript scores
// every candidate 0.0, which preserves the acoustic ranking downstream.
func (r *Reranker) Scores(ctx context.Context, transcript string, candidates []SongCandidate, index *catalog.Index) []LyricsScore {
	scores := make([]LyricsScore, 0, len(candidates))
	if strings.TrimSpace(transcript) == "" {
		for _, candidate := range candidates {
			scores = append(scores, LyricsScore{SongID: candidate.SongID})
		}
		return scores
	}

	songsByID := make(map[string]catalog.Song, index.Len())
	for _, song := range index.Songs() {
		songsByID[song.SongID] = song
	}

	transcriptTokens := tokenize(transcript)
	for _, candidate := range candidates {
		corpus := r.corpusFor(ctx, candidate, songsByID)
		similarity := tokenOverlap(transcriptTokens, tokenize(corpus))
		if r.fuzzy != nil {
			if fuzzy := r.fuzzy.Score(flatten(transcript), flatten(corpus)); fuzzy > similarity {
				similarity = fuzzy
			}
		}
		scores = append(scores, LyricsScore{
			SongID: candidate.SongID,
			Score:  roundScore(math.Min(0.99, similarity)),
		})
	}
	return scores
}

// Rerank picks the winning candidate by combining acoustic score, segment
// confidence, and lyric score. The returned float is the winner's lyric
// score. An empty candidate list yields ErrNoDecision.
func (r *Reranker) Rerank(ctx context.Context, transcript string, segmentConfidence float64, candidates []SongCandidate, index *catalog.Index) (SongCandidate, float64, error) {
	if len(candidates) == 0 {
		return SongCandidate{}, 0, ErrNoDecision
	}
	scores := r.Scores(ctx, transcript, candidates, index)
	lyricByID := make(map[string]float64, len(scores))
	for _, score := range scores {
		lyricByID[score.SongID] = score.Score
	}

	best := candidates[0]
	bestTotal := math.Inf(-1)
	for _, candidate := range candidates {
		total := candidate.MatchScore + segmentConfidence*0.05 + lyricByID[candidate.SongID]*0.1
		if total > bestTotal {
			best = candidate
			bestTotal = total
		}
	}
	r.logger.Debug("rerank decision",
		logging.String("song_id", best.SongID),
		logging.Float64("total", bestTotal),
		logging.Float64("lyric_score", lyricByID[best.SongID]),
	)
	return best, lyricByID[best.SongID], nil
}

// corpusFor returns the best text to compare a transcript against: stored
// full lyrics when present, else title, artist, and aliases concatenated.
func (r *Reranker) corpusFor(ctx context.Context, candidate SongCandidate, songsByID map[string]catalog.Song) string {
	if r.lyrics != nil {
		if lyrics, ok, err := r.lyrics.LyricsFor(ctx, candidate.SongID); err == nil && ok {
			return lyrics.Text
		}
	}
	parts := []string{candidate.Title, candidate.OriginalArtist}
	if song, ok := songsByID[candidate.SongID]; ok {
		parts = append(parts, song.Aliases...)
	}
	return strings.Join(parts, " ")
}

func flatten(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func tokenize(text string) []string {
	seen := make(map[string]struct{})
	tokens := make([]string, 0)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		tokens = append(tokens, field)
	}
	return tokens
}

// tokenOverlap is the share of corpus tokens the transcript covers.
func tokenOverlap(transcript, corpus []string) float64 {
	if len(corpus) == 0 {
		return 0
	}
	inTranscript := make(map[string]struct{}, len(transcript))
	for _, token := range transcript {
		inTranscript[token] = struct{}{}
	}
	intersection := 0
	for _, token := range corpus {
		if _, ok := inTranscript[token]; ok {
			intersection++
		}
	}
	denominator := len(corpus)
	if denominator < 1 {
		denominator = 1
	}
	return float64(intersection) / float64(denominator)
}

func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
