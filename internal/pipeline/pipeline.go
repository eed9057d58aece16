package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"songscout/internal/catalog"
	"songscout/internal/config"
	"songscout/internal/logging"
	"songscout/internal/match"
	"songscout/internal/media"
	"songscout/internal/segment"
	"songscout/internal/training"
)

// SongMatch is the stable reporting contract for one processed interval.
type SongMatch struct {
	SongTitle      string  `json:"song_title"`
	OriginalArtist string  `json:"original_artist"`
	Confidence     float64 `json:"confidence"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
}

// Result is the output of one pipeline run over a single audio source.
type Result struct {
	RunID        string      `json:"run_id"`
	AudioPath    string      `json:"audio_path"`
	Matches      []SongMatch `json:"results"`
	FeedbackPath string      `json:"feedback_template_path,omitempty"`
}

// Pipeline wires detection, matching, and reranking over a shared catalog
// snapshot. One Pipeline serves one process; concurrent runs over distinct
// audio files are safe because every per-run value is owned by the caller.
type Pipeline struct {
	cfg      *config.Config
	tools    *media.Tools
	detector *segment.Detector
	matcher  *match.Matcher
	reranker *match.Reranker
	cache    *catalog.Cache
	logger   *slog.Logger
}

// New wires the full pipeline: the VAD and vocal-energy scorer stages, the
// spectral embedding extractor, and the Jaro-Winkler fuzzy lyric backend.
// Classifier may be nil.
func New(cfg *config.Config, store *catalog.Store, classifier segment.Classifier, logger *slog.Logger) *Pipeline {
	tools := media.NewTools(cfg, logger)
	cache := catalog.NewCache(store)
	scorers := []segment.Scorer{
		segment.VADScorer{Tools: tools},
		segment.VocalEnergyScorer{Tools: tools},
	}
	extractor := &match.SpectralExtractor{Tools: tools, Bands: cfg.Matching.EmbeddingBands}
	return &Pipeline{
		cfg:      cfg,
		tools:    tools,
		detector: segment.NewDetector(cfg.Segment, classifier, scorers, logger),
		matcher:  match.NewMatcher(cache, extractor, logger),
		reranker: match.NewReranker(store, match.JaroWinklerScorer{}, logger),
		cache:    cache,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Cache exposes the catalog snapshot cache, mainly for explicit invalidation
// after catalog imports.
func (p *Pipeline) Cache() *catalog.Cache {
	return p.cache
}

// TrainingBuilder returns a sample builder sharing this pipeline's matcher
// and reranker.
func (p *Pipeline) TrainingBuilder() *training.Builder {
	return training.NewBuilder(
		p.matcher,
		p.reranker,
		p.cache,
		p.tools,
		p.cfg.Training.WindowSec,
		p.cfg.Matching.UseLyricsRerank,
		p.logger,
	)
}

// ProcessSource extracts audio from an arbitrary source file and analyzes
// it. Extraction failure is the one hard error in this layer: without audio
// there is nothing to analyze.
func (p *Pipeline) ProcessSource(ctx context.Context, sourcePath string) (*Result, error) {
	audioPath, err := p.tools.ExtractAudio(ctx, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("extract audio from %s: %w", sourcePath, err)
	}
	if p.cfg.Audio.EnableVocalSeparation {
		if vocalPath, sepErr := p.tools.SeparateVocals(ctx, audioPath); sepErr == nil {
			audioPath = vocalPath
		} else {
			p.logger.Warn("vocal separation failed; analyzing original mix", logging.Error(sepErr))
		}
	}
	return p.ProcessAudio(ctx, audioPath)
}

// ProcessAudio runs detection and matching over an extracted WAV file. It
// never fails on empty results: silence in, empty match list out.
func (p *Pipeline) ProcessAudio(ctx context.Context, audioPath string) (*Result, error) {
	runID := uuid.NewString()
	logger := p.logger.With(logging.String("run_id", runID))

	segments := p.detector.DetectFile(ctx, audioPath)
	filtered := segment.Filter(segments, p.cfg.Segment.MinDurationSec, p.cfg.Segment.MinConfidence)
	logger.Info("segments filtered",
		logging.Int("detected", len(segments)),
		logging.Int("kept", len(filtered)),
	)

	matches := make([]SongMatch, 0, len(filtered))
	for _, seg := range filtered {
		matches = append(matches, p.matchSegment(ctx, audioPath, seg, logger))
	}

	result := &Result{RunID: runID, AudioPath: audioPath, Matches: matches}
	feedbackPath, err := writeFeedbackTemplate(p.cfg.Paths.ReviewDir, runID, matches)
	if err != nil {
		logger.Warn("feedback template not written", logging.Error(err))
	} else {
		result.FeedbackPath = feedbackPath
	}
	return result, nil
}

func (p *Pipeline) matchSegment(ctx context.Context, audioPath string, seg segment.ScoredSegment, logger *slog.Logger) SongMatch {
	candidates := p.matcher.Candidates(ctx, audioPath, seg.StartSec, seg.EndSec, seg.Confidence)
	if len(candidates) == 0 {
		logger.Warn("no matching candidates for segment",
			logging.Float64("start_sec", seg.StartSec),
			logging.Float64("end_sec", seg.EndSec),
		)
		return unknownMatch(seg)
	}

	best := candidates[0]
	if p.cfg.Matching.UseLyricsRerank {
		transcript, err := p.tools.Transcribe(ctx, audioPath, seg.StartSec, seg.EndSec)
		if err != nil {
			logger.Debug("transcription unavailable; keeping acoustic order", logging.Error(err))
		}
		index, err := p.cache.Snapshot(ctx)
		if err == nil {
			winner, _, rerr := p.reranker.Rerank(ctx, transcript, seg.Confidence, candidates, index)
			if rerr == nil {
				best = winner
			} else if errors.Is(rerr, match.ErrNoDecision) {
				return unknownMatch(seg)
			}
		}
	}

	return SongMatch{
		SongTitle:      best.Title,
		OriginalArtist: best.OriginalArtist,
		Confidence:     matchConfidence(best.MatchScore, seg.Confidence),
		StartTime:      seg.StartSec,
		EndTime:        seg.EndSec,
	}
}

func unknownMatch(seg segment.ScoredSegment) SongMatch {
	return SongMatch{
		SongTitle:      "unknown",
		OriginalArtist: "unknown",
		StartTime:      seg.StartSec,
		EndTime:        seg.EndSec,
	}
}

// matchConfidence scales the acoustic score by the segment confidence,
// capped and rounded for reporting.
func matchConfidence(score, segmentConfidence float64) float64 {
	return math.Round(math.Min(0.99, score*segmentConfidence)*100) / 100
}
