package segment

import (
	"context"
	"errors"
	"log/slog"

	"songscout/internal/envelope"
	"songscout/internal/logging"
	"songscout/internal/media"
)

// ErrScorerUnavailable reports that a scorer's backing dependency is missing.
var ErrScorerUnavailable = errors.New("segment: scorer unavailable")

// Scorer is one stage of the acoustic model fallback chain. TryScore returns
// a per-second singing probability vector for the file, or an error when the
// stage cannot run; the chain then falls through to the next stage.
type Scorer interface {
	Name() string
	TryScore(ctx context.Context, path string, seconds int) ([]float64, error)
}

// ChainScore tries scorers in priority order and returns the first usable
// vector. A nil result means every stage failed and the detector should
// blend without a model term.
func ChainScore(ctx context.Context, scorers []Scorer, path string, seconds int, logger *slog.Logger) []float64 {
	for _, scorer := range scorers {
		vec, err := scorer.TryScore(ctx, path, seconds)
		if err != nil {
			if logger != nil {
				logger.Debug("model scorer stage unavailable",
					logging.String("scorer", scorer.Name()),
					logging.Error(err),
				)
			}
			continue
		}
		if len(vec) == 0 {
			continue
		}
		if logger != nil {
			logger.Debug("model scorer selected", logging.String("scorer", scorer.Name()))
		}
		return vec
	}
	return nil
}

// FuncScorer adapts a plain scoring function. It is the injection point for
// a custom detection model and for test doubles.
type FuncScorer struct {
	ScorerName string
	Fn         func(ctx context.Context, path string, seconds int) ([]float64, error)
}

func (f FuncScorer) Name() string {
	return f.ScorerName
}

func (f FuncScorer) TryScore(ctx context.Context, path string, seconds int) ([]float64, error) {
	if f.Fn == nil {
		return nil, ErrScorerUnavailable
	}
	return f.Fn(ctx, path, seconds)
}

const (
	vadSampleRate = 16000
	vadFrameMs    = 20
)

// VADScorer marks a second as singing-active when at least half of its
// voice-activity frames contain voiced audio. Output is binary per second.
type VADScorer struct {
	Tools *media.Tools
}

func (v VADScorer) Name() string {
	return "vad"
}

func (v VADScorer) TryScore(ctx context.Context, path string, seconds int) ([]float64, error) {
	if v.Tools == nil {
		return nil, ErrScorerUnavailable
	}
	vad, err := newVAD()
	if err != nil {
		return nil, err
	}
	data, err := v.Tools.ExtractPCM(ctx, path, 0, 0, vadSampleRate)
	if err != nil {
		return nil, err
	}

	samplesPerFrame := vadSampleRate * vadFrameMs / 1000
	frameBytes := samplesPerFrame * 2
	framesPerSecond := 1000 / vadFrameMs

	out := make([]float64, 0, seconds)
	voiced, counted := 0, 0
	for offset := 0; offset+frameBytes <= len(data); offset += frameBytes {
		active, err := vad.Process(vadSampleRate, data[offset:offset+frameBytes])
		if err != nil {
			continue
		}
		counted++
		if active {
			voiced++
		}
		if counted == framesPerSecond {
			out = append(out, binaryActivity(voiced, counted))
			voiced, counted = 0, 0
		}
	}
	if counted > 0 {
		out = append(out, binaryActivity(voiced, counted))
	}
	return out, nil
}

func binaryActivity(voiced, counted int) float64 {
	if counted > 0 && float64(voiced)/float64(counted) >= 0.5 {
		return 1.0
	}
	return 0.0
}

// VocalEnergyScorer isolates the vocal stem and reuses the envelope sampler
// on it, normalized by the stem's own loudest second.
type VocalEnergyScorer struct {
	Tools *media.Tools
}

func (v VocalEnergyScorer) Name() string {
	return "vocal-energy"
}

func (v VocalEnergyScorer) TryScore(ctx context.Context, path string, seconds int) ([]float64, error) {
	if v.Tools == nil || !v.Tools.HasSeparator() {
		return nil, ErrScorerUnavailable
	}
	vocalPath, err := v.Tools.SeparateVocals(ctx, path)
	if err != nil {
		return nil, err
	}
	series := envelope.Series(vocalPath)
	if len(series) == 0 {
		return nil, ErrScorerUnavailable
	}
	max := envelope.Max(series)
	if max <= 0 {
		return nil, ErrScorerUnavailable
	}
	out := make([]float64, len(series))
	for i, sample := range series {
		out[i] = sample.RMS / max
	}
	return out, nil
}
