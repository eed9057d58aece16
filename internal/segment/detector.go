package segment

import (
	"context"
	"log/slog"

	"songscout/internal/config"
	"songscout/internal/envelope"
	"songscout/internal/logging"
)

// Detector wires the envelope sampler, the optional activity classifier, and
// the model scorer chain in front of the pure Detect function.
type Detector struct {
	cfg        config.Segment
	classifier Classifier
	scorers    []Scorer
	logger     *slog.Logger
}

// NewDetector constructs a detector. Classifier may be nil; scorers may be
// empty, in which case detection runs on loudness and labels alone.
func NewDetector(cfg config.Segment, classifier Classifier, scorers []Scorer, logger *slog.Logger) *Detector {
	return &Detector{
		cfg:        cfg,
		classifier: classifier,
		scorers:    scorers,
		logger:     logging.NewComponentLogger(logger, "segment"),
	}
}

// DetectFile runs segment detection over a WAV file. An unreadable file
// yields no segments, not an error.
func (d *Detector) DetectFile(ctx context.Context, path string) []ScoredSegment {
	series := envelope.Series(path)
	if len(series) == 0 {
		d.logger.Warn("no loudness series; skipping detection", logging.String("path", path))
		return nil
	}

	var labels []Label
	if d.classifier != nil {
		got, err := d.classifier.Labels(ctx, path, len(series))
		if err != nil {
			d.logger.Debug("activity classifier unavailable", logging.Error(err))
		} else {
			labels = got
		}
	}

	model := ChainScore(ctx, d.scorers, path, len(series), d.logger)

	segments := Detect(series, labels, model, d.cfg)
	d.logger.Info("segment detection complete",
		logging.String("path", path),
		logging.Int("seconds", len(series)),
		logging.Bool("model_available", model != nil),
		logging.Int("segments", len(segments)),
	)
	return segments
}
