package segment

import (
	"math"
	"sort"

	"songscout/internal/config"
	"songscout/internal/envelope"
)

const noiseFloorMin = 100.0

// Detect fuses the loudness series, optional per-second activity labels, and
// an optional per-second model score vector into scored singing segments.
// It is a pure function: identical inputs always produce identical segments.
//
// Labels may be nil (neutral prior). Model may be nil, in which case the
// blend degrades to loudness and label alone. Model vectors shorter than the
// series are zero-padded at the tail; longer vectors are truncated.
func Detect(series []envelope.Sample, labels []Label, model []float64, cfg config.Segment) []ScoredSegment {
	if len(series) == 0 {
		return nil
	}

	probs, modelScores := secondProbabilities(series, labels, model, cfg)
	runs := rawRuns(probs, cfg.MinSongProb)
	merged := mergeRuns(runs, probs, cfg)

	segments := make([]ScoredSegment, 0, len(merged))
	for _, run := range merged {
		segments = append(segments, ScoredSegment{
			StartSec:   float64(run.start),
			EndSec:     float64(run.end),
			Confidence: runConfidence(run, probs, modelScores),
		})
	}
	return segments
}

// secondProbabilities computes the blended per-second song probability and
// the model-confidence series used later for segment confidence. Without a
// model the model-confidence series mirrors the blended probability.
func secondProbabilities(series []envelope.Sample, labels []Label, model []float64, cfg config.Segment) ([]float64, []float64) {
	threshold := noiseFloor(series)
	maxRMS := envelope.Max(series)

	hasModel := model != nil
	if hasModel {
		model = fitLength(model, len(series))
	}

	probs := make([]float64, len(series))
	modelScores := make([]float64, len(series))
	for i, sample := range series {
		rmsScore := 0.0
		if maxRMS > 0 {
			rmsScore = sample.RMS / maxRMS
		}
		if sample.RMS < threshold {
			rmsScore /= 2
		}

		labelScore := 0.5
		if i < len(labels) {
			labelScore = labels[i].score()
		}

		var prob float64
		if hasModel {
			prob = cfg.ModelWeight*model[i] + cfg.RMSWeight*rmsScore + cfg.LabelWeight*labelScore
		} else {
			prob = 0.6*rmsScore + 0.4*labelScore
		}
		if prob > 1 {
			prob = 1
		}
		probs[i] = prob
		if hasModel {
			modelScores[i] = model[i]
		} else {
			modelScores[i] = prob
		}
	}
	return probs, modelScores
}

// noiseFloor estimates the quiet-second threshold from the RMS median.
func noiseFloor(series []envelope.Sample) float64 {
	values := make([]float64, len(series))
	for i, sample := range series {
		values[i] = sample.RMS
	}
	sort.Float64s(values)
	var median float64
	mid := len(values) / 2
	if len(values)%2 == 1 {
		median = values[mid]
	} else {
		median = (values[mid-1] + values[mid]) / 2
	}
	return math.Max(noiseFloorMin, median*1.4)
}

type run struct {
	start int // inclusive second index
	end   int // exclusive second index
}

// rawRuns thresholds the probability series into contiguous runs. The
// comparison is inclusive: a second exactly at the threshold counts as song.
func rawRuns(probs []float64, minProb float64) []run {
	runs := make([]run, 0)
	start := -1
	for i, p := range probs {
		if p >= minProb {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, run{start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, run{start: start, end: len(probs)})
	}
	return runs
}

// mergeRuns walks raw runs in order and merges a run into its predecessor
// when the gap fits the allowed tolerance. High-confidence pairs earn the
// configured bonus tolerance, which lets brief instrumental dips through.
func mergeRuns(runs []run, probs []float64, cfg config.Segment) []run {
	if len(runs) == 0 {
		return nil
	}
	merged := []run{runs[0]}
	for _, next := range runs[1:] {
		prev := merged[len(merged)-1]
		gap := float64(next.start - prev.end)
		allowed := cfg.MergeGapSec
		if runMean(probs, prev) >= cfg.MergeConfidenceThreshold &&
			runMean(probs, next) >= cfg.MergeConfidenceThreshold {
			allowed += cfg.MergeConfidenceBonusSec
		}
		if gap <= allowed {
			merged[len(merged)-1] = run{start: prev.start, end: next.end}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

func runMean(values []float64, r run) float64 {
	if r.end <= r.start {
		return 0
	}
	sum := 0.0
	for i := r.start; i < r.end; i++ {
		sum += values[i]
	}
	return sum / float64(r.end-r.start)
}

// runConfidence blends the mean blended probability and the mean model score
// across the run 50/50, clamped to [0.5, 0.99] and rounded to 2 decimals.
func runConfidence(r run, probs, modelScores []float64) float64 {
	conf := (runMean(probs, r) + runMean(modelScores, r)) / 2
	if conf < 0.5 {
		conf = 0.5
	}
	if conf > 0.99 {
		conf = 0.99
	}
	return math.Round(conf*100) / 100
}

func fitLength(vec []float64, length int) []float64 {
	if len(vec) == length {
		return vec
	}
	out := make([]float64, length)
	copy(out, vec)
	return out
}
