package segment

// Filter keeps a segment when it is long enough or confident enough. The
// disjunction is intentional: a short but clean chorus-only cover survives
// on confidence alone.
func Filter(segments []ScoredSegment, minDurationSec, minConfidence float64) []ScoredSegment {
	kept := make([]ScoredSegment, 0, len(segments))
	for _, seg := range segments {
		if seg.DurationSec() >= minDurationSec || seg.Confidence >= minConfidence {
			kept = append(kept, seg)
		}
	}
	return kept
}
