package segment

// ScoredSegment is one detected singing interval. Immutable once created;
// seconds are relative to the start of the analyzed file and the interval is
// half-open (EndSec exclusive).
type ScoredSegment struct {
	StartSec   float64
	EndSec     float64
	Confidence float64
}

// DurationSec reports the segment length in seconds.
func (s ScoredSegment) DurationSec() float64 {
	return s.EndSec - s.StartSec
}

// Label is the per-second category an activity classifier assigns.
type Label uint8

const (
	LabelUnknown Label = iota
	LabelMusic
	LabelSpeech
	LabelNoise
)

// score maps a label to its contribution to the per-second song probability.
// Unknown keeps the neutral prior used when no classifier ran at all.
func (l Label) score() float64 {
	switch l {
	case LabelMusic:
		return 1.0
	case LabelSpeech:
		return 0.3
	case LabelNoise:
		return 0.1
	default:
		return 0.5
	}
}
