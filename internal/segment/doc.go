// Package segment finds the singing intervals of a long recording.
//
// Detection blends three per-second signals into one song probability: the
// loudness envelope, an optional activity-classifier label, and an optional
// model score from a fallback chain (custom model, then voice-activity
// detection, then vocal-stem energy). The probability series is thresholded
// into raw runs, nearby runs merge under a confidence-aware gap rule, and
// each merged run becomes an immutable ScoredSegment.
//
// Every stage degrades: a missing classifier or model narrows the blend but
// never aborts a run, and an unreadable file yields zero segments.
package segment
