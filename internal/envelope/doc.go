// Package envelope turns decoded audio into a per-second loudness series.
// It is the leaf signal every detection heuristic builds on.
package envelope
