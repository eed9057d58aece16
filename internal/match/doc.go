// Package match ranks catalog songs against detected audio intervals.
//
// Scoring has two layers. The acoustic layer compares a spectral embedding
// of the interval to stored catalog embeddings, with a deterministic
// heuristic fallback when either side has no embedding. The text layer
// rescores the candidates against a transcript (token overlap, optionally a
// fuzzy backend) and combines both signals to pick a single winner.
package match
