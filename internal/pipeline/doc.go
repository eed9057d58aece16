// Package pipeline orchestrates the full analysis of one audio source:
// extraction, segment detection, candidate matching, lyric reranking, and
// the JSON artifacts callers and reviewers consume.
package pipeline
