// Package media wraps the external binaries the pipeline depends on: ffmpeg
// for extraction and decoding, plus optional vocal-separation and
// transcription tools.
//
// Every invocation is bounded by a timeout from configuration. A missing or
// timed-out tool surfaces as ErrUnavailable so detection and matching can
// degrade to their documented fallbacks instead of aborting a run.
package media
