package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"songscout/internal/config"
	"songscout/internal/logging"
)

// ErrUnavailable reports that an external tool is missing, misconfigured, or
// timed out. Callers treat it as "component unavailable" and degrade, never
// as a fatal pipeline error.
var ErrUnavailable = errors.New("media: tool unavailable")

// Tools invokes the external binaries the pipeline leans on. Every call is
// bounded by the configured timeout.
type Tools struct {
	ffmpeg     string
	separator  string
	transcribe string
	stagingDir string
	sampleRate int
	timeout    time.Duration
	logger     *slog.Logger
}

// NewTools builds a Tools from configuration.
func NewTools(cfg *config.Config, logger *slog.Logger) *Tools {
	return &Tools{
		ffmpeg:     cfg.Audio.FFmpegBinary,
		separator:  strings.TrimSpace(cfg.Audio.VocalSeparatorBinary),
		transcribe: strings.TrimSpace(cfg.Audio.TranscriberBinary),
		stagingDir: cfg.Paths.StagingDir,
		sampleRate: cfg.Audio.SampleRate,
		timeout:    time.Duration(cfg.Audio.ToolTimeoutSeconds) * time.Second,
		logger:     logging.NewComponentLogger(logger, "media"),
	}
}

// SampleRate reports the target extraction sample rate.
func (t *Tools) SampleRate() int {
	return t.sampleRate
}

// HasSeparator reports whether a vocal separator binary is configured.
func (t *Tools) HasSeparator() bool {
	return t.separator != ""
}

func (t *Tools) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

// ExtractAudio transcodes a source file into a mono WAV at the configured
// sample rate, written under the staging directory.
func (t *Tools) ExtractAudio(ctx context.Context, sourcePath string) (string, error) {
	if _, err := exec.LookPath(t.ffmpeg); err != nil {
		return "", fmt.Errorf("%w: %s not found", ErrUnavailable, t.ffmpeg)
	}
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	outPath := filepath.Join(t.stagingDir, base+".wav")

	ctx, cancel := t.bounded(ctx)
	defer cancel()
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", sourcePath,
		"-vn",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", t.sampleRate),
		"-c:a", "pcm_s16le",
		outPath,
	}
	cmd := exec.CommandContext(ctx, t.ffmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: extract timed out", ErrUnavailable)
		}
		return "", fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return outPath, nil
}

// ExtractPCM decodes an interval of the file to raw s16le mono PCM at the
// requested rate. A duration of 0 decodes to the end of the file.
func (t *Tools) ExtractPCM(ctx context.Context, path string, startSec, durationSec float64, rate int) ([]byte, error) {
	if _, err := exec.LookPath(t.ffmpeg); err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrUnavailable, t.ffmpeg)
	}
	ctx, cancel := t.bounded(ctx)
	defer cancel()
	args := []string{"-hide_banner", "-loglevel", "error"}
	if startSec > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", startSec))
	}
	if durationSec > 0 {
		args = append(args, "-t", fmt.Sprintf("%.3f", durationSec))
	}
	args = append(args,
		"-i", path,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", rate),
		"-f", "s16le",
		"-",
	)
	cmd := exec.CommandContext(ctx, t.ffmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: pcm extract timed out", ErrUnavailable)
		}
		return nil, fmt.Errorf("ffmpeg pcm extract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// SeparateVocals runs the configured separator binary as
// `separator <input> <output.wav>`. When no separator is configured the
// original path is returned unchanged, the documented no-op fallback.
func (t *Tools) SeparateVocals(ctx context.Context, path string) (string, error) {
	if t.separator == "" {
		return path, nil
	}
	if _, err := exec.LookPath(t.separator); err != nil {
		return "", fmt.Errorf("%w: %s not found", ErrUnavailable, t.separator)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(t.stagingDir, base+".vocals.wav")

	ctx, cancel := t.bounded(ctx)
	defer cancel()
	cmd := exec.CommandContext(ctx, t.separator, path, outPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: vocal separation timed out", ErrUnavailable)
		}
		return "", fmt.Errorf("separate vocals: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return outPath, nil
}

// Transcribe runs the configured transcriber binary as
// `transcriber <input> <start> <end>` and returns its stdout as plain text.
// An empty transcript is a meaningful result (no sung lyrics detected), not
// an error. With no transcriber configured the transcript is empty.
func (t *Tools) Transcribe(ctx context.Context, path string, startSec, endSec float64) (string, error) {
	if t.transcribe == "" {
		return "", nil
	}
	if _, err := exec.LookPath(t.transcribe); err != nil {
		return "", fmt.Errorf("%w: %s not found", ErrUnavailable, t.transcribe)
	}
	ctx, cancel := t.bounded(ctx)
	defer cancel()
	cmd := exec.CommandContext(ctx, t.transcribe,
		path,
		fmt.Sprintf("%.3f", startSec),
		fmt.Sprintf("%.3f", endSec),
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: transcription timed out", ErrUnavailable)
		}
		return "", fmt.Errorf("transcribe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(string(output)), nil
}

// DecodePCM16 converts little-endian signed 16-bit PCM bytes into float64
// samples in int16 amplitude units. A trailing odd byte is dropped.
func DecodePCM16(data []byte) []float64 {
	out := make([]float64, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		v := int16(uint16(data[i]) | uint16(data[i+1])<<8)
		out = append(out, float64(v))
	}
	return out
}
