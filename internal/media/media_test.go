package media

import (
	"context"
	"errors"
	"testing"

	"songscout/internal/logging"
	"songscout/internal/testsupport"
)

func TestNewToolsFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Audio.VocalSeparatorBinary = "  demucs-wrapper  "
	tools := NewTools(cfg, logging.NewNop())

	if tools.SampleRate() != cfg.Audio.SampleRate {
		t.Fatalf("sample rate = %d, want %d", tools.SampleRate(), cfg.Audio.SampleRate)
	}
	if !tools.HasSeparator() {
		t.Fatal("expected separator to be configured after trimming")
	}
}

func TestHasSeparatorUnconfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tools := NewTools(cfg, logging.NewNop())
	if tools.HasSeparator() {
		t.Fatal("expected no separator by default")
	}
}

func TestSeparateVocalsNoOpWithoutBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tools := NewTools(cfg, logging.NewNop())

	got, err := tools.SeparateVocals(context.Background(), "/tmp/mix.wav")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/mix.wav" {
		t.Fatalf("expected original path back, got %s", got)
	}
}

func TestSeparateVocalsMissingBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Audio.VocalSeparatorBinary = "definitely-not-a-real-separator-binary"
	tools := NewTools(cfg, logging.NewNop())

	_, err := tools.SeparateVocals(context.Background(), "/tmp/mix.wav")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestTranscribeUnconfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tools := NewTools(cfg, logging.NewNop())

	transcript, err := tools.Transcribe(context.Background(), "/tmp/mix.wav", 0, 30)
	if err != nil {
		t.Fatal(err)
	}
	if transcript != "" {
		t.Fatalf("expected empty transcript, got %q", transcript)
	}
}

func TestTranscribeMissingBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Audio.TranscriberBinary = "definitely-not-a-real-transcriber-binary"
	tools := NewTools(cfg, logging.NewNop())

	_, err := tools.Transcribe(context.Background(), "/tmp/mix.wav", 0, 30)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestDecodePCM16(t *testing.T) {
	// 0x0001 = 1, 0xFFFF = -1, trailing odd byte dropped.
	data := []byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x80, 0x42}
	samples := DecodePCM16(data)
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if samples[0] != 1 || samples[1] != -1 || samples[2] != -32768 {
		t.Fatalf("unexpected samples: %+v", samples)
	}
}

func TestDecodePCM16Empty(t *testing.T) {
	if got := DecodePCM16(nil); len(got) != 0 {
		t.Fatalf("expected no samples, got %+v", got)
	}
}
