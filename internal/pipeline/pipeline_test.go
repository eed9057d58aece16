package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"songscout/internal/catalog"
	"songscout/internal/logging"
	"songscout/internal/testsupport"
)

func newTestPipeline(t *testing.T, songs ...catalog.Song) *Pipeline {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := catalog.Open(cfg.Paths.CatalogDB)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	ctx := context.Background()
	for _, song := range songs {
		if err := store.UpsertSong(ctx, song); err != nil {
			t.Fatalf("upsert %s: %v", song.SongID, err)
		}
	}
	return New(cfg, store, nil, logging.NewNop())
}

// writeSyntheticWAV writes a mono file whose per-second loudness is flat at
// quiet except for the [loudStart, loudEnd) region. A low sample rate keeps
// the file small; the envelope sampler follows the file's own rate.
func writeSyntheticWAV(t *testing.T, path string, totalSec, loudStart, loudEnd, quiet, loud int) {
	t.Helper()
	rate := 100
	data := make([]int, 0, totalSec*rate)
	for sec := 0; sec < totalSec; sec++ {
		value := quiet
		if sec >= loudStart && sec < loudEnd {
			value = loud
		}
		for i := 0; i < rate; i++ {
			data = append(data, value)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	encoder := wav.NewEncoder(file, rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := encoder.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProcessAudioMatchesLoudRegion(t *testing.T) {
	p := newTestPipeline(t,
		catalog.Song{SongID: "song-a", Title: "Alpha", OriginalArtist: "Artist A"},
		catalog.Song{SongID: "song-b", Title: "Beta", OriginalArtist: "Artist B"},
		catalog.Song{SongID: "song-c", Title: "Gamma", OriginalArtist: "Artist C"},
	)
	audioPath := filepath.Join(t.TempDir(), "show.wav")
	writeSyntheticWAV(t, audioPath, 600, 100, 190, 10, 5000)

	result, err := p.ProcessAudio(context.Background(), audioPath)
	if err != nil {
		t.Fatal(err)
	}
	if result.RunID == "" {
		t.Fatal("expected a run ID")
	}
	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d: %+v", len(result.Matches), result.Matches)
	}
	got := result.Matches[0]
	if got.StartTime != 100 || got.EndTime != 190 {
		t.Fatalf("expected match over [100,190), got %+v", got)
	}
	// Deterministic fallback ranking for this interval puts song-c on top.
	if got.SongTitle != "Gamma" || got.OriginalArtist != "Artist C" {
		t.Fatalf("unexpected winner: %+v", got)
	}
	if got.Confidence <= 0 || got.Confidence > 0.99 {
		t.Fatalf("confidence %f outside (0, 0.99]", got.Confidence)
	}
	if result.FeedbackPath == "" {
		t.Fatal("expected feedback template path")
	}
	if _, err := os.Stat(result.FeedbackPath); err != nil {
		t.Fatalf("feedback template not on disk: %v", err)
	}
}

func TestProcessAudioUnreadableFile(t *testing.T) {
	p := newTestPipeline(t,
		catalog.Song{SongID: "song-a", Title: "Alpha", OriginalArtist: "Artist A"},
	)

	result, err := p.ProcessAudio(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	if err != nil {
		t.Fatalf("unreadable audio must not fail the run: %v", err)
	}
	if len(result.Matches) != 0 {
		t.Fatalf("expected no matches, got %+v", result.Matches)
	}
	if result.FeedbackPath == "" {
		t.Fatal("expected feedback template even for empty runs")
	}
}

func TestProcessAudioEmptyCatalogReportsUnknown(t *testing.T) {
	p := newTestPipeline(t)
	audioPath := filepath.Join(t.TempDir(), "show.wav")
	writeSyntheticWAV(t, audioPath, 300, 60, 150, 10, 5000)

	result, err := p.ProcessAudio(context.Background(), audioPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 match entry, got %+v", result.Matches)
	}
	got := result.Matches[0]
	if got.SongTitle != "unknown" || got.OriginalArtist != "unknown" {
		t.Fatalf("expected unknown placeholder, got %+v", got)
	}
	if got.Confidence != 0 {
		t.Fatalf("expected zero confidence for unknown, got %f", got.Confidence)
	}
	if got.StartTime != 60 || got.EndTime != 150 {
		t.Fatalf("expected segment bounds carried through, got %+v", got)
	}
}

func TestMatchConfidence(t *testing.T) {
	tests := []struct {
		score, segConf, want float64
	}{
		{0.8, 0.9, 0.72},
		{0.835, 0.8, 0.67},
		{1.0, 1.0, 0.99},
		{0, 0.9, 0},
	}
	for _, tt := range tests {
		if got := matchConfidence(tt.score, tt.segConf); got != tt.want {
			t.Fatalf("matchConfidence(%f, %f) = %f, want %f", tt.score, tt.segConf, got, tt.want)
		}
	}
}

func TestProcessSourceMissingFFmpeg(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Audio.FFmpegBinary = "definitely-not-a-real-ffmpeg-binary"
	store, err := catalog.Open(cfg.Paths.CatalogDB)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	p := New(cfg, store, nil, logging.NewNop())
	if _, err := p.ProcessSource(context.Background(), "/tmp/source.mkv"); err == nil {
		t.Fatal("expected hard error when extraction is impossible")
	}
}
