package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"songscout/internal/pipeline"
)

// writeTestConfig writes a config whose paths all live under a temp dir and
// returns its path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`
[paths]
staging_dir = %q
review_dir = %q
log_dir = %q
catalog_db = %q
`,
		filepath.Join(dir, "staging"),
		filepath.Join(dir, "review"),
		filepath.Join(dir, "logs"),
		filepath.Join(dir, "catalog.db"),
	)
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCLI executes the root command with a fresh command context.
func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeShowWAV(t *testing.T, path string, totalSec, loudStart, loudEnd int) {
	t.Helper()
	rate := 50
	data := make([]int, 0, totalSec*rate)
	for sec := 0; sec < totalSec; sec++ {
		value := 10
		if sec >= loudStart && sec < loudEnd {
			value = 5000
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

func TestConfigShow(t *testing.T) {
	configPath := writeTestConfig(t)
	out, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v\n%s", err, out)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("config show output is not JSON: %v\n%s", err, out)
	}
}

func TestConfigInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	configPath := writeTestConfig(t)

	out, err := runCLI(t, configPath, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	target := filepath.Join(home, ".config", "songscout", "config.toml")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config at %s: %v", target, err)
	}

	// A second init without --force refuses to overwrite.
	if _, err := runCLI(t, configPath, "config", "init"); err == nil {
		t.Fatal("expected error on existing config without --force")
	}
	if _, err := runCLI(t, configPath, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
}

func TestCatalogImportAndList(t *testing.T) {
	configPath := writeTestConfig(t)

	songsPath := filepath.Join(t.TempDir(), "songs.json")
	songs := `[
        {"song_id": "song-a", "title": "Alpha", "original_artist": "Artist A",
         "aliases": ["The Alpha Song"], "lyrics": "hello darkness my old friend"},
        {"song_id": "song-b", "title": "Beta", "original_artist": "Artist B"}
    ]`
	if err := os.WriteFile(songsPath, []byte(songs), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, configPath, "catalog", "import", songsPath)
	if err != nil {
		t.Fatalf("catalog import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "imported 2 songs") {
		t.Fatalf("unexpected import output: %s", out)
	}

	out, err = runCLI(t, configPath, "catalog", "list", "--json")
	if err != nil {
		t.Fatalf("catalog list: %v\n%s", err, out)
	}
	var listed []struct {
		SongID string `json:"SongID"`
		Title  string `json:"Title"`
	}
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, out)
	}
	if len(listed) != 2 || listed[0].SongID != "song-a" {
		t.Fatalf("unexpected listing: %+v", listed)
	}
}

func TestCatalogImportRejectsIncompleteEntry(t *testing.T) {
	configPath := writeTestConfig(t)
	songsPath := filepath.Join(t.TempDir(), "songs.json")
	if err := os.WriteFile(songsPath, []byte(`[{"title": "No ID"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, configPath, "catalog", "import", songsPath); err == nil {
		t.Fatal("expected error for entry without song_id")
	}
}

func TestDetectOutputsSegments(t *testing.T) {
	configPath := writeTestConfig(t)
	audioPath := filepath.Join(t.TempDir(), "show.wav")
	writeShowWAV(t, audioPath, 300, 60, 150)

	out, err := runCLI(t, configPath, "detect", "--json", audioPath)
	if err != nil {
		t.Fatalf("detect: %v\n%s", err, out)
	}
	var segments []struct {
		StartSec float64
		EndSec   float64
	}
	if err := json.Unmarshal([]byte(out), &segments); err != nil {
		t.Fatalf("detect output is not JSON: %v\n%s", err, out)
	}
	if len(segments) != 1 || segments[0].StartSec != 60 || segments[0].EndSec != 150 {
		t.Fatalf("unexpected segments: %+v", segments)
	}
}

func TestAnalyzeAudioOnly(t *testing.T) {
	configPath := writeTestConfig(t)

	songsPath := filepath.Join(t.TempDir(), "songs.json")
	songs := `[{"song_id": "song-a", "title": "Alpha", "original_artist": "Artist A"}]`
	if err := os.WriteFile(songsPath, []byte(songs), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, configPath, "catalog", "import", songsPath); err != nil {
		t.Fatal(err)
	}

	audioPath := filepath.Join(t.TempDir(), "show.wav")
	writeShowWAV(t, audioPath, 300, 60, 150)

	out, err := runCLI(t, configPath, "analyze", "--audio", audioPath)
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	var result pipeline.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("analyze output is not JSON: %v\n%s", err, out)
	}
	if len(result.Matches) != 1 || result.Matches[0].SongTitle != "Alpha" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.FeedbackPath == "" {
		t.Fatal("expected feedback template path in result")
	}
}

func TestTrainingRun(t *testing.T) {
	configPath := writeTestConfig(t)

	songsPath := filepath.Join(t.TempDir(), "songs.json")
	songs := `[{"song_id": "song-a", "title": "Alpha", "original_artist": "Artist A"}]`
	if err := os.WriteFile(songsPath, []byte(songs), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, configPath, "catalog", "import", songsPath); err != nil {
		t.Fatal(err)
	}

	hintsPath := filepath.Join(t.TempDir(), "hints.json")
	hints := `[{"timestamp_sec": 100, "song_title": "Alpha", "original_artist": "Artist A"}]`
	if err := os.WriteFile(hintsPath, []byte(hints), 0o644); err != nil {
		t.Fatal(err)
	}

	audioPath := filepath.Join(t.TempDir(), "show.wav")
	writeShowWAV(t, audioPath, 300, 60, 150)

	out, err := runCLI(t, configPath, "training", "run", "--hints", hintsPath, audioPath)
	if err != nil {
		t.Fatalf("training run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "samples written to") {
		t.Fatalf("expected samples path in output: %s", out)
	}
	if !strings.Contains(out, `"accuracy": 1`) {
		t.Fatalf("expected perfect accuracy in summary: %s", out)
	}
}
