package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"songscout/internal/training"
)

func TestWriteFeedbackTemplate(t *testing.T) {
	reviewDir := filepath.Join(t.TempDir(), "review")
	matches := []SongMatch{
		{SongTitle: "Alpha", OriginalArtist: "Artist A", Confidence: 0.72, StartTime: 100, EndTime: 190},
	}

	path, err := writeFeedbackTemplate(reviewDir, "run-1", matches)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "run-1.json" {
		t.Fatalf("unexpected template filename: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var template feedbackTemplate
	if err := json.Unmarshal(data, &template); err != nil {
		t.Fatalf("template is not valid JSON: %v", err)
	}
	if template.RunID != "run-1" || len(template.Items) != 1 {
		t.Fatalf("unexpected template: %+v", template)
	}
	item := template.Items[0]
	if item.SongTitle != "Alpha" || item.Confidence != 0.72 {
		t.Fatalf("match fields not carried over: %+v", item)
	}
	if item.CorrectedTitle != nil || item.CorrectedArtist != nil || item.Notes != nil {
		t.Fatalf("correction slots must start empty: %+v", item)
	}
	// The empty slots serialize as explicit nulls for the reviewer to fill.
	if !strings.Contains(string(data), `"corrected_title": null`) {
		t.Fatalf("expected null correction slots in output:\n%s", data)
	}
}

func TestWriteFeedbackTemplateEmptyRun(t *testing.T) {
	reviewDir := filepath.Join(t.TempDir(), "review")
	path, err := writeFeedbackTemplate(reviewDir, "run-2", nil)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var template feedbackTemplate
	if err := json.Unmarshal(data, &template); err != nil {
		t.Fatal(err)
	}
	if len(template.Items) != 0 {
		t.Fatalf("expected empty items, got %+v", template.Items)
	}
}

func TestWriteTrainingSamples(t *testing.T) {
	reviewDir := filepath.Join(t.TempDir(), "review")
	samples := []training.Sample{
		{
			TimestampSec:  300,
			ExpectedTitle: "Alpha",
			MatchedTitle:  "Alpha",
			MatchScore:    0.82,
			IsMatch:       true,
		},
	}

	path, err := WriteTrainingSamples(reviewDir, "run-3", samples)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "run-3.samples.json" {
		t.Fatalf("unexpected samples filename: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []training.Sample
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 1 || decoded[0].ExpectedTitle != "Alpha" || !decoded[0].IsMatch {
		t.Fatalf("samples did not round-trip: %+v", decoded)
	}
	if !strings.Contains(string(data), `"is_match"`) {
		t.Fatalf("expected snake_case field names:\n%s", data)
	}
}
