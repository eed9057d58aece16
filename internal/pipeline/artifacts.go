package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"songscout/internal/training"
)

// feedbackItem mirrors a SongMatch with empty correction slots a reviewer
// fills in by hand.
type feedbackItem struct {
	StartTime       float64 `json:"start_time"`
	EndTime         float64 `json:"end_time"`
	SongTitle       string  `json:"song_title"`
	OriginalArtist  string  `json:"original_artist"`
	Confidence      float64 `json:"confidence"`
	CorrectedTitle  *string `json:"corrected_title"`
	CorrectedArtist *string `json:"corrected_artist"`
	Notes           *string `json:"notes"`
}

type feedbackTemplate struct {
	RunID string         `json:"run_id"`
	Items []feedbackItem `json:"items"`
}

// writeFeedbackTemplate stores the per-run review file a human can correct;
// corrected files feed back into hint-based training.
func writeFeedbackTemplate(reviewDir, runID string, matches []SongMatch) (string, error) {
	if err := os.MkdirAll(reviewDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure review dir: %w", err)
	}
	items := make([]feedbackItem, 0, len(matches))
	for _, match := range matches {
		items = append(items, feedbackItem{
			StartTime:      match.StartTime,
			EndTime:        match.EndTime,
			SongTitle:      match.SongTitle,
			OriginalArtist: match.OriginalArtist,
			Confidence:     match.Confidence,
		})
	}
	payload, err := json.MarshalIndent(feedbackTemplate{RunID: runID, Items: items}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal feedback template: %w", err)
	}
	path := filepath.Join(reviewDir, runID+".json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write feedback template: %w", err)
	}
	return path, nil
}

// WriteTrainingSamples stores the per-run labeled samples next to the
// feedback templates.
func WriteTrainingSamples(reviewDir, runID string, samples []training.Sample) (string, error) {
	if err := os.MkdirAll(reviewDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure review dir: %w", err)
	}
	payload, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal training samples: %w", err)
	}
	path := filepath.Join(reviewDir, runID+".samples.json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write training samples: %w", err)
	}
	return path, nil
}
