package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateSegment(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateTraining(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if c.Audio.ToolTimeoutSeconds <= 0 {
		return errors.New("audio.tool_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateSegment() error {
	s := c.Segment
	if s.MinSongProb < 0 || s.MinSongProb > 1 {
		return errors.New("segment.min_song_prob must be between 0 and 1")
	}
	if s.MergeGapSec < 0 {
		return errors.New("segment.merge_gap_sec must not be negative")
	}
	if s.MergeConfidenceThreshold < 0 || s.MergeConfidenceThreshold > 1 {
		return errors.New("segment.merge_confidence_threshold must be between 0 and 1")
	}
	if s.MergeConfidenceBonusSec < 0 {
		return errors.New("segment.merge_confidence_bonus_sec must not be negative")
	}
	for _, weight := range []struct {
		name  string
		value float64
	}{
		{"segment.model_weight", s.ModelWeight},
		{"segment.rms_weight", s.RMSWeight},
		{"segment.label_weight", s.LabelWeight},
	} {
		if weight.value < 0 || weight.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", weight.name)
		}
	}
	if sum := s.ModelWeight + s.RMSWeight + s.LabelWeight; sum > 1.0001 {
		return fmt.Errorf("segment blend weights must sum to at most 1, got %.2f", sum)
	}
	if s.MinDurationSec < 0 {
		return errors.New("segment.min_duration_sec must not be negative")
	}
	if s.MinConfidence < 0 || s.MinConfidence > 1 {
		return errors.New("segment.min_confidence must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.EmbeddingBands <= 0 {
		return errors.New("matching.embedding_bands must be positive")
	}
	return nil
}

func (c *Config) validateTraining() error {
	if c.Training.WindowSec <= 0 {
		return errors.New("training.window_sec must be positive")
	}
	return nil
}
