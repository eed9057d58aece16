package config

const (
	defaultStagingDir  = "~/.local/share/songscout/staging"
	defaultReviewDir   = "~/.local/share/songscout/review"
	defaultLogDir      = "~/.local/share/songscout/logs"
	defaultCatalogDB   = "~/.local/share/songscout/catalog.db"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultSampleRate  = 44100
	defaultToolTimeout = 300

	defaultMinSongProb              = 0.55
	defaultMergeGapSec              = 3.0
	defaultMergeConfidenceThreshold = 0.7
	defaultMergeConfidenceBonusSec  = 2.0
	defaultModelWeight              = 0.6
	defaultRMSWeight                = 0.25
	defaultLabelWeight              = 0.15
	defaultMinDurationSec           = 60.0
	defaultMinConfidence            = 0.6

	defaultEmbeddingBands    = 32
	defaultTrainingWindowSec = 30.0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			ReviewDir:  defaultReviewDir,
			LogDir:     defaultLogDir,
			CatalogDB:  defaultCatalogDB,
		},
		Audio: Audio{
			SampleRate:         defaultSampleRate,
			FFmpegBinary:       "ffmpeg",
			ToolTimeoutSeconds: defaultToolTimeout,
		},
		Segment: Segment{
			MinSongProb:              defaultMinSongProb,
			MergeGapSec:              defaultMergeGapSec,
			MergeConfidenceThreshold: defaultMergeConfidenceThreshold,
			MergeConfidenceBonusSec:  defaultMergeConfidenceBonusSec,
			ModelWeight:              defaultModelWeight,
			RMSWeight:                defaultRMSWeight,
			LabelWeight:              defaultLabelWeight,
			MinDurationSec:           defaultMinDurationSec,
			MinConfidence:            defaultMinConfidence,
		},
		Matching: Matching{
			UseLyricsRerank: true,
			EmbeddingBands:  defaultEmbeddingBands,
		},
		Training: Training{
			WindowSec: defaultTrainingWindowSec,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
