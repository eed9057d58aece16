package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"songscout/internal/pipeline"
	"songscout/internal/training"
)

func newTrainingCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "training",
		Short: "Measure matching accuracy against time-stamped hints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newTrainingRunCommand(ctx))
	return cmd
}

func newTrainingRunCommand(ctx *commandContext) *cobra.Command {
	var hintsPath string

	cmd := &cobra.Command{
		Use:   "run <audio.wav>",
		Short: "Build labeled samples from a hint file and summarize accuracy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			hints, err := training.LoadHints(hintsPath)
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			p := pipeline.New(cfg, store, nil, logger)
			samples := p.TrainingBuilder().Build(cmd.Context(), args[0], hints)
			summary := training.Summarize(samples)

			runID := uuid.NewString()
			samplesPath, err := pipeline.WriteTrainingSamples(cfg.Paths.ReviewDir, runID, samples)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "samples written to %s\n", samplesPath)
			return writeJSON(cmd, summary)
		},
	}

	cmd.Flags().StringVar(&hintsPath, "hints", "", "JSON file of timestamped song hints (required)")
	_ = cmd.MarkFlagRequired("hints")
	return cmd
}
