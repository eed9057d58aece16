package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"songscout/internal/media"
	"songscout/internal/segment"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var unfiltered bool

	cmd := &cobra.Command{
		Use:   "detect <audio.wav>",
		Short: "Detect singing segments without matching them",
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

			tools := media.NewTools(cfg, logger)
			scorers := []segment.Scorer{
				segment.VADScorer{Tools: tools},
				segment.VocalEnergyScorer{Tools: tools},
			}
			detector := segment.NewDetector(cfg.Segment, nil, scorers, logger)

			segments := detector.DetectFile(cmd.Context(), args[0])
			if !unfiltered {
				segments = segment.Filter(segments, cfg.Segment.MinDurationSec, cfg.Segment.MinConfidence)
			}

			if asJSON || !isatty.IsTerminal(os.Stdout.Fd()) {
				return writeJSON(cmd, segments)
			}
			rows := make([][]string, 0, len(segments))
			for _, seg := range segments {
				rows = append(rows, []string{
					fmt.Sprintf("%.1f", seg.StartSec),
					fmt.Sprintf("%.1f", seg.EndSec),
					fmt.Sprintf("%.1f", seg.DurationSec()),
					fmt.Sprintf("%.2f", seg.Confidence),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Start", "End", "Duration", "Confidence"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON even on a terminal")
	cmd.Flags().BoolVar(&unfiltered, "all", false, "Include segments the duration/confidence filter would drop")
	return cmd
}
