package main

import (
	"github.com/spf13/cobra"

	"songscout/internal/pipeline"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var audioOnly bool

	cmd := &cobra.Command{
		Use:   "analyze <source>",
		Short: "Detect singing segments in a recording and match them against the catalog",
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
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			p := pipeline.New(cfg, store, nil, logger)
			var result *pipeline.Result
			if audioOnly {
				result, err = p.ProcessAudio(cmd.Context(), args[0])
			} else {
				result, err = p.ProcessSource(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd, result)
		},
	}

	cmd.Flags().BoolVar(&audioOnly, "audio", false, "Treat the argument as an already-extracted WAV file")
	return cmd
}
