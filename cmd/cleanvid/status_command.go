package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"cleanvid/internal/pipeline"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <video>",
		Short: "Show which pipeline steps are complete for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := signalContext()
			defer cancel()

			p, cleanup, err := ctx.buildPipeline(runCtx)
			if err != nil {
				return err
			}
			defer cleanup()

			artifacts, states, err := p.Status(args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(states))
			for _, state := range states {
				rows = append(rows, []string{
					fmt.Sprintf("%d", int(state.ID)),
					state.ID.String(),
					pipeline.Describe(state),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Step", "Status"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))

			if artifacts.Subtitle != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "subtitle: %s (confidence %.2f)\n",
					filepath.Base(artifacts.Subtitle), artifacts.SubtitleConfidence)
			}
			if artifacts.WordsCSV != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "words: %s (v%d)\n",
					filepath.Base(artifacts.WordsCSV), artifacts.WordsVersion)
			}
			return nil
		},
	}
	return cmd
}
