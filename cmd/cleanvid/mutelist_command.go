package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cleanvid/internal/lexicon"
	"cleanvid/internal/mutelist"
	"cleanvid/internal/words"
)

func newMuteListCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "mutelist <words.csv>",
		Short: "Build a mute filter from a transcript words file",
		Long: `Build a mute filter from a transcript words file.

Works entirely locally against an existing words CSV; no API access is
needed. Without --output the filter is printed to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			list, err := words.Load(args[0])
			if err != nil {
				return err
			}
			lex, err := lexicon.Load(cfg.Lexicon.Path)
			if err != nil {
				return err
			}
			exceptions, err := lexicon.LoadExceptions(cfg.Lexicon.ExceptionsPath)
			if err != nil {
				return err
			}

			// No subtitles in this mode, so nothing is confirmed and
			// exception words stay muted.
			result := mutelist.Build(list, lex, exceptions, lexicon.Lexicon{})

			fmt.Fprintf(cmd.ErrOrStderr(), "%d matches, %d muted\n", len(result.Matches), len(result.Intervals))
			if outputFlag != "" {
				return mutelist.WriteFilterScript(outputFlag, result.Intervals)
			}
			fmt.Fprintln(cmd.OutOrStdout(), mutelist.FilterScript(result.Intervals))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the filter script to this file")
	return cmd
}
