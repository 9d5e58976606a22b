package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cleanvid/internal/lexicon"
	"cleanvid/internal/subtitles"
	"cleanvid/internal/words"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var dryRunFlag bool

	cmd := &cobra.Command{
		Use:   "align <words.csv> <subtitles.srt>",
		Short: "Merge subtitle profanity into a transcript words file",
		Long: `Merge subtitle profanity into a transcript words file.

The subtitle timeline is aligned to the transcript, then lexicon words
the transcriber missed are injected with the full cue duration. With
--dry-run only the computed offset and would-be injections are shown.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			list, err := words.Load(args[0])
			if err != nil {
				return err
			}
			lines, err := subtitles.Parse(args[1])
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

			offset := subtitles.ComputeOffset(list, lines)
			fmt.Fprintf(cmd.OutOrStdout(), "offset (subtitle - transcript): %.3fs\n", offset)

			merged, inserted := subtitles.InjectMissing(list, lines, lex, exceptions, offset)
			fmt.Fprintf(cmd.OutOrStdout(), "injected %d words from %d subtitle lines\n", inserted, len(lines))

			if dryRunFlag || inserted == 0 {
				return nil
			}
			output := outputFlag
			if output == "" {
				output = args[0]
			}
			return words.Save(output, merged)
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write merged words here instead of overwriting the input")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Report what would change without writing")
	return cmd
}
