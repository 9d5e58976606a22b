package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cleanvid/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			if overwrite {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return err
				}
				if err := os.Remove(expanded); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("remove existing config: %w", err)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set transcriber.api_key and storage credentials before running the transcribe step.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "Configuration: %s\n\n", resolved)
			} else {
				fmt.Fprintf(out, "No config file at %s; showing built-in defaults.\n\n", resolved)
			}

			apiKey := "(not set)"
			if cfg.Transcriber.APIKey != "" {
				apiKey = "(set)"
			}
			rows := [][]string{
				{"paths.work_dir", cfg.Paths.WorkDir},
				{"paths.response_dir", cfg.Paths.ResponseDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"transcriber.api_key", apiKey},
				{"transcriber.language", cfg.Transcriber.Language},
				{"storage.endpoint", cfg.Storage.Endpoint},
				{"storage.bucket", cfg.Storage.Bucket},
				{"ledger.path", cfg.Ledger.Path},
				{"ledger.monthly_limit_minutes", fmt.Sprintf("%.0f", cfg.Ledger.MonthlyLimitMinutes)},
				{"lexicon.path", cfg.Lexicon.Path},
				{"lexicon.exceptions_path", cfg.Lexicon.ExceptionsPath},
				{"subtitles.match_threshold", fmt.Sprintf("%.2f", cfg.Subtitles.MatchThreshold)},
				{"audio.segment_seconds", fmt.Sprintf("%d", cfg.Audio.SegmentSeconds)},
				{"logging.level", cfg.Logging.Level},
				{"logging.format", cfg.Logging.Format},
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Setting", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the configuration parses and validates",
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !exists {
				fmt.Fprintf(out, "No config file at %s; built-in defaults are valid.\n", resolved)
				return nil
			}
			fmt.Fprintf(out, "%s is valid.\n", resolved)
			if cfg.Transcriber.APIKey == "" {
				fmt.Fprintln(out, "Note: transcriber.api_key is empty; the transcribe step will fail until it is set.")
			}
			if cfg.Storage.Endpoint == "" {
				fmt.Fprintln(out, "Note: storage.endpoint is empty; the upload step will fail until it is set.")
			}
			return nil
		},
	}
}
