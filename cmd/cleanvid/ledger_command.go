package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cleanvid/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	var monthFlag string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show transcription usage for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg.Ledger.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			month := monthFlag
			if month == "" {
				month = ledger.MonthKey(time.Now())
			}

			summary, err := store.Summary(cmd.Context(), month)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %.1f minutes", summary.Month, summary.Seconds/60)
			if limit := cfg.Ledger.MonthlyLimitMinutes; limit > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " of %.0f", limit)
				if summary.Seconds >= limit*60 {
					fmt.Fprint(cmd.OutOrStdout(), "  (over budget)")
				}
			}
			fmt.Fprintln(cmd.OutOrStdout())

			if len(summary.Videos) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(summary.Videos))
			for _, vu := range summary.Videos {
				rows = append(rows, []string{vu.Video, fmt.Sprintf("%.1f", vu.Seconds/60)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Video", "Minutes"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&monthFlag, "month", "", `Month to show, e.g. "2026 August" (default: current)`)
	return cmd
}
