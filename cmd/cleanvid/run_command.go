package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cleanvid/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var forceFlags []string
	var skipFlags []string
	var stopAfterFlag string
	var mergeFlag bool
	var yesFlag bool

	cmd := &cobra.Command{
		Use:   "run <video>",
		Short: "Run the cleaning pipeline for a video",
		Long: `Run the cleaning pipeline for a video.

Steps that already have their output on disk are skipped, so an
interrupted run picks up where it stopped. Use --force to redo a step;
forcing one step also redoes everything after it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := pipeline.Options{MergeSubtitles: mergeFlag || cfg.Subtitles.MergeEnabled}
			for _, value := range forceFlags {
				step, err := pipeline.ParseStep(value)
				if err != nil {
					return err
				}
				opts.Force = append(opts.Force, step)
			}
			for _, value := range skipFlags {
				step, err := pipeline.ParseStep(value)
				if err != nil {
					return err
				}
				opts.Skip = append(opts.Skip, step)
			}
			if stopAfterFlag != "" {
				step, err := pipeline.ParseStep(stopAfterFlag)
				if err != nil {
					return err
				}
				opts.StopAfter = step
			}

			runCtx, cancel := signalContext()
			defer cancel()

			p, cleanup, err := ctx.buildPipeline(runCtx)
			if err != nil {
				return err
			}
			defer cleanup()

			_, states, err := p.Status(args[0])
			if err != nil {
				return err
			}
			plan, err := pipeline.BuildPlan(states, opts)
			if err != nil {
				return err
			}
			steps := plan.Steps()
			if len(steps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to do; every selected step is already complete.")
				return nil
			}
			names := make([]string, len(steps))
			for i, step := range steps {
				names[i] = step.String()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Will run: %s\n", strings.Join(names, ", "))
			if !yesFlag {
				fmt.Fprint(cmd.OutOrStdout(), "Proceed? [y/N] ")
				reader := bufio.NewReader(cmd.InOrStdin())
				answer, _ := reader.ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			progress := func(step pipeline.StepID, status pipeline.Status, detail string) {
				switch status {
				case pipeline.StatusRunning:
					fmt.Fprintf(cmd.OutOrStdout(), "-> %s\n", step)
				case pipeline.StatusDone:
					fmt.Fprintf(cmd.OutOrStdout(), "   %s done\n", step)
				case pipeline.StatusError:
					fmt.Fprintf(cmd.OutOrStdout(), "   %s FAILED: %s\n", step, detail)
				case pipeline.StatusSkipped:
					fmt.Fprintf(cmd.OutOrStdout(), "   %s %s\n", step, detail)
				}
			}

			result, err := p.Run(runCtx, args[0], opts, progress)
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d steps in %s", len(result.Steps), result.Duration.Round(time.Millisecond))
				if result.MutedCount > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), ", %d intervals muted", result.MutedCount)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&forceFlags, "force", nil, "Steps to redo even if complete (name or number, repeatable)")
	cmd.Flags().StringSliceVar(&skipFlags, "skip", nil, "Steps to leave out (name or number, repeatable)")
	cmd.Flags().StringVar(&stopAfterFlag, "stop-after", "", "Stop after this step")
	cmd.Flags().BoolVar(&mergeFlag, "merge-subtitles", false, "Merge subtitle profanity into the transcript")
	cmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "Run without asking for confirmation")

	return cmd
}
