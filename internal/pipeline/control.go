package pipeline

import (
	"fmt"

	"cleanvid/internal/services"
)

// Options selects and overrides steps for one run.
type Options struct {
	// Force re-runs a step even when its artifact exists. Forcing a
	// step invalidates everything built on top of it, so all later
	// steps are forced too and any skip on them is cleared.
	Force []StepID
	// Skip excludes individual steps. It does not cascade.
	Skip []StepID
	// StopAfter ends the run after the given step. Zero means run to
	// the end.
	StopAfter StepID
	// MergeSubtitles opts in to the subtitle merge step.
	MergeSubtitles bool
}

// Plan is the resolved decision of what runs, per step, for one video.
type Plan struct {
	States []StepState
	run    map[StepID]bool
	forced map[StepID]bool
}

// BuildPlan combines detected states with run options.
func BuildPlan(states []StepState, opts Options) (*Plan, error) {
	forced := map[StepID]bool{}
	for _, step := range opts.Force {
		if !validStep(step) {
			return nil, services.Wrap(services.ErrValidation, "", "pipeline.plan", fmt.Sprintf("invalid force step %d", step), nil)
		}
		// Cascade: later steps consume this one's output. Merge is
		// opt-in and only joins the cascade when asked for directly.
		for _, later := range AllSteps {
			if later < step {
				continue
			}
			if later == StepMerge && later != step && !opts.MergeSubtitles {
				continue
			}
			forced[later] = true
		}
	}

	skipped := map[StepID]bool{}
	for _, step := range opts.Skip {
		if !validStep(step) {
			return nil, services.Wrap(services.ErrValidation, "", "pipeline.plan", fmt.Sprintf("invalid skip step %d", step), nil)
		}
		// A forced step cannot be skipped; force wins.
		if !forced[step] {
			skipped[step] = true
		}
	}

	if opts.StopAfter != 0 && !validStep(opts.StopAfter) {
		return nil, services.Wrap(services.ErrValidation, "", "pipeline.plan", fmt.Sprintf("invalid stop-after step %d", opts.StopAfter), nil)
	}

	run := map[StepID]bool{}
	for _, state := range states {
		step := state.ID
		switch {
		case step == StepMerge && !opts.MergeSubtitles && !forced[StepMerge]:
			// Merge only runs when asked for.
		case skipped[step]:
		case opts.StopAfter != 0 && step > opts.StopAfter:
		case state.Status == StatusDone && !forced[step]:
		default:
			run[step] = true
		}
	}

	return &Plan{States: states, run: run, forced: forced}, nil
}

// ShouldRun reports whether the plan selected a step.
func (p *Plan) ShouldRun(step StepID) bool { return p.run[step] }

// Forced reports whether a step was explicitly or transitively forced.
func (p *Plan) Forced(step StepID) bool { return p.forced[step] }

// Steps returns the selected steps in execution order.
func (p *Plan) Steps() []StepID {
	var out []StepID
	for _, step := range AllSteps {
		if p.run[step] {
			out = append(out, step)
		}
	}
	return out
}

func validStep(step StepID) bool {
	return step >= StepExtract && step <= StepApply
}
