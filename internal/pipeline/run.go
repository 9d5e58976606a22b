package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"cleanvid/internal/config"
	"cleanvid/internal/ledger"
	"cleanvid/internal/logging"
	"cleanvid/internal/media"
	"cleanvid/internal/notifications"
	"cleanvid/internal/services"
	"cleanvid/internal/storage"
	"cleanvid/internal/transcribe"
)

// Deps carries the external services the steps call.
type Deps struct {
	Config      *config.Config
	Transcriber transcribe.Service
	Uploader    storage.Uploader
	Ledger      *ledger.Store
	Notifier    notifications.Service
	Runner      media.Runner
	Logger      *slog.Logger
}

// Pipeline runs the cleaning workflow for videos.
type Pipeline struct {
	deps   Deps
	logger *slog.Logger
}

// New builds a pipeline.
func New(deps Deps) (*Pipeline, error) {
	if deps.Config == nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "pipeline.new", "config is required", nil)
	}
	if deps.Runner == nil {
		deps.Runner = media.ExecRunner{}
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewService(deps.Config)
	}
	logger := logging.NewComponentLogger(deps.Logger, "pipeline")
	return &Pipeline{deps: deps, logger: logger}, nil
}

// StepResult records one step's outcome in a run.
type StepResult struct {
	ID       StepID
	Status   Status
	Detail   string
	Err      error
	Duration time.Duration
}

// Result summarizes one video's run.
type Result struct {
	Video      string
	Steps      []StepResult
	MutedCount int
	Duration   time.Duration
}

// Failed returns the first step that errored, if any.
func (r *Result) Failed() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Status == StatusError {
			return &r.Steps[i]
		}
	}
	return nil
}

// ProgressFunc observes step transitions during a run.
type ProgressFunc func(step StepID, status Status, detail string)

// Run executes the selected steps for one video. A per-video file lock
// keeps two processes from working on the same video at once. When a
// step fails, the steps after it that were selected are marked skipped
// with the failure attributed, and the run returns the step's error.
func (p *Pipeline) Run(ctx context.Context, video string, opts Options, progress ProgressFunc) (*Result, error) {
	started := time.Now()
	if progress == nil {
		progress = func(StepID, Status, string) {}
	}

	artifacts, err := DiscoverArtifacts(video, p.deps.Config.Paths.WorkDir, p.deps.Config.Paths.ResponseDir, p.deps.Config.Subtitles.MatchThreshold)
	if err != nil {
		return nil, err
	}

	if p.deps.Config.Subtitles.MergeEnabled {
		opts.MergeSubtitles = true
	}
	plan, err := BuildPlan(DetectStates(artifacts), opts)
	if err != nil {
		return nil, err
	}

	ctx = services.WithVideo(ctx, artifacts.Stem)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, p.logger)

	if err := os.MkdirAll(artifacts.WorkDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrTransient, "", "pipeline.run", "create work directory", err)
	}
	lock := flock.New(artifacts.WorkDir + "/.lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "", "pipeline.run", "acquire video lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "", "pipeline.run", "another run is already working on this video", nil)
	}
	defer lock.Unlock()

	result := &Result{Video: video}
	steps := plan.Steps()
	logger.Info("starting run",
		logging.Int("steps", len(steps)),
		logging.Bool("merge_subtitles", opts.MergeSubtitles))

	var failedAt StepID
	var failure error
	for _, step := range steps {
		if failedAt != 0 {
			detail := fmt.Sprintf("skipped: %s failed", failedAt)
			result.Steps = append(result.Steps, StepResult{ID: step, Status: StatusSkipped, Detail: detail})
			progress(step, StatusSkipped, detail)
			continue
		}

		stepCtx := services.WithStep(ctx, step.String())
		stepLogger := logging.WithContext(stepCtx, p.logger)
		stepStart := time.Now()
		progress(step, StatusRunning, "")
		stepLogger.Info("step started")

		// Re-discover so each step sees what the previous one wrote.
		artifacts, err = DiscoverArtifacts(video, p.deps.Config.Paths.WorkDir, p.deps.Config.Paths.ResponseDir, p.deps.Config.Subtitles.MatchThreshold)
		if err == nil {
			err = p.runStep(stepCtx, step, &artifacts, plan, result)
		}

		elapsed := time.Since(stepStart)
		if err != nil {
			result.Steps = append(result.Steps, StepResult{ID: step, Status: StatusError, Err: err, Duration: elapsed})
			progress(step, StatusError, err.Error())
			stepLogger.Error("step failed", logging.Error(err), logging.Duration(logging.FieldDuration, elapsed))
			failedAt = step
			failure = err
			continue
		}
		result.Steps = append(result.Steps, StepResult{ID: step, Status: StatusDone, Duration: elapsed})
		progress(step, StatusDone, "")
		stepLogger.Info("step finished", logging.Duration(logging.FieldDuration, elapsed))
	}

	result.Duration = time.Since(started)
	if failure != nil {
		_ = p.deps.Notifier.NotifyPipelineFailed(ctx, artifacts.Stem, failedAt.String(), failure)
		return result, failure
	}
	logger.Info("run finished",
		logging.Duration(logging.FieldDuration, result.Duration),
		logging.Int("muted", result.MutedCount))
	_ = p.deps.Notifier.NotifyPipelineCompleted(ctx, artifacts.Stem, result.MutedCount, result.Duration)
	return result, nil
}

func (p *Pipeline) runStep(ctx context.Context, step StepID, a *Artifacts, plan *Plan, result *Result) error {
	switch step {
	case StepExtract:
		return p.runExtract(ctx, a)
	case StepUpload:
		return p.runUpload(ctx, a)
	case StepTranscribe:
		return p.runTranscribe(ctx, a)
	case StepMerge:
		return p.runMerge(ctx, a)
	case StepMuteList:
		return p.runMuteList(ctx, a, result)
	case StepApply:
		return p.runApply(ctx, a)
	default:
		return services.Wrap(services.ErrValidation, step.String(), "run", "unknown step", nil)
	}
}

// Status reports the detected step states for a video without running
// anything.
func (p *Pipeline) Status(video string) (Artifacts, []StepState, error) {
	artifacts, err := DiscoverArtifacts(video, p.deps.Config.Paths.WorkDir, p.deps.Config.Paths.ResponseDir, p.deps.Config.Subtitles.MatchThreshold)
	if err != nil {
		return Artifacts{}, nil, err
	}
	return artifacts, DetectStates(artifacts), nil
}
