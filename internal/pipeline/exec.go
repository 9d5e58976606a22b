package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cleanvid/internal/ledger"
	"cleanvid/internal/lexicon"
	"cleanvid/internal/logging"
	"cleanvid/internal/media"
	"cleanvid/internal/mutelist"
	"cleanvid/internal/services"
	"cleanvid/internal/subtitles"
	"cleanvid/internal/transcribe"
	"cleanvid/internal/words"
)

// uploadManifest records which object each audio segment became. Its
// presence on disk marks the upload step complete.
type uploadManifest struct {
	Objects []uploadedObject `json:"objects"`
}

type uploadedObject struct {
	Segment string `json:"segment"`
	Key     string `json:"key"`
}

func (p *Pipeline) runExtract(ctx context.Context, a *Artifacts) error {
	probe, err := media.Probe(ctx, p.deps.Runner, a.Video)
	if err != nil {
		return err
	}
	track, warning := probe.SelectAudioTrack()
	if warning != "" {
		logging.WithContext(ctx, p.logger).Warn(warning)
	}
	return media.ExtractAudio(ctx, p.deps.Runner, a.Video, a.WorkDir, media.ExtractOptions{
		SegmentSeconds: p.deps.Config.Audio.SegmentSeconds,
		TrackIndex:     track,
	})
}

func (p *Pipeline) runUpload(ctx context.Context, a *Artifacts) error {
	if p.deps.Uploader == nil {
		return services.Wrap(services.ErrConfiguration, "upload", "run", "object storage is not configured", nil)
	}
	if len(a.Segments) == 0 {
		return services.Wrap(services.ErrNotFound, "upload", "run", "no audio segments to upload", nil)
	}

	manifest := uploadManifest{}
	for _, segment := range a.Segments {
		key, err := p.deps.Uploader.Upload(ctx, segment)
		if err != nil {
			return err
		}
		manifest.Objects = append(manifest.Objects, uploadedObject{
			Segment: filepath.Base(segment),
			Key:     key,
		})
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrTransient, "upload", "run", "marshal manifest", err)
	}
	path := filepath.Join(a.WorkDir, "upload.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "upload", "run", "write manifest", err)
	}
	return nil
}

func loadManifest(path string) (uploadManifest, error) {
	var manifest uploadManifest
	data, err := os.ReadFile(path)
	if err != nil {
		return manifest, services.Wrap(services.ErrNotFound, "transcribe", "manifest", "read upload manifest", err)
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return manifest, services.Wrap(services.ErrFormat, "transcribe", "manifest", "parse upload manifest", err)
	}
	return manifest, nil
}

func (p *Pipeline) runTranscribe(ctx context.Context, a *Artifacts) error {
	if p.deps.Transcriber == nil {
		return services.Wrap(services.ErrConfiguration, "transcribe", "run", "transcriber is not configured", nil)
	}
	if a.UploadManifest == "" {
		return services.Wrap(services.ErrNotFound, "transcribe", "run", "upload manifest missing", nil)
	}
	manifest, err := loadManifest(a.UploadManifest)
	if err != nil {
		return err
	}
	logger := logging.WithContext(ctx, p.logger)

	overQuota := p.overQuota(ctx, logger)

	responseDir := p.deps.Config.Paths.ResponseDir
	lifetime := time.Duration(p.deps.Config.Storage.URLLifetimeHours) * time.Hour

	// Submit what is not already submitted or answered. Handles on
	// disk mean a previous run paid for the job; resume them instead
	// of submitting again.
	var handles []transcribe.Handle
	for _, object := range manifest.Objects {
		name := a.Stem + "_" + strings.TrimSuffix(object.Segment, filepath.Ext(object.Segment))

		if fileExists(filepath.Join(responseDir, name+transcribe.ResponseExt)) {
			continue
		}
		handlePath := filepath.Join(a.WorkDir, name+transcribe.HandleExt)
		if fileExists(handlePath) {
			handle, err := transcribe.LoadHandle(handlePath)
			if err == nil {
				logger.Info("resuming transcription", logging.String("name", name))
				handles = append(handles, handle)
				continue
			}
			logger.Warn("discarding unreadable handle", logging.String("name", name), logging.Error(err))
		}

		// The gate only stops new spending. Resumed handles and
		// responses already on disk are paid for; they proceed above.
		if overQuota {
			return services.Wrap(services.ErrQuotaExceeded, "transcribe", "submit", "monthly transcription limit reached", nil)
		}

		if p.deps.Uploader == nil {
			return services.Wrap(services.ErrConfiguration, "transcribe", "run", "object storage is not configured", nil)
		}
		uri, err := p.deps.Uploader.FetchURL(ctx, object.Key, lifetime)
		if err != nil {
			return err
		}
		handle, err := p.deps.Transcriber.Submit(ctx, name, uri)
		if err != nil {
			return err
		}
		if err := transcribe.SaveHandle(a.WorkDir, handle); err != nil {
			return err
		}
		p.billSegment(ctx, a, filepath.Join(a.WorkDir, object.Segment))
		handles = append(handles, handle)
	}

	if len(handles) > 0 {
		interval := time.Duration(p.deps.Config.Transcriber.PollIntervalSeconds) * time.Second
		results := transcribe.PollAll(ctx, p.deps.Transcriber, handles, interval, p.deps.Logger)
		for _, res := range results {
			if res.Err != nil {
				return res.Err
			}
			if err := transcribe.SaveResponse(responseDir, res.Handle.Name, res.Transcript); err != nil {
				return err
			}
			if err := transcribe.RemoveHandle(a.WorkDir, res.Handle.Name); err != nil {
				return err
			}
		}
	}

	// Combine all segment responses into the first words file.
	responses, err := filepath.Glob(filepath.Join(responseDir, a.Stem+"*"+transcribe.ResponseExt))
	if err != nil || len(responses) == 0 {
		return services.Wrap(services.ErrNotFound, "transcribe", "combine", "no responses found", err)
	}
	var combined []words.Word
	for _, response := range responses {
		transcript, err := transcribe.LoadResponse(response)
		if err != nil {
			return err
		}
		combined = append(combined, transcript.Words...)
	}
	words.SortByStart(combined)
	return words.Save(a.WordsCSVPath(1), combined)
}

// billSegment records ledger usage for one accepted submission. Ledger
// problems must not fail the run; usage tracking is advisory.
func (p *Pipeline) billSegment(ctx context.Context, a *Artifacts, segmentPath string) {
	if p.deps.Ledger == nil {
		return
	}
	logger := logging.WithContext(ctx, p.logger)
	probe, err := media.Probe(ctx, p.deps.Runner, segmentPath)
	if err != nil {
		logger.Warn("could not probe segment for billing", logging.Error(err))
		return
	}
	seconds := probe.Duration()
	if seconds <= 0 {
		return
	}
	month := ledger.MonthKey(time.Now())
	if err := p.deps.Ledger.AddUsage(ctx, month, a.Stem, seconds); err != nil {
		logger.Warn("could not record usage", logging.Error(err))
	}
}

// overQuota reports whether the monthly limit is spent. True blocks
// new submissions; work already submitted still completes.
func (p *Pipeline) overQuota(ctx context.Context, logger *slog.Logger) bool {
	if p.deps.Ledger == nil || p.deps.Config.Ledger.MonthlyLimitMinutes <= 0 {
		return false
	}
	month := ledger.MonthKey(time.Now())
	over, err := p.deps.Ledger.IsOverLimit(ctx, month, p.deps.Config.Ledger.MonthlyLimitMinutes)
	if err != nil {
		logger.Warn("could not check usage limit", logging.Error(err))
		return false
	}
	if !over {
		return false
	}
	seconds, _ := p.deps.Ledger.Usage(ctx, month)
	logger.Warn("monthly transcription limit reached",
		logging.Float64("used_minutes", seconds/60),
		logging.Float64("limit_minutes", p.deps.Config.Ledger.MonthlyLimitMinutes))
	_ = p.deps.Notifier.NotifyQuotaWarning(ctx, month, seconds/60, p.deps.Config.Ledger.MonthlyLimitMinutes)
	return true
}

func (p *Pipeline) runMerge(ctx context.Context, a *Artifacts) error {
	if a.Subtitle == "" {
		return services.Wrap(services.ErrNotFound, "merge", "run", "no subtitle file found next to the video", nil)
	}
	if a.WordsCSV == "" {
		return services.Wrap(services.ErrNotFound, "merge", "run", "no transcript words to merge into", nil)
	}
	logger := logging.WithContext(ctx, p.logger)

	list, err := words.Load(a.WordsCSV)
	if err != nil {
		return err
	}
	lines, err := subtitles.Parse(a.Subtitle)
	if err != nil {
		return err
	}
	lex, err := lexicon.Load(p.deps.Config.Lexicon.Path)
	if err != nil {
		return err
	}
	exceptions, err := lexicon.LoadExceptions(p.deps.Config.Lexicon.ExceptionsPath)
	if err != nil {
		return err
	}

	offset := subtitles.ComputeOffset(list, lines)
	logger.Info("subtitle alignment",
		logging.String("subtitle", filepath.Base(a.Subtitle)),
		logging.Float64("offset_seconds", offset),
		logging.Float64("match_confidence", a.SubtitleConfidence))

	merged, inserted := subtitles.InjectMissing(list, lines, lex, exceptions, offset)
	logger.Info("subtitle merge", logging.Int("injected", inserted))
	return words.Save(a.WordsCSVPath(a.WordsVersion+1), merged)
}

func (p *Pipeline) runMuteList(ctx context.Context, a *Artifacts, result *Result) error {
	if a.WordsCSV == "" {
		return services.Wrap(services.ErrNotFound, "mutelist", "run", "no transcript words found", nil)
	}
	list, err := words.Load(a.WordsCSV)
	if err != nil {
		return err
	}
	lex, err := lexicon.Load(p.deps.Config.Lexicon.Path)
	if err != nil {
		return err
	}
	exceptions, err := lexicon.LoadExceptions(p.deps.Config.Lexicon.ExceptionsPath)
	if err != nil {
		return err
	}

	confirmed := lexicon.Lexicon{}
	if a.Subtitle != "" {
		lines, err := subtitles.Parse(a.Subtitle)
		if err == nil {
			confirmed = subtitles.Confirmed(lines, lex)
		}
	}

	built := mutelist.Build(list, lex, exceptions, confirmed)
	if err := mutelist.WriteFilterScript(a.MuteListPath(), built.Intervals); err != nil {
		return err
	}
	if err := mutelist.WriteReport(a.ReportPath(), built); err != nil {
		return err
	}
	result.MutedCount = len(built.Intervals)
	logging.WithContext(ctx, p.logger).Info("mute list built",
		logging.Int("matches", len(built.Matches)),
		logging.Int("muted", len(built.Intervals)))
	return nil
}

func (p *Pipeline) runApply(ctx context.Context, a *Artifacts) error {
	if a.MuteList == "" {
		return services.Wrap(services.ErrNotFound, "apply", "run", "mute list missing", nil)
	}
	output := media.CleanOutputPath(a.Video)

	info, err := os.Stat(a.MuteList)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "apply", "run", "stat mute list", err)
	}
	if info.Size() == 0 {
		// Nothing to mute. Remux without filtering so the output still
		// appears and downstream tooling sees a finished video.
		logging.WithContext(ctx, p.logger).Info("no profanity found, remuxing unchanged")
		return p.deps.Runner.Run(ctx, "ffmpeg",
			"-y", "-i", a.Video, "-map", "0", "-c", "copy", output)
	}

	probe, err := media.Probe(ctx, p.deps.Runner, a.Video)
	if err != nil {
		return err
	}
	codec := probe.AudioCodec()
	if codec == "" {
		return services.Wrap(services.ErrValidation, "apply", "run", "video has no audio stream", nil)
	}
	return media.Mux(ctx, p.deps.Runner, a.Video, output, media.MuxOptions{
		FilterScript: a.MuteList,
		AudioCodec:   codec,
		AudioBitrate: probe.AudioBitrate(),
	})
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Describe renders a one line summary of a state for logs and tables.
func Describe(state StepState) string {
	if state.Detail == "" {
		return string(state.Status)
	}
	return fmt.Sprintf("%s (%s)", state.Status, state.Detail)
}
