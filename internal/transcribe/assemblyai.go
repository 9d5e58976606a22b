package transcribe

import (
	"context"
	"log/slog"
	"strings"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/cenkalti/backoff/v4"

	"cleanvid/internal/logging"
	"cleanvid/internal/services"
	"cleanvid/internal/words"
)

// AssemblyAI implements Service against the AssemblyAI API.
type AssemblyAI struct {
	client   *aai.Client
	language string
	logger   *slog.Logger
}

// NewAssemblyAI builds a provider. language may be empty for
// auto-detection by the API default.
func NewAssemblyAI(apiKey, language string, logger *slog.Logger) (*AssemblyAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "", "transcribe.new", "api key is required", nil)
	}
	return &AssemblyAI{
		client:   aai.NewClient(apiKey),
		language: language,
		logger:   logging.NewComponentLogger(logger, "assemblyai"),
	}, nil
}

// Submit starts a job for audio reachable at uri. Transient submission
// failures are retried with exponential backoff; once the API accepts
// the job the returned handle is final and billing has happened.
func (a *AssemblyAI) Submit(ctx context.Context, name, uri string) (Handle, error) {
	params := &aai.TranscriptOptionalParams{}
	if a.language != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(a.language)
	}

	var submitted aai.Transcript
	operation := func() error {
		var err error
		submitted, err = a.client.Transcripts.SubmitFromURL(ctx, uri, params)
		return err
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return Handle{}, services.Wrap(services.ErrUpstream, "transcribe", "submit", "submit transcription", err)
	}
	if submitted.ID == nil || *submitted.ID == "" {
		return Handle{}, services.Wrap(services.ErrUpstream, "transcribe", "submit", "api returned no job id", nil)
	}

	handle := Handle{
		ID:          *submitted.ID,
		Name:        name,
		URI:         uri,
		SubmittedAt: time.Now().UTC(),
	}
	a.logger.Info("submitted transcription",
		logging.String("name", name),
		logging.String("job_id", handle.ID))
	return handle, nil
}

// Fetch retrieves the state of a job.
func (a *AssemblyAI) Fetch(ctx context.Context, handle Handle) (Transcript, error) {
	transcript, err := a.client.Transcripts.Get(ctx, handle.ID)
	if err != nil {
		return Transcript{}, services.Wrap(services.ErrUpstream, "transcribe", "fetch", "get transcription", err)
	}

	switch transcript.Status {
	case aai.TranscriptStatusCompleted:
		return convertTranscript(transcript), nil
	case aai.TranscriptStatusError:
		message := "transcription failed"
		if transcript.Error != nil && *transcript.Error != "" {
			message = *transcript.Error
		}
		return Transcript{}, services.Wrap(services.ErrUpstream, "transcribe", "fetch", message, nil)
	default:
		return Transcript{}, &notReadyError{status: string(transcript.Status)}
	}
}

// convertTranscript maps API words, timed in milliseconds, onto the
// pipeline's seconds-based word model.
func convertTranscript(transcript aai.Transcript) Transcript {
	out := Transcript{}
	if transcript.Text != nil {
		out.Text = *transcript.Text
	}
	for _, word := range transcript.Words {
		if word.Text == nil || word.Start == nil || word.End == nil {
			continue
		}
		converted := words.Word{
			Text:  *word.Text,
			Start: float64(*word.Start) / 1000,
			End:   float64(*word.End) / 1000,
		}
		if word.Confidence != nil {
			converted.Confidence = *word.Confidence
		}
		out.Words = append(out.Words, converted)
	}
	return out
}
