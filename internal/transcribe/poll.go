package transcribe

import (
	"context"
	"log/slog"
	"time"

	"cleanvid/internal/logging"
	"cleanvid/internal/services"
)

// PollResult pairs a handle with its outcome.
type PollResult struct {
	Handle     Handle
	Transcript Transcript
	Err        error
}

// PollAll waits for every handle to finish, sweeping them round-robin
// with a fixed delay between sweeps. Results come back in submission
// order. A job that fails terminally gets its error recorded and the
// sweep moves on; there is no overall deadline beyond the context.
func PollAll(ctx context.Context, svc Service, handles []Handle, interval time.Duration, logger *slog.Logger) []PollResult {
	logger = logging.NewComponentLogger(logger, "transcribe")
	if interval <= 0 {
		interval = 15 * time.Second
	}

	results := make([]PollResult, len(handles))
	pending := make([]int, 0, len(handles))
	for i, handle := range handles {
		results[i].Handle = handle
		pending = append(pending, i)
	}

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			for _, i := range pending {
				results[i].Err = services.Wrap(services.ErrTransient, "transcribe", "poll", "polling interrupted", err)
			}
			return results
		}

		remaining := pending[:0]
		for _, i := range pending {
			transcript, err := svc.Fetch(ctx, results[i].Handle)
			switch {
			case err == nil:
				results[i].Transcript = transcript
				logger.Info("transcription complete",
					logging.String("name", results[i].Handle.Name),
					logging.Int("words", len(transcript.Words)))
			case ErrNotReady(err):
				remaining = append(remaining, i)
			default:
				results[i].Err = err
				logger.Warn("transcription failed",
					logging.String("name", results[i].Handle.Name),
					logging.Error(err))
			}
		}
		pending = remaining

		if len(pending) == 0 {
			break
		}
		logger.Debug("jobs still processing", logging.Int("pending", len(pending)))
		select {
		case <-ctx.Done():
		case <-time.After(interval):
		}
	}
	return results
}
