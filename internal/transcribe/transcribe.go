// Package transcribe submits audio to a speech-to-text provider and
// polls for word-level results.
package transcribe

import (
	"context"
	"time"

	"cleanvid/internal/words"
)

// Handle identifies a submitted transcription job. It is persisted to
// disk so an interrupted run can resume polling without paying for a
// second submission.
type Handle struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URI         string    `json:"uri"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Transcript is a completed job's output.
type Transcript struct {
	Words []words.Word
	Text  string
}

// notReadyError marks a job that is still queued or processing.
type notReadyError struct{ status string }

func (e *notReadyError) Error() string { return "transcription not ready: " + e.status }

// ErrNotReady reports whether the error means the job simply has not
// finished yet.
func ErrNotReady(err error) bool {
	_, ok := err.(*notReadyError)
	return ok
}

// Service is a transcription provider.
type Service interface {
	// Submit starts a transcription job for audio at a fetchable URI.
	Submit(ctx context.Context, name, uri string) (Handle, error)
	// Fetch retrieves the result for a handle. While the job is in
	// flight it returns an error for which ErrNotReady is true.
	Fetch(ctx context.Context, handle Handle) (Transcript, error)
}
