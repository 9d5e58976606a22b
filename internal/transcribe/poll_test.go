package transcribe

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cleanvid/internal/logging"
	"cleanvid/internal/services"
	"cleanvid/internal/words"
)

// fakeService completes each job after a configured number of fetches.
type fakeService struct {
	readyAfter map[string]int
	failures   map[string]error
	fetches    map[string]int
}

func (f *fakeService) Submit(_ context.Context, name, uri string) (Handle, error) {
	return Handle{ID: "job-" + name, Name: name, URI: uri, SubmittedAt: time.Now()}, nil
}

func (f *fakeService) Fetch(_ context.Context, handle Handle) (Transcript, error) {
	if f.fetches == nil {
		f.fetches = map[string]int{}
	}
	f.fetches[handle.Name]++
	if err, ok := f.failures[handle.Name]; ok {
		return Transcript{}, err
	}
	if f.fetches[handle.Name] <= f.readyAfter[handle.Name] {
		return Transcript{}, &notReadyError{status: "processing"}
	}
	return Transcript{
		Text:  handle.Name + " text",
		Words: []words.Word{{Text: "hello", Start: 0.1, End: 0.4, Confidence: 0.99}},
	}, nil
}

func TestPollAllPreservesSubmissionOrder(t *testing.T) {
	svc := &fakeService{readyAfter: map[string]int{"a": 2, "b": 0, "c": 1}}
	handles := []Handle{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}, {ID: "3", Name: "c"}}

	results := PollAll(context.Background(), svc, handles, time.Millisecond, logging.NewNop())

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, name := range []string{"a", "b", "c"} {
		if results[i].Handle.Name != name {
			t.Fatalf("result %d out of order: %+v", i, results[i])
		}
		if results[i].Err != nil {
			t.Fatalf("unexpected error for %s: %v", name, results[i].Err)
		}
		if results[i].Transcript.Text != name+" text" {
			t.Fatalf("wrong transcript for %s: %q", name, results[i].Transcript.Text)
		}
	}
}

func TestPollAllRecordsTerminalFailure(t *testing.T) {
	upstream := services.Wrap(services.ErrUpstream, "transcribe", "fetch", "boom", nil)
	svc := &fakeService{
		readyAfter: map[string]int{"ok": 0},
		failures:   map[string]error{"bad": upstream},
	}
	handles := []Handle{{ID: "1", Name: "bad"}, {ID: "2", Name: "ok"}}

	results := PollAll(context.Background(), svc, handles, time.Millisecond, logging.NewNop())

	if !errors.Is(results[0].Err, services.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", results[0].Err)
	}
	if results[1].Err != nil {
		t.Fatalf("healthy job should still complete: %v", results[1].Err)
	}
}

func TestPollAllCancelledContext(t *testing.T) {
	svc := &fakeService{readyAfter: map[string]int{"slow": 1000}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := PollAll(ctx, svc, []Handle{{ID: "1", Name: "slow"}}, time.Millisecond, logging.NewNop())
	if !errors.Is(results[0].Err, services.ErrTransient) {
		t.Fatalf("expected transient error on cancellation, got %v", results[0].Err)
	}
}

func TestHandleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	handle := Handle{ID: "job-1", Name: "movie", URI: "https://example.com/a.flac", SubmittedAt: time.Now().UTC().Truncate(time.Second)}

	if err := SaveHandle(dir, handle); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadHandle(filepath.Join(dir, "movie"+HandleExt))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != handle {
		t.Fatalf("round trip mismatch: %+v vs %+v", loaded, handle)
	}

	if err := RemoveHandle(dir, "movie"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := LoadHandle(filepath.Join(dir, "movie"+HandleExt)); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found after removal, got %v", err)
	}
	// Removing twice is fine.
	if err := RemoveHandle(dir, "movie"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	dir := t.TempDir()
	transcript := Transcript{
		Text:  "oh hell",
		Words: []words.Word{{Text: "oh", Start: 0.1, End: 0.3, Confidence: 0.98}},
	}
	if err := SaveResponse(dir, "movie", transcript); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadResponse(filepath.Join(dir, "movie"+ResponseExt))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Text != transcript.Text || len(loaded.Words) != 1 || loaded.Words[0] != transcript.Words[0] {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadHandleRejectsEmptyID(t *testing.T) {
	dir := t.TempDir()
	if err := SaveHandle(dir, Handle{Name: "movie"}); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadHandle(filepath.Join(dir, "movie"+HandleExt)); !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}
