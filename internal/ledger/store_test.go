package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMonthKey(t *testing.T) {
	key := MonthKey(time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC))
	if key != "2026 August" {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestAddUsageAccumulates(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.AddUsage(ctx, "2026 August", "movie.mp4", 900); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.AddUsage(ctx, "2026 August", "show.mkv", 300); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.AddUsage(ctx, "2026 August", "movie.mp4", 100); err != nil {
		t.Fatalf("add: %v", err)
	}

	seconds, err := store.Usage(ctx, "2026 August")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if seconds != 1300 {
		t.Fatalf("expected 1300s, got %v", seconds)
	}

	summary, err := store.Summary(ctx, "2026 August")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary.Videos) != 2 {
		t.Fatalf("expected 2 videos, got %+v", summary.Videos)
	}
	if summary.Videos[0].Video != "movie.mp4" || summary.Videos[0].Seconds != 1000 {
		t.Fatalf("expected movie.mp4 first with 1000s, got %+v", summary.Videos[0])
	}
}

func TestUsageIsolatedPerMonth(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.AddUsage(ctx, "2026 July", "a.mp4", 500); err != nil {
		t.Fatal(err)
	}
	seconds, err := store.Usage(ctx, "2026 August")
	if err != nil {
		t.Fatal(err)
	}
	if seconds != 0 {
		t.Fatalf("expected empty month, got %v", seconds)
	}
}

func TestIsOverLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	const month = "2026 August"

	// 59500s against a 1000 minute (60000s) limit: still under even
	// after a 400s video, over once the total reaches the limit.
	if err := store.AddUsage(ctx, month, "bulk.mkv", 59500); err != nil {
		t.Fatal(err)
	}
	over, err := store.IsOverLimit(ctx, month, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if over {
		t.Fatal("59500s should be under a 60000s limit")
	}

	if err := store.AddUsage(ctx, month, "more.mkv", 900); err != nil {
		t.Fatal(err)
	}
	over, err = store.IsOverLimit(ctx, month, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if !over {
		t.Fatal("60400s should trip a 60000s limit")
	}

	// Zero limit disables the check.
	over, err = store.IsOverLimit(ctx, month, 0)
	if err != nil {
		t.Fatal(err)
	}
	if over {
		t.Fatal("zero limit must disable the check")
	}
}

func TestAddUsageRejectsNegative(t *testing.T) {
	store := openStore(t)
	if err := store.AddUsage(context.Background(), "2026 August", "x.mp4", -5); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestMonths(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for _, month := range []string{"2026 June", "2026 July"} {
		if err := store.AddUsage(ctx, month, "a.mp4", 10); err != nil {
			t.Fatal(err)
		}
	}
	months, err := store.Months(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(months) != 2 {
		t.Fatalf("expected 2 months, got %v", months)
	}
}
