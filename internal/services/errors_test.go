package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := fmt.Errorf("boom")
	err := Wrap(ErrUpstream, "Transcribe", "submit", "request rejected", base)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected ErrTransient fallback, got %v", err)
	}
}

func TestFatal(t *testing.T) {
	cases := []struct {
		err   error
		fatal bool
	}{
		{Wrap(ErrQuotaExceeded, "Transcribe", "gate", "monthly limit", nil), true},
		{Wrap(ErrConfiguration, "", "", "missing api key", nil), true},
		{Wrap(ErrUpstream, "Transcribe", "poll", "", fmt.Errorf("503")), false},
		{Wrap(ErrNotFound, "Generate Mute List", "load csv", "", nil), false},
	}
	for _, tc := range cases {
		if got := Fatal(tc.err); got != tc.fatal {
			t.Errorf("Fatal(%v) = %v, want %v", tc.err, got, tc.fatal)
		}
	}
}
