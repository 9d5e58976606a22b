package mutelist

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cleanvid/internal/services"
)

// Pad is the slack added on each side of a mute interval. It absorbs
// small timing drift between the transcript and the actual audio.
const Pad = 0.1

// FilterScript renders intervals as an ffmpeg filter_complex string:
//
//	[a:0]volume=enable='between(t,S,E)':volume=0,...[a]
//
// Each interval is widened by Pad on both sides; starts never go
// below zero.
func FilterScript(intervals []Interval) string {
	if len(intervals) == 0 {
		return ""
	}
	clauses := make([]string, 0, len(intervals))
	for _, iv := range intervals {
		start := iv.Start - Pad
		if start < 0 {
			start = 0
		}
		end := iv.End + Pad
		clauses = append(clauses,
			"volume=enable='between(t,"+formatSeconds(start)+","+formatSeconds(end)+")':volume=0")
	}
	return "[a:0]" + strings.Join(clauses, ",") + "[a]"
}

// WriteFilterScript writes the filter to path, or an empty file when
// there is nothing to mute so later runs can tell the step completed.
func WriteFilterScript(path string, intervals []Interval) error {
	script := FilterScript(intervals)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "", "mutelist.write", "create directory", err)
	}
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "", "mutelist.write", "write filter script", err)
	}
	return nil
}

// formatSeconds rounds to centiseconds before printing so float noise
// from the padding arithmetic never leaks into the filter.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
