package mutelist

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"cleanvid/internal/services"
)

// WriteReport writes a human readable summary of every lexicon hit,
// including excused ones, followed by the censored transcript.
func WriteReport(path string, result Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Muted %d of %d matches\n\n", len(result.Intervals), len(result.Matches))
	for _, match := range result.Matches {
		status := "MUTED"
		if match.Excused {
			status = "excused"
		}
		fmt.Fprintf(&b, "%s - %s  %-8s %s\n",
			Timestamp(match.Start), Timestamp(match.End), status, match.Term)
	}
	if result.Transcript != "" {
		b.WriteString("\nTranscript:\n")
		b.WriteString(result.Transcript)
		b.WriteString("\n")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "", "mutelist.report", "create directory", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "", "mutelist.report", "write report", err)
	}
	return nil
}

// Timestamp formats seconds as HH:MM:SS.cc.
func Timestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(math.Round(seconds * 100))
	whole := total / 100
	centis := total % 100
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60
	return fmt.Sprintf("%02d:%02d:%02d.%02d", hours, minutes, secs, centis)
}
