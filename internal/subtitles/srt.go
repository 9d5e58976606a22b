// Package subtitles parses SRT files and aligns them with transcript
// words so profanity the transcriber missed can be recovered.
package subtitles

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"cleanvid/internal/services"
)

// Line is one subtitle cue with timing in seconds. Multi-line cue text
// is collapsed to a single space separated line.
type Line struct {
	Start float64
	End   float64
	Text  string
}

// Parse reads an SRT file into lines. Blocks without a valid timing
// row are skipped rather than failing the whole file; subtitle rips
// are frequently sloppy.
func Parse(path string) ([]Line, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "", "subtitles.parse", "read srt", err)
		}
		return nil, services.Wrap(services.ErrTransient, "", "subtitles.parse", "read srt", err)
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	content = strings.TrimPrefix(content, "\ufeff")

	var lines []Line
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		rows := strings.Split(block, "\n")

		timingRow := -1
		for i, row := range rows {
			if strings.Contains(row, "-->") {
				timingRow = i
				break
			}
		}
		if timingRow < 0 || timingRow == len(rows)-1 {
			continue
		}

		parts := strings.SplitN(rows[timingRow], "-->", 2)
		start, errStart := parseTimestamp(parts[0])
		end, errEnd := parseTimestamp(parts[1])
		if errStart != nil || errEnd != nil {
			continue
		}

		text := strings.TrimSpace(strings.Join(rows[timingRow+1:], " "))
		if text == "" {
			continue
		}
		lines = append(lines, Line{Start: start, End: end, Text: text})
	}
	return lines, nil
}

// parseTimestamp converts "00:01:02,345" (or a period separator) to
// seconds.
func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
