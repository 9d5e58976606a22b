package subtitles

import (
	"sort"
	"strings"

	"cleanvid/internal/textutil"
	"cleanvid/internal/words"
)

const (
	anchorMinLength     = 5
	anchorMinConfidence = 0.9
	anchorSampleCount   = 20
	singleWordWindow    = 60.0
	looseMatchWindow    = 10.0
)

// ComputeOffset estimates the constant shift between subtitle timing
// and transcript timing as (subtitle start - word start). Positive
// means the subtitles run late relative to the transcript. Returns 0
// when no reliable anchors are found.
//
// High confidence transcript words are sampled across the file and
// matched against subtitle lines. Single word cues give the cleanest
// measurement because the cue start is the word start; longer lines
// only contribute through a looser fallback when no single word cue
// matched anywhere.
func ComputeOffset(list []words.Word, lines []Line) float64 {
	var anchors []words.Word
	for _, word := range list {
		if len(word.Text) >= anchorMinLength && word.Confidence > anchorMinConfidence {
			anchors = append(anchors, word)
		}
	}
	if len(anchors) == 0 {
		return 0
	}

	step := len(anchors) / anchorSampleCount
	if step < 1 {
		step = 1
	}
	var sampled []words.Word
	for i := 0; i < len(anchors); i += step {
		sampled = append(sampled, anchors[i])
	}

	var offsets []float64
	for _, anchor := range sampled {
		norm := textutil.NormalizeWord(anchor.Text)
		for _, line := range lines {
			if abs(line.Start-anchor.Start) > singleWordWindow {
				continue
			}
			lineWords := strings.Fields(textutil.NormalizeLine(line.Text))
			if len(lineWords) != 1 || lineWords[0] != norm {
				continue
			}
			offsets = append(offsets, line.Start-anchor.Start)
		}
	}

	if len(offsets) == 0 {
		for _, anchor := range sampled {
			norm := textutil.NormalizeWord(anchor.Text)
			for _, line := range lines {
				if abs(line.Start-anchor.Start) > looseMatchWindow {
					continue
				}
				if textutil.ContainsWord(textutil.NormalizeLine(line.Text), norm) {
					offsets = append(offsets, line.Start - anchor.Start)
					break
				}
			}
		}
	}

	if len(offsets) == 0 {
		return 0
	}
	return median(offsets)
}

func median(values []float64) float64 {
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
