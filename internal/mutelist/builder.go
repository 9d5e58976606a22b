// Package mutelist builds audio mute intervals from transcript words
// and renders them as an ffmpeg volume filter script.
package mutelist

import (
	"strings"

	"cleanvid/internal/lexicon"
	"cleanvid/internal/textutil"
	"cleanvid/internal/words"
)

// Interval is a span of audio to silence, in seconds, without padding.
type Interval struct {
	Start float64
	End   float64
}

// Match records one lexicon hit and whether it was excused.
type Match struct {
	Term    string
	Start   float64
	End     float64
	Excused bool
}

// Result holds everything derived from a single pass over the words.
type Result struct {
	Intervals  []Interval
	Matches    []Match
	Transcript string
}

// Build scans words in order and produces mute intervals. A two word
// phrase ending at the current word takes priority over a single word
// match. A hit is excused only when the term is on the exception list
// AND the subtitles confirmed it.
func Build(list []words.Word, lex, exceptions, confirmed lexicon.Lexicon) Result {
	var result Result
	censored := make([]string, len(list))
	for i, word := range list {
		censored[i] = word.Text
	}

	var prevNorm string
	for i, word := range list {
		norm := textutil.NormalizeWord(word.Text)

		term := ""
		start, end := word.Start, word.End
		firstIndex := i
		if prevNorm != "" {
			compound := prevNorm + " " + norm
			if lex.Contains(compound) {
				term = compound
				start = list[i-1].Start
				firstIndex = i - 1
			}
		}
		if term == "" && lex.Contains(norm) {
			term = norm
		}

		prevNorm = norm
		if term == "" {
			continue
		}

		excused := exceptions.Contains(term) && confirmed.Contains(term)
		result.Matches = append(result.Matches, Match{
			Term:    term,
			Start:   start,
			End:     end,
			Excused: excused,
		})
		if excused {
			continue
		}

		result.Intervals = append(result.Intervals, Interval{Start: start, End: end})
		for j := firstIndex; j <= i; j++ {
			censored[j] = censor(list[j].Text)
		}
	}

	result.Transcript = strings.Join(censored, " ")
	return result
}

func censor(text string) string {
	runes := []rune(text)
	if len(runes) <= 1 {
		return text
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}
