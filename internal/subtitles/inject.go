package subtitles

import (
	"strings"

	"cleanvid/internal/lexicon"
	"cleanvid/internal/textutil"
	"cleanvid/internal/words"
)

// coverageBuffer widens the transcript window checked around each
// subtitle cue when deciding whether a swear was already transcribed.
const coverageBuffer = 1.0

// InjectMissing scans subtitle lines for lexicon terms that the
// transcript failed to pick up and inserts them as synthetic words
// spanning the full cue, shifted onto the transcript timeline.
// Exception terms are never injected. The returned slice is sorted by
// start time; inserted reports how many words were added. Running it a
// second time over its own output adds nothing, since the injected
// words now cover their cues.
func InjectMissing(list []words.Word, lines []Line, lex, exceptions lexicon.Lexicon, offset float64) (out []words.Word, inserted int) {
	out = append([]words.Word{}, list...)

	for _, line := range lines {
		lineNorm := textutil.NormalizeLine(line.Text)

		var present []string
		for _, term := range lex.Words() {
			if exceptions.Contains(term) {
				continue
			}
			if textutil.ContainsWord(lineNorm, term) {
				present = append(present, term)
			}
		}
		if len(present) == 0 {
			continue
		}

		adjStart := line.Start - offset
		adjEnd := line.End - offset
		windowStart := adjStart - coverageBuffer
		windowEnd := adjEnd + coverageBuffer

		var window []words.Word
		for _, word := range out {
			if word.End >= windowStart && word.Start <= windowEnd {
				window = append(window, word)
			}
		}

		for _, term := range present {
			if coveredBy(window, term) {
				continue
			}
			out = append(out, words.Word{
				Text:       term,
				Start:      adjStart,
				End:        adjEnd,
				Confidence: 1.0,
			})
			inserted++
		}
	}

	if inserted > 0 {
		words.SortByStart(out)
	}
	return out, inserted
}

// coveredBy reports whether any transcript word in the window accounts
// for the term. Word boundary matching stops "pass" covering "ass",
// while the substring check lets "jackass" cover "ass" for terms long
// enough to avoid false hits.
func coveredBy(window []words.Word, term string) bool {
	for _, word := range window {
		norm := textutil.NormalizeWord(word.Text)
		if norm == term || textutil.ContainsWord(norm, term) {
			return true
		}
		if len(term) > 3 && strings.Contains(norm, term) {
			return true
		}
	}
	return false
}

// Confirmed returns the lexicon terms that appear in the subtitle
// text. A term on the exception list is only excused from muting when
// the subtitles confirm the speaker really said it.
func Confirmed(lines []Line, lex lexicon.Lexicon) lexicon.Lexicon {
	confirmed := lexicon.Lexicon{}
	for _, line := range lines {
		lineNorm := textutil.NormalizeLine(line.Text)
		for _, term := range lex.Words() {
			if confirmed.Contains(term) {
				continue
			}
			if textutil.ContainsWord(lineNorm, term) {
				confirmed[term] = struct{}{}
			}
		}
	}
	return confirmed
}
