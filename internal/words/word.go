// Package words models transcript words and their CSV persistence.
package words

import "sort"

// Word is a single transcribed word with timing in seconds.
type Word struct {
	Text       string
	Start      float64
	End        float64
	Confidence float64
}

// SortByStart orders words by start time, ties broken by end time.
func SortByStart(list []Word) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Start != list[j].Start {
			return list[i].Start < list[j].Start
		}
		return list[i].End < list[j].End
	})
}
