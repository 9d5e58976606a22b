// Package textutil provides the text normalization shared by the mute-list
// builder and subtitle aligner, plus fingerprint-based similarity used to
// pair subtitle files with videos.
//
// Word and line normalization lowercase input and strip punctuation while
// preserving internal apostrophes, so contractions are never mistaken for
// profanity after normalization.
package textutil
