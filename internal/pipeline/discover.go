package pipeline

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"cleanvid/internal/fileutil"
	"cleanvid/internal/services"
	"cleanvid/internal/textutil"
	"cleanvid/internal/transcribe"
)

// minArtifactSize guards against counting truncated files, left by a
// killed process, as completed artifacts.
const minArtifactSize = 1000

// Artifacts holds everything discovered on disk for one video.
type Artifacts struct {
	Video string
	Stem  string
	// WorkDir is the per-video scratch directory.
	WorkDir string

	Segments       []string
	UploadManifest string
	Handles        []string
	Responses      []string

	// WordsCSV is the newest words file; WordsVersion its version
	// number, 0 when none exists.
	WordsCSV     string
	WordsVersion int

	Subtitle           string
	SubtitleConfidence float64

	MuteList   string
	Report     string
	CleanVideo string
}

var wordsVersionPattern = regexp.MustCompile(`_words_v(\d+)\.csv$`)

// DiscoverArtifacts scans disk for everything the pipeline may have
// produced for a video.
func DiscoverArtifacts(video, workRoot, responseDir string, subtitleThreshold float64) (Artifacts, error) {
	info, err := os.Stat(video)
	if err != nil || info.IsDir() {
		return Artifacts{}, services.Wrap(services.ErrNotFound, "", "pipeline.discover", "video not found", err)
	}

	base := filepath.Base(video)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	videoDir := filepath.Dir(video)

	a := Artifacts{
		Video:   video,
		Stem:    stem,
		WorkDir: filepath.Join(workRoot, stem),
	}

	// Step 1: audio segments.
	segments, _ := filepath.Glob(filepath.Join(a.WorkDir, "*.flac"))
	sort.Strings(segments)
	for _, segment := range segments {
		if fileutil.Exists(segment, minArtifactSize) {
			a.Segments = append(a.Segments, segment)
		}
	}

	// Step 2: upload manifest.
	manifest := filepath.Join(a.WorkDir, "upload.json")
	if fileutil.Exists(manifest, 1) {
		a.UploadManifest = manifest
	}

	// Step 3: handles and responses. Earlier runs may have suffixed
	// names (timestamps, segment numbers), so match by prefix.
	handles, _ := transcribe.FindHandles(a.WorkDir)
	for _, handle := range handles {
		if strings.HasPrefix(filepath.Base(handle), stem) {
			a.Handles = append(a.Handles, handle)
		}
	}
	responses, _ := filepath.Glob(filepath.Join(responseDir, stem+"*"+transcribe.ResponseExt))
	sort.Strings(responses)
	for _, response := range responses {
		if fileutil.Exists(response, 1) {
			a.Responses = append(a.Responses, response)
		}
	}

	// Transcript words, newest version wins.
	csvs, _ := filepath.Glob(filepath.Join(a.WorkDir, stem+"_words_v*.csv"))
	for _, csv := range csvs {
		match := wordsVersionPattern.FindStringSubmatch(csv)
		if match == nil || !fileutil.Exists(csv, 1) {
			continue
		}
		version, _ := strconv.Atoi(match[1])
		if version > a.WordsVersion {
			a.WordsVersion = version
			a.WordsCSV = csv
		}
	}

	// Step 4 input: subtitle next to the video, exact stem first,
	// then fuzzy.
	a.Subtitle, a.SubtitleConfidence = findSubtitle(videoDir, stem, subtitleThreshold)

	// Step 5: mute list next to the video.
	muteList := filepath.Join(videoDir, stem+"_clean_MUTE.txt")
	if fileutil.Exists(muteList, 0) {
		a.MuteList = muteList
	}
	report := filepath.Join(videoDir, stem+"_clean_REPORT.txt")
	if fileutil.Exists(report, 1) {
		a.Report = report
	}

	// Step 6: cleaned video.
	clean := filepath.Join(videoDir, stem+"_clean"+ext)
	if fileutil.Exists(clean, minArtifactSize) {
		a.CleanVideo = clean
	}

	return a, nil
}

// findSubtitle looks for {stem}.srt and falls back to the best fuzzy
// stem match in the directory.
func findSubtitle(dir, stem string, threshold float64) (string, float64) {
	exact := filepath.Join(dir, stem+".srt")
	if fileutil.Exists(exact, 1) {
		return exact, 1.0
	}

	candidates, _ := filepath.Glob(filepath.Join(dir, "*.srt"))
	best := ""
	bestScore := 0.0
	for _, candidate := range candidates {
		candidateStem := strings.TrimSuffix(filepath.Base(candidate), ".srt")
		score := textutil.StemSimilarity(stem, candidateStem)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	if best != "" && bestScore >= threshold && fileutil.Exists(best, 1) {
		return best, bestScore
	}
	return "", 0
}

// WordsCSVPath returns the path for a given words file version.
func (a Artifacts) WordsCSVPath(version int) string {
	return filepath.Join(a.WorkDir, a.Stem+"_words_v"+strconv.Itoa(version)+".csv")
}

// MuteListPath returns where the filter script belongs.
func (a Artifacts) MuteListPath() string {
	return filepath.Join(filepath.Dir(a.Video), a.Stem+"_clean_MUTE.txt")
}

// ReportPath returns where the report belongs.
func (a Artifacts) ReportPath() string {
	return filepath.Join(filepath.Dir(a.Video), a.Stem+"_clean_REPORT.txt")
}
