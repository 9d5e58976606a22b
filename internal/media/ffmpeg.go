package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cleanvid/internal/services"
)

// ExtractOptions controls audio segment extraction.
type ExtractOptions struct {
	// SegmentSeconds is the length of each audio segment. Long videos
	// are cut into pieces so jobs can run in parallel.
	SegmentSeconds int
	// TrackIndex selects which audio stream to extract.
	TrackIndex int
}

// ExtractAudioArgs builds the ffmpeg arguments that turn a video into
// mono FLAC segments written as {outDir}/%03d.flac.
func ExtractAudioArgs(input, outDir string, opts ExtractOptions) []string {
	segment := opts.SegmentSeconds
	if segment <= 0 {
		segment = 3600
	}
	return []string{
		"-y",
		"-i", input,
		"-map", fmt.Sprintf("0:a:%d", opts.TrackIndex),
		"-f", "segment",
		"-segment_time", fmt.Sprintf("%d", segment),
		"-c:a", "flac",
		"-ac", "1",
		"-vn",
		filepath.Join(outDir, "%03d.flac"),
	}
}

// ExtractAudio runs the extraction, creating the output directory
// first.
func ExtractAudio(ctx context.Context, runner Runner, input, outDir string, opts ExtractOptions) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "extract", "mkdir", "create segment directory", err)
	}
	return runner.Run(ctx, "ffmpeg", ExtractAudioArgs(input, outDir, opts)...)
}

// MuxOptions controls how the cleaned video is assembled.
type MuxOptions struct {
	// FilterScript is the path to the volume filter written by the
	// mute list step.
	FilterScript string
	// AudioCodec and AudioBitrate mirror the source's first audio
	// stream so the muted track matches the original's quality.
	AudioCodec   string
	AudioBitrate string
}

// MuxArgs builds the ffmpeg arguments that produce the cleaned video:
// video stream copied, muted audio first and flagged default, the
// untouched original audio kept as a second track.
func MuxArgs(input, output string, opts MuxOptions) []string {
	bitrate := opts.AudioBitrate
	if bitrate == "" {
		bitrate = "256k"
	}
	return []string{
		"-y",
		"-i", input,
		"-map", "0:v:0",
		"-c:v", "copy",
		"-filter_complex_script", opts.FilterScript,
		"-metadata:s:a:0", "title=Clean",
		"-metadata:s:a:0", "language=eng",
		"-metadata:s:a:1", "title=Original",
		"-map", "[a]",
		"-c:a:0", opts.AudioCodec,
		"-b:a:0", bitrate,
		"-map", "0:a",
		"-c:a:1", "copy",
		"-disposition:a:0", "default",
		output,
	}
}

// Mux runs the final assembly.
func Mux(ctx context.Context, runner Runner, input, output string, opts MuxOptions) error {
	if opts.FilterScript == "" {
		return services.Wrap(services.ErrValidation, "apply", "mux", "filter script path is required", nil)
	}
	if opts.AudioCodec == "" {
		return services.Wrap(services.ErrValidation, "apply", "mux", "audio codec is required", nil)
	}
	return runner.Run(ctx, "ffmpeg", MuxArgs(input, output, opts)...)
}

// CleanOutputPath derives the cleaned video path next to the input:
// {stem}_clean{ext}.
func CleanOutputPath(input string) string {
	ext := filepath.Ext(input)
	stem := input[:len(input)-len(ext)]
	return stem + "_clean" + ext
}
