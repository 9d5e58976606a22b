package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"cleanvid/internal/services"
)

// ProbeResult is the parsed output of ffprobe.
type ProbeResult struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes one media stream.
type Stream struct {
	Index     int        `json:"index"`
	CodecType string     `json:"codec_type"`
	CodecName string     `json:"codec_name"`
	BitRate   string     `json:"bit_rate"`
	Tags      StreamTags `json:"tags"`
}

// StreamTags carries the stream metadata we care about.
type StreamTags struct {
	Title    string `json:"title"`
	Language string `json:"language"`
}

// Format describes container level metadata.
type Format struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

// Probe runs ffprobe against a file.
func Probe(ctx context.Context, runner Runner, path string) (ProbeResult, error) {
	out, err := runner.Output(ctx, "ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-show_error",
		path)
	if err != nil {
		return ProbeResult{}, err
	}
	var result ProbeResult
	if err := json.Unmarshal(out, &result); err != nil {
		return ProbeResult{}, services.Wrap(services.ErrFormat, "", "media.probe", "parse ffprobe output", err)
	}
	return result, nil
}

// Duration returns the container duration in seconds, or 0 when the
// probe did not report one.
func (p ProbeResult) Duration() float64 {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(p.Format.Duration), 64)
	if err != nil {
		return 0
	}
	return seconds
}

// AudioStreams returns the audio streams in container order.
func (p ProbeResult) AudioStreams() []Stream {
	var out []Stream
	for _, stream := range p.Streams {
		if stream.CodecType == "audio" {
			out = append(out, stream)
		}
	}
	return out
}

// AudioCodec returns the codec of the first audio stream, or "" when
// the file has none.
func (p ProbeResult) AudioCodec() string {
	for _, stream := range p.AudioStreams() {
		return stream.CodecName
	}
	return ""
}

// AudioBitrate returns the first audio stream's bitrate formatted for
// ffmpeg, e.g. "192k". Files that do not report a per-stream bitrate
// get a 256k fallback.
func (p ProbeResult) AudioBitrate() string {
	for _, stream := range p.AudioStreams() {
		if bits, err := strconv.Atoi(stream.BitRate); err == nil && bits > 0 {
			return fmt.Sprintf("%dk", bits/1000)
		}
	}
	return "256k"
}

// SelectAudioTrack picks which audio stream to transcribe. With one
// track the choice is forced. With several it prefers the track whose
// title contains "original"; commentary and dub tracks would poison
// the transcript. If no track is titled that way it falls back to the
// first and returns a warning for the operator.
func (p ProbeResult) SelectAudioTrack() (index int, warning string) {
	audio := p.AudioStreams()
	if len(audio) <= 1 {
		return 0, ""
	}
	for i, stream := range audio {
		if strings.Contains(strings.ToLower(stream.Tags.Title), "original") {
			return i, ""
		}
	}
	return 0, fmt.Sprintf("video has %d audio tracks but none titled 'Original'; using the first", len(audio))
}
