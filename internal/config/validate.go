package config

import (
	"fmt"
	"strings"
)

// normalize expands paths and fills derived values in place.
func (c *Config) normalize() error {
	pathFields := []*string{
		&c.Paths.WorkDir,
		&c.Paths.ResponseDir,
		&c.Paths.LogDir,
		&c.Ledger.Path,
		&c.Lexicon.Path,
		&c.Lexicon.ExceptionsPath,
	}
	for _, field := range pathFields {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}

// Validate checks the configuration for values the pipeline cannot run
// with. Credentials are not required here; steps that need them fail
// with a configuration error when they actually run, so purely local
// operations like mute list generation work without any API setup.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		problems = append(problems, "paths.work_dir is required")
	}
	if strings.TrimSpace(c.Paths.ResponseDir) == "" {
		problems = append(problems, "paths.response_dir is required")
	}
	if strings.TrimSpace(c.Lexicon.Path) == "" {
		problems = append(problems, "lexicon.path is required")
	}
	if c.Transcriber.PollIntervalSeconds < 0 {
		problems = append(problems, "transcriber.poll_interval_seconds must not be negative")
	}
	if c.Audio.SegmentSeconds < 0 {
		problems = append(problems, "audio.segment_seconds must not be negative")
	}
	if c.Ledger.MonthlyLimitMinutes < 0 {
		problems = append(problems, "ledger.monthly_limit_minutes must not be negative")
	}
	if c.Subtitles.MatchThreshold < 0 || c.Subtitles.MatchThreshold > 1 {
		problems = append(problems, "subtitles.match_threshold must be between 0 and 1")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
