// Package config loads and validates the TOML configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working and output directories.
type Paths struct {
	// WorkDir holds per-video scratch data: audio segments, handles,
	// word CSVs.
	WorkDir string `toml:"work_dir"`
	// ResponseDir holds completed transcription responses.
	ResponseDir string `toml:"response_dir"`
	LogDir      string `toml:"log_dir"`
}

// Transcriber contains speech-to-text provider settings.
type Transcriber struct {
	APIKey string `toml:"api_key"`
	// Language is an optional BCP-47 code, e.g. "en".
	Language string `toml:"language"`
	// PollIntervalSeconds is the delay between polling sweeps.
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
}

// Storage contains S3-compatible object store settings for staging
// audio the provider fetches.
type Storage struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
	// URLLifetimeHours bounds how long presigned fetch URLs stay
	// valid.
	URLLifetimeHours int `toml:"url_lifetime_hours"`
}

// Ledger contains usage tracking settings.
type Ledger struct {
	Path string `toml:"path"`
	// MonthlyLimitMinutes is the advisory transcription budget per
	// calendar month. Zero disables the warning.
	MonthlyLimitMinutes float64 `toml:"monthly_limit_minutes"`
}

// Subtitles contains subtitle merge settings.
type Subtitles struct {
	// MergeEnabled turns the opt-in subtitle merge step on.
	MergeEnabled bool `toml:"merge_enabled"`
	// MatchThreshold is the minimum stem similarity for fuzzy
	// subtitle file matching.
	MatchThreshold float64 `toml:"match_threshold"`
}

// Lexicon contains word list locations.
type Lexicon struct {
	Path           string `toml:"path"`
	ExceptionsPath string `toml:"exceptions_path"`
}

// Audio contains extraction settings.
type Audio struct {
	SegmentSeconds int `toml:"segment_seconds"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all settings for the cleaning pipeline.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcriber   Transcriber   `toml:"transcriber"`
	Storage       Storage       `toml:"storage"`
	Ledger        Ledger        `toml:"ledger"`
	Subtitles     Subtitles     `toml:"subtitles"`
	Lexicon       Lexicon       `toml:"lexicon"`
	Audio         Audio         `toml:"audio"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cleanvid/config.toml")
}

// Load locates, parses, and validates a configuration file. Path
// fields in the returned config are expanded and absolute.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cleanvid.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.ResponseDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dir := filepath.Dir(c.Ledger.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to path.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
