package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("file should not exist")
	}
	if cfg.Audio.SegmentSeconds != 3600 {
		t.Fatalf("default segment length lost: %d", cfg.Audio.SegmentSeconds)
	}
	if cfg.Transcriber.PollIntervalSeconds != 15 {
		t.Fatalf("default poll interval lost: %d", cfg.Transcriber.PollIntervalSeconds)
	}
}

func TestLoadParsesAndExpands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
work_dir = "~/cleanvid-work"

[transcriber]
api_key = "key-123"
poll_interval_seconds = 5

[subtitles]
merge_enabled = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatal("expected existing config")
	}
	if cfg.Transcriber.APIKey != "key-123" {
		t.Fatalf("api key not read: %q", cfg.Transcriber.APIKey)
	}
	if cfg.Transcriber.PollIntervalSeconds != 5 {
		t.Fatalf("override lost: %d", cfg.Transcriber.PollIntervalSeconds)
	}
	if !cfg.Subtitles.MergeEnabled {
		t.Fatal("merge_enabled not read")
	}
	if strings.HasPrefix(cfg.Paths.WorkDir, "~") || !filepath.IsAbs(cfg.Paths.WorkDir) {
		t.Fatalf("work_dir not expanded: %q", cfg.Paths.WorkDir)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Paths.ResponseDir == "" || cfg.Lexicon.Path == "" {
		t.Fatalf("defaults dropped: %+v", cfg.Paths)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative poll interval", func(c *Config) { c.Transcriber.PollIntervalSeconds = -1 }},
		{"negative segment", func(c *Config) { c.Audio.SegmentSeconds = -10 }},
		{"negative limit", func(c *Config) { c.Ledger.MonthlyLimitMinutes = -5 }},
		{"bad threshold", func(c *Config) { c.Subtitles.MatchThreshold = 1.5 }},
		{"bad format", func(c *Config) { c.Logging.Format = "yaml" }},
		{"missing work dir", func(c *Config) { c.Paths.WorkDir = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateAllowsMissingCredentials(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate without credentials: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[transcriber]") {
		t.Fatalf("sample incomplete: %s", data)
	}
	if err := CreateSample(path); err == nil {
		t.Fatal("overwriting an existing config must fail")
	}

	// The sample must itself parse and validate.
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
