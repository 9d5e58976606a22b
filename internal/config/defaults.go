package config

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:     "~/.local/share/cleanvid/work",
			ResponseDir: "~/.local/share/cleanvid/responses",
			LogDir:      "~/.local/share/cleanvid/logs",
		},
		Transcriber: Transcriber{
			Language:            "en",
			PollIntervalSeconds: 15,
		},
		Storage: Storage{
			Bucket:           "cleanvid-audio",
			UseSSL:           true,
			URLLifetimeHours: 6,
		},
		Ledger: Ledger{
			Path:                "~/.local/share/cleanvid/ledger.db",
			MonthlyLimitMinutes: 0,
		},
		Subtitles: Subtitles{
			MergeEnabled:   false,
			MatchThreshold: 0.3,
		},
		Lexicon: Lexicon{
			Path: "~/.config/cleanvid/swears.txt",
		},
		Audio: Audio{
			SegmentSeconds: 3600,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}
