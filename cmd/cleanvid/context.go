package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"cleanvid/internal/config"
	"cleanvid/internal/ledger"
	"cleanvid/internal/logging"
	"cleanvid/internal/media"
	"cleanvid/internal/notifications"
	"cleanvid/internal/pipeline"
	"cleanvid/internal/storage"
	"cleanvid/internal/transcribe"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		outputs := []string{"stderr"}
		if cfg.Paths.LogDir != "" {
			outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "cleanvid.log"))
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: outputs,
		})
	})
	return c.logger, c.loggerErr
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// buildPipeline wires the full dependency set. Steps that need
// unconfigured services fail individually when they run, so local-only
// invocations still work.
func (c *commandContext) buildPipeline(ctx context.Context) (*pipeline.Pipeline, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	deps := pipeline.Deps{
		Config:   cfg,
		Notifier: notifications.NewService(cfg),
		Runner:   media.ExecRunner{},
		Logger:   logger,
	}

	cleanup := func() {}
	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		logger.Warn("ledger unavailable", logging.Error(err))
	} else {
		deps.Ledger = store
		cleanup = func() { store.Close() }
	}

	if cfg.Storage.Endpoint != "" {
		uploader, err := storage.NewMinio(ctx, storage.MinioOptions{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		}, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.Uploader = uploader
	}

	if cfg.Transcriber.APIKey != "" {
		svc, err := transcribe.NewAssemblyAI(cfg.Transcriber.APIKey, cfg.Transcriber.Language, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.Transcriber = svc
	}

	p, err := pipeline.New(deps)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return p, cleanup, nil
}
