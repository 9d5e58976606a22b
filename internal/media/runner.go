// Package media wraps ffmpeg and ffprobe for audio extraction, stream
// probing, and muxing the cleaned output video.
package media

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"cleanvid/internal/services"
)

// Runner executes external media tools. Tests substitute a fake.
type Runner interface {
	// Run executes a command, discarding stdout.
	Run(ctx context.Context, name string, args ...string) error
	// Output executes a command and returns its stdout.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools on the host.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return services.Wrap(services.ErrExternalTool, "", "media.run", name+": "+tail(stderr.String()), err)
	}
	return nil
}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "", "media.output", name+": "+tail(stderr.String()), err)
	}
	return stdout.Bytes(), nil
}

// tail keeps the last few lines of tool stderr so errors stay readable.
func tail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.Join(lines, " | ")
}
