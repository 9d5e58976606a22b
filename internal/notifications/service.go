// Package notifications pushes pipeline events over ntfy.
package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cleanvid/internal/config"
)

const userAgent = "cleanvid/0.1.0"

// Service is the notification surface exposed to the pipeline.
type Service interface {
	NotifyPipelineCompleted(ctx context.Context, video string, muted int, duration time.Duration) error
	NotifyPipelineFailed(ctx context.Context, video, step string, err error) error
	NotifyQuotaWarning(ctx context.Context, month string, usedMinutes, limitMinutes float64) error
	TestNotification(ctx context.Context) error
}

// NewService builds a service backed by ntfy when a topic is
// configured, otherwise a noop.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if !strings.Contains(topic, "://") {
		topic = "https://ntfy.sh/" + topic
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyPipelineCompleted(ctx context.Context, video string, muted int, duration time.Duration) error {
	return n.send(ctx, payload{
		title:   "cleanvid - Done",
		message: fmt.Sprintf("Cleaned %s: %d mutes in %s", video, muted, duration.Round(time.Second)),
		tags:    []string{"cleanvid", "done"},
	})
}

func (n *ntfyService) NotifyPipelineFailed(ctx context.Context, video, step string, err error) error {
	return n.send(ctx, payload{
		title:    "cleanvid - Failed",
		message:  fmt.Sprintf("%s failed at %s: %v", video, step, err),
		tags:     []string{"cleanvid", "error"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyQuotaWarning(ctx context.Context, month string, usedMinutes, limitMinutes float64) error {
	return n.send(ctx, payload{
		title:    "cleanvid - Quota Warning",
		message:  fmt.Sprintf("%s: %.0f of %.0f transcription minutes used", month, usedMinutes, limitMinutes),
		tags:     []string{"cleanvid", "quota"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:   "cleanvid - Test",
		message: "Notifications are working",
		tags:    []string{"cleanvid", "test"},
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyPipelineCompleted(context.Context, string, int, time.Duration) error {
	return nil
}
func (noopService) NotifyPipelineFailed(context.Context, string, string, error) error { return nil }
func (noopService) NotifyQuotaWarning(context.Context, string, float64, float64) error {
	return nil
}
func (noopService) TestNotification(context.Context) error { return nil }
