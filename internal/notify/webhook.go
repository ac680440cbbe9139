package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/talkincode/tuxedoshop/config"
	"github.com/talkincode/tuxedoshop/internal/domain"
)

// WebhookSender posts alerts as chat style JSON to an incoming webhook
// (Slack, Mattermost and compatible).
type WebhookSender struct {
	client *resty.Client
}

// WebhookPayload is the JSON body sent to the webhook
type WebhookPayload struct {
	Text string `json:"text"`
}

func NewWebhookSender(cfg config.WebhookConfig) *WebhookSender {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json")
	for k, v := range cfg.Headers {
		client.SetHeader(k, v)
	}
	return &WebhookSender{client: client}
}

func (s *WebhookSender) Channel() string {
	return "webhook"
}

func (s *WebhookSender) Send(ctx context.Context, target, subject, body string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(WebhookPayload{Text: fmt.Sprintf("*%s*\n%s", subject, body)}).
		Post(target)
	if err != nil {
		return errors.Wrapf(domain.ErrNotification, "webhook request: %v", err)
	}
	if resp.IsError() {
		return errors.Wrapf(domain.ErrNotification, "webhook returned %s", resp.Status())
	}
	return nil
}
