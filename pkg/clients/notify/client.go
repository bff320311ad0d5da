// Package notify delivers lot alerts to an operator-facing webhook.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/parkos/parklot/internal/config"
)

// Client posts alert messages to the configured webhook endpoint.
type Client interface {
	SendAlert(ctx context.Context, message string) error
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	webhookURL string
}

// NewClient builds a webhook alert client using the provided configuration.
func NewClient(cfg config.NotifyConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)

	return &WebhookClient{
		httpClient: restyClient,
		webhookURL: cfg.WebhookURL,
	}
}

type alertPayload struct {
	Source  string `json:"source"`
	Message string `json:"message"`
	SentAt  string `json:"sent_at"`
}

// SendAlert posts a single alert message to the webhook.
func (c *WebhookClient) SendAlert(ctx context.Context, message string) error {
	payload := alertPayload{
		Source:  "parklot",
		Message: message,
		SentAt:  time.Now().UTC().Format(time.RFC3339),
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.webhookURL)
	if err != nil {
		return fmt.Errorf("send alert: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("alert webhook error: status=%d, body=%s", resp.StatusCode(), resp.String())
	}

	return nil
}
