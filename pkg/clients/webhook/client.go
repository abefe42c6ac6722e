package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/biomethane/internal/config"
	"github.com/mamadbah2/biomethane/internal/domain/models"
)

// Client delivers notifications to a chat or automation webhook.
type Client interface {
	Notify(ctx context.Context, n models.Notification) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg config.NotifyConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient, url: cfg.WebhookURL}
}

// payload is the posted body. Text repeats the title in bold for chat
// receivers that only render the text field.
type payload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Notify posts the notification.
func (c *APIClient) Notify(ctx context.Context, n models.Notification) error {
	text := n.Text
	if n.Title != "" {
		text = fmt.Sprintf("*%s*\n%s", n.Title, n.Text)
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload{Title: n.Title, Text: text}).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("webhook error: code=%d, body=%s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
