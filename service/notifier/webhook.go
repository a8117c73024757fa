package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/viant/hitl/model"
)

// WebhookChannel POSTs a JSON summary of each event to a configured URL
// (Slack-style incoming webhook).
type WebhookChannel struct {
	URL    string
	Client *http.Client
}

// NewWebhookChannel creates a webhook channel with a sane default timeout.
func NewWebhookChannel(URL string) *WebhookChannel {
	return &WebhookChannel{
		URL:    URL,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the event payload; a non-2xx response is an error.
func (c *WebhookChannel) Send(ctx context.Context, event *model.Event) error {
	payload := map[string]interface{}{
		"type": event.Type,
		"request": map[string]interface{}{
			"id":       event.Request.ID,
			"kind":     event.Request.Kind,
			"title":    event.Request.Title,
			"status":   event.Request.Status,
			"priority": event.Request.Priority,
		},
	}
	if event.Request.DecidedBy != "" {
		payload["decidedBy"] = event.Request.DecidedBy
	}
	if event.Request.Reason != "" {
		payload["reason"] = event.Request.Reason
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.Client.Do(request)
	if err != nil {
		return err
	}
	defer func() { _ = response.Body.Close() }()
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("webhook %s returned %d", c.URL, response.StatusCode)
	}
	return nil
}

// LogChannel writes every event to the process log; useful as a default
// channel and in tests.
type LogChannel struct{}

// Send logs the event.
func (LogChannel) Send(_ context.Context, event *model.Event) error {
	request := event.Request
	log.Printf("approval %s: %s %q status=%s decidedBy=%s", event.Type, request.ID, request.Title, request.Status, request.DecidedBy)
	return nil
}
