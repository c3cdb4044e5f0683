package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SlackSender posts intents to an incoming webhook. When no webhook is
// configured the sender is a no-op.
type SlackSender struct {
	webhookURL string
	client     *http.Client
}

// NewSlackSender builds a webhook sender.
func NewSlackSender(webhookURL string) *SlackSender {
	return &SlackSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Name implements Sender.
func (s *SlackSender) Name() string { return "slack" }

// Send implements Sender.
func (s *SlackSender) Send(ctx context.Context, intent Intent) error {
	if s.webhookURL == "" {
		return nil
	}

	text := intent.Subject
	if intent.Body != "" {
		text = fmt.Sprintf("%s\n%s", intent.Subject, intent.Body)
	}
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook status %d", resp.StatusCode)
	}
	return nil
}
