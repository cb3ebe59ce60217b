// Package notify delivers operator alerts. The primary channel is the fleet
// chat webhook; email is the optional secondary channel for escalations.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sink sends a message to a named channel.
type Sink interface {
	SendMessage(ctx context.Context, channelID string, text string) error
}

type chatSink struct {
	httpClient *http.Client
	webhookURL string
	token      string
}

func (c *chatSink) SendMessage(ctx context.Context, channelID string, text string) error {
	payload, err := json.Marshal(map[string]string{
		"channel_id": channelID,
		"text":       text,
	})
	if err != nil {
		return fmt.Errorf("ChatSink.SendMessage: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ChatSink.SendMessage: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ChatSink.SendMessage: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ChatSink.SendMessage: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func NewChatSink(webhookURL, token string, requestTimeout time.Duration) Sink {
	return &chatSink{
		httpClient: &http.Client{Timeout: requestTimeout},
		webhookURL: webhookURL,
		token:      token,
	}
}
