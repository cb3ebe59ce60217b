// Package kb is the client for the fleet-wide knowledge base: a shared store
// of problem/approach records searched before a fix attempt and updated with
// each outcome.
package kb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Approach statuses recorded against a problem.
const (
	ApproachWorked   = "worked"
	ApproachFailed   = "failed"
	ApproachUntested = "untested"
)

type Approach struct {
	ApproachID string `json:"approach_id"`
	Angle      string `json:"angle"`
	Method     string `json:"method"`
	Status     string `json:"status"`
}

type Problem struct {
	ProblemID  string     `json:"problem_id"`
	Title      string     `json:"title"`
	Approaches []Approach `json:"approaches"`
}

type Client interface {
	Search(ctx context.Context, query string) ([]Problem, error)
	PostProblem(ctx context.Context, title, description string, tags []string) (string, error)
	PostApproach(ctx context.Context, problemID, angle, method, status string) (string, error)
	UpdateApproachStatus(ctx context.Context, approachID, status string) error
}

type client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	initialBackoff time.Duration
}

func (c *client) Search(ctx context.Context, query string) ([]Problem, error) {
	endpoint := fmt.Sprintf("%s/problems/search?q=%s", c.baseURL, url.QueryEscape(query))
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("KBClient.Search: %w", err)
	}
	var res struct {
		Problems []Problem `json:"problems"`
	}
	if err = json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("KBClient.Search: %w", err)
	}
	return res.Problems, nil
}

func (c *client) PostProblem(ctx context.Context, title, description string, tags []string) (string, error) {
	payload := map[string]any{
		"title":       title,
		"description": description,
		"tags":        tags,
	}
	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/problems", payload)
	if err != nil {
		return "", fmt.Errorf("KBClient.PostProblem: %w", err)
	}
	var res struct {
		ProblemID string `json:"problem_id"`
	}
	if err = json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("KBClient.PostProblem: %w", err)
	}
	return res.ProblemID, nil
}

func (c *client) PostApproach(ctx context.Context, problemID, angle, method, status string) (string, error) {
	payload := map[string]any{
		"angle":  angle,
		"method": method,
		"status": status,
	}
	endpoint := fmt.Sprintf("%s/problems/%s/approaches", c.baseURL, url.PathEscape(problemID))
	body, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return "", fmt.Errorf("KBClient.PostApproach: %w", err)
	}
	var res struct {
		ApproachID string `json:"approach_id"`
	}
	if err = json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("KBClient.PostApproach: %w", err)
	}
	return res.ApproachID, nil
}

func (c *client) UpdateApproachStatus(ctx context.Context, approachID, status string) error {
	payload := map[string]any{
		"status": status,
	}
	endpoint := fmt.Sprintf("%s/approaches/%s", c.baseURL, url.PathEscape(approachID))
	if _, err := c.do(ctx, http.MethodPatch, endpoint, payload); err != nil {
		return fmt.Errorf("KBClient.UpdateApproachStatus: %w", err)
	}
	return nil
}

// do executes one request with bounded retries and exponential backoff.
// Client errors (4xx) are not retried; server errors and transport failures
// are.
func (c *client) do(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var reqBody []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = b
	}
	backoff := c.initialBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(reqBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}
		lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func NewClient(baseURL, token string, maxRetries int, requestTimeout, initialBackoff time.Duration) Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &client{
		httpClient:     &http.Client{Timeout: requestTimeout},
		baseURL:        baseURL,
		token:          token,
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
	}
}
