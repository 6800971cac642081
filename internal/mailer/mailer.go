// Package mailer sends transactional email through an HTTPS JSON API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultEndpoint = "https://api.resend.com/emails"

// Mailer sends a single email. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, html string) error
}

// Client is a Mailer backed by the Resend REST API.
type Client struct {
	apiKey   string
	from     string
	endpoint string
	http     *http.Client
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
}

// New returns a Client sending from the given address.
func New(apiKey, from string) *Client {
	return &Client{
		apiKey:   apiKey,
		from:     from,
		endpoint: defaultEndpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// WithEndpoint overrides the API endpoint. Intended for tests.
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = endpoint
	return c
}

// Send delivers one email to the given recipients.
func (c *Client) Send(ctx context.Context, to []string, subject, html string) error {
	if len(to) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if c.apiKey == "" {
		return fmt.Errorf("mail API key is not configured")
	}

	payload, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      to,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("email API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("email API error (%d)", resp.StatusCode)
	}

	return nil
}
