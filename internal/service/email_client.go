package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"brokerdash/pkg/circuitbreaker"
	"brokerdash/pkg/config"
	"brokerdash/pkg/trace"
)

// EmailClient talks to the transactional email provider's HTTP API.
// Sends are fire-and-forget from the caller's perspective; the breaker
// keeps a dead provider from stalling the worker.
type EmailClient struct {
	apiURL     string
	apiKey     string
	from       string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
}

func NewEmailClient(cfg config.EmailConfig) *EmailClient {
	cbConfig := circuitbreaker.Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
	}

	return &EmailClient{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		from:   cfg.From,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		cb: circuitbreaker.NewCircuitBreaker(cbConfig),
	}
}

// Configured reports whether sending is enabled. A missing key or sender
// address silently disables email, matching the dashboard's behavior.
func (c *EmailClient) Configured() bool {
	return c.apiKey != "" && c.from != ""
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send delivers one email through the provider.
func (c *EmailClient) Send(ctx context.Context, to, subject, html string) error {
	return c.cb.Execute(func() error {
		body, err := json.Marshal(emailRequest{
			From:    c.from,
			To:      []string{to},
			Subject: subject,
			HTML:    html,
		})
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if traceID := trace.FromContext(ctx); traceID != "" {
			req.Header.Set(trace.HeaderName(), traceID)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to call email provider: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return fmt.Errorf("email provider returned error: %d", resp.StatusCode)
		}
		return nil
	})
}
