package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PublishError is a rejected status update. The bill stays unpublished and
// is retried on a later cycle.
type PublishError struct {
	StatusCode int
	Message    string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish rejected (HTTP %d): %s", e.StatusCode, e.Message)
}

// Publisher posts bill statuses to the feed API.
type Publisher struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewPublisher creates a new Publisher
func NewPublisher(baseURL, token string, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Publisher{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// VerifyCredentials checks that the feed accepts our token. A definite
// rejection reports false without an error; transport or server failures
// report an error.
func (p *Publisher) VerifyCredentials(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"/account/verify_credentials", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to verify credentials: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

// Post publishes a status update.
func (p *Publisher) Post(ctx context.Context, status string) error {
	form := url.Values{}
	form.Set("status", status)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/statuses/update", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &PublishError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	return nil
}

// CloseIdleConnections releases any kept-alive connections to the feed.
func (p *Publisher) CloseIdleConnections() {
	p.client.CloseIdleConnections()
}
