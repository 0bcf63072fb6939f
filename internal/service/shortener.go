package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const shortenerUserAgent = "Mozilla/5.0 (compatible; CyberLawBot/1.0)"

var (
	// ErrQuotaExhausted is returned when the hourly request allowance is
	// spent. No request is sent once the counter hits the ceiling.
	ErrQuotaExhausted = errors.New("shortening quota exhausted")

	// ErrUnavailable is returned on a non-OK HTTP status. The row keeps its
	// long URL and is retried on a later cycle.
	ErrUnavailable = errors.New("shortening service unavailable")
)

// ShortenError is a refusal reported by the shortening service itself, such
// as a rate limit or a rejected URL. Receiving one pins the quota counter to
// its ceiling so no further requests go out this process.
type ShortenError struct {
	Code    int
	Message string
}

func (e *ShortenError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// isgdResponse is the JSON payload from the is.gd creation endpoint. Exactly
// one of ShortURL or the error pair is set.
type isgdResponse struct {
	ShortURL     string `json:"shorturl"`
	ErrorCode    int    `json:"errorcode"`
	ErrorMessage string `json:"errormessage"`
}

// Shortener converts long bill URLs into short links, counting every
// successful request against a per-process quota.
type Shortener struct {
	client   *http.Client
	endpoint string
	ceiling  int
	used     int
}

// NewShortener creates a new Shortener
func NewShortener(endpoint string, ceiling int, timeout time.Duration) *Shortener {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Shortener{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: endpoint,
		ceiling:  ceiling,
	}
}

// Used returns how many requests have counted against the quota.
func (s *Shortener) Used() int {
	return s.used
}

// Remaining returns how many requests are left before the ceiling. It never
// goes negative, even after an error pins the counter.
func (s *Shortener) Remaining() int {
	if s.used >= s.ceiling {
		return 0
	}
	return s.ceiling - s.used
}

// Exhausted reports whether the quota ceiling has been reached.
func (s *Shortener) Exhausted() bool {
	return s.used >= s.ceiling
}

// CloseIdleConnections releases any kept-alive connections to the service.
func (s *Shortener) CloseIdleConnections() {
	s.client.CloseIdleConnections()
}

// Shorten requests a short link for longURL. A service-reported refusal
// comes back as a *ShortenError with the quota pinned; an unexpected HTTP
// status comes back as ErrUnavailable and leaves the quota untouched.
func (s *Shortener) Shorten(ctx context.Context, longURL string) (string, error) {
	if s.Exhausted() {
		return "", ErrQuotaExhausted
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("url", longURL)
	params.Set("logstats", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", shortenerUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to shorten %s: %w", longURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w (HTTP %d)", ErrUnavailable, resp.StatusCode)
	}

	var payload isgdResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to parse shortener response: %w", err)
	}

	if payload.ShortURL == "" {
		s.used = s.ceiling
		return "", &ShortenError{Code: payload.ErrorCode, Message: payload.ErrorMessage}
	}

	s.used++
	return payload.ShortURL, nil
}
