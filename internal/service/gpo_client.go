package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 2 * time.Second
	requestDelay   = 1 * time.Second
)

// GPOClient fetches bulk-data listings and bill status documents from the
// GPO's govinfo service.
type GPOClient struct {
	client  *http.Client
	backoff time.Duration
}

// NewGPOClient creates a new bulk-data client. A zero timeout falls back to
// the package default.
func NewGPOClient(timeout time.Duration) *GPOClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &GPOClient{
		client: &http.Client{
			Timeout: timeout,
		},
		backoff: initialBackoff,
	}
}

// FetchBillLinks retrieves the document links from a bulk-data index page.
// Directory listings bracket the file rows with navigation anchors, so the
// first and last links are dropped. Relative links are resolved against the
// index URL.
func (c *GPOClient) FetchBillLinks(ctx context.Context, indexURL string) ([]string, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("invalid index url %q: %w", indexURL, err)
	}

	body, err := c.fetchWithRetry(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bill index: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bill index: %w", err)
	}

	hrefs := extractLinks(doc)
	if len(hrefs) <= 2 {
		return nil, nil
	}
	hrefs = hrefs[1 : len(hrefs)-1]

	links := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		links = append(links, base.ResolveReference(ref).String())
	}

	return links, nil
}

// FetchDocument retrieves a single bill status document.
func (c *GPOClient) FetchDocument(ctx context.Context, docURL string) ([]byte, error) {
	body, err := c.fetchWithRetry(ctx, docURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bill document %s: %w", docURL, err)
	}
	return body, nil
}

// Delay returns the configured delay between document requests.
func (c *GPOClient) Delay() time.Duration {
	return requestDelay
}

// extractLinks collects anchor hrefs in document order.
func extractLinks(doc *html.Node) []string {
	var links []string

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && attr.Val != "" {
					links = append(links, attr.Val)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	return links
}

// fetchWithRetry performs an HTTP GET with exponential backoff retry
func (c *GPOClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.client.Do(req)
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

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
