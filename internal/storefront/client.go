// Package storefront talks to the storefront the quick view is embedded in:
// the AJAX cart endpoint and the section rendering endpoint.
package storefront

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/loganlanou/quickview/internal/catalog"
)

// QuickViewSectionID is the section rendered inside the quick view modal.
const QuickViewSectionID = "main-quick-view"

type Config struct {
	// BaseURL is the shop root, e.g. https://shop.example.com/ or
	// https://shop.example.com/fr/ for a localized root.
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	root       *url.URL
	httpClient *http.Client
}

// NewClient creates a storefront client. A nil httpClient gets one with the
// configured timeout.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("storefront base url is required")
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	root, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("failed to parse storefront base url: %w", err)
	}
	if root.Scheme == "" || root.Host == "" {
		return nil, fmt.Errorf("storefront base url %q must be absolute", cfg.BaseURL)
	}

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{root: root, httpClient: httpClient}, nil
}

// ProductURL returns the storefront URL of a product page.
func (c *Client) ProductURL(handle string) string {
	return c.resolve("products/" + url.PathEscape(handle))
}

func (c *Client) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return c.root.String() + path
	}
	return c.root.ResolveReference(ref).String()
}

// get fetches rawURL and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	slog.Debug("storefront request",
		"method", http.MethodGet,
		"url", rawURL,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, catalog.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("storefront error: status %d", resp.StatusCode)
	}

	return body, nil
}
