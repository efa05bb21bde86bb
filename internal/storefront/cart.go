package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/loganlanou/quickview/internal/cart"
	"github.com/tidwall/gjson"
)

// SubmissionError is a cart add rejected by the storefront, e.g. because a
// variant sold out between page load and click.
type SubmissionError struct {
	Status      string
	Message     string
	Description string
}

func (e *SubmissionError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("cart add rejected (%s): %s", e.Status, e.Description)
	}
	return fmt.Sprintf("cart add rejected (%s): %s", e.Status, e.Message)
}

// AddToCart submits items to the cart in a single request.
func (c *Client) AddToCart(ctx context.Context, items []cart.LineItem) error {
	if len(items) == 0 {
		return fmt.Errorf("no line items to add")
	}

	payload, err := json.Marshal(cart.AddRequest{Items: items})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.resolve("cart/add.js")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	slog.Debug("storefront request",
		"method", http.MethodPost,
		"url", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"items", len(items),
	)

	if !gjson.ValidBytes(body) {
		return fmt.Errorf("failed to parse response: invalid json, status: %d", resp.StatusCode)
	}

	parsed := gjson.ParseBytes(body)
	if status, rejected := statusText(parsed.Get("status")); rejected {
		return &SubmissionError{
			Status:      status,
			Message:     parsed.Get("message").String(),
			Description: parsed.Get("description").String(),
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("storefront error: status %d", resp.StatusCode)
	}

	return nil
}

// statusText reports whether the status field signals an error. The cart
// API uses numeric codes (422) and, on some errors, strings ("bad_request").
// A successful add carries no status at all.
func statusText(status gjson.Result) (string, bool) {
	switch status.Type {
	case gjson.Number:
		return status.Raw, status.Num != 0
	case gjson.String:
		return status.Str, status.Str != ""
	case gjson.True:
		return "true", true
	default:
		return "", false
	}
}
