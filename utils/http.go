package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"pricewatch/internal/types"
)

// HTTPClient performs outbound GET requests with a per-call timeout and a
// bounded retry loop with fixed backoff between attempts.
type HTTPClient struct {
	client     *http.Client
	config     *types.Config
	logger     types.Logger
	maxRetries int
}

// NewHTTPClient creates a client that retries config.MaxRetries times.
func NewHTTPClient(config *types.Config, logger types.Logger) *HTTPClient {
	return newHTTPClient(config, logger, config.MaxRetries)
}

// NewSingleShotClient creates a client that never retries. Used for
// per-item fetches that tolerate failure locally instead of retrying.
func NewSingleShotClient(config *types.Config, logger types.Logger) *HTTPClient {
	return newHTTPClient(config, logger, 0)
}

func newHTTPClient(config *types.Config, logger types.Logger, maxRetries int) *HTTPClient {
	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &HTTPClient{
		client:     client,
		config:     config,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Get performs a GET request, retrying failed attempts with a fixed
// backoff. Network errors, non-2xx statuses, and body read errors all
// count as failures; the last one is returned once attempts run out.
func (h *HTTPClient) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(h.config.RetryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		// Default user agents are frequently blocked or served stripped
		// markup, so every request goes out looking like a desktop browser.
		req.Header.Set("User-Agent", h.config.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.5")
		req.Header.Set("Connection", "keep-alive")

		h.logger.Debugf("Making request to %s (attempt %d/%d)", url, attempt+1, h.maxRetries+1)

		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			h.logger.Warnf("Request failed (attempt %d): %v", attempt+1, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			h.logger.Warnf("Unexpected status code %d (attempt %d)", resp.StatusCode, attempt+1)
			continue
		}

		if readErr != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", readErr)
			h.logger.Warnf("Failed to read response body (attempt %d): %v", attempt+1, readErr)
			continue
		}

		h.logger.Debugf("Successfully retrieved %d bytes from %s", len(body), url)
		return body, nil
	}

	return nil, fmt.Errorf("all retry attempts failed: %w", lastErr)
}
