// Package playsport provides the resilient HTTP client for the live
// sports-data API. All endpoints are read-only GETs with cursor-based
// pagination; the client follows pages transparently, retries transient
// failures with exponential backoff, and never retries indefinitely.
package playsport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
	"github.com/pavilion-labs/clubby/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.SportsDataClient = (*Client)(nil)

const (
	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries; it doubles on
	// each attempt.
	RetryDelay = 500 * time.Millisecond

	// ProactiveRate is the proactive throttle in requests per second.
	ProactiveRate = 5

	// HeaderAPIKey carries the API key.
	HeaderAPIKey = "x-api-key"

	// HeaderTenant carries the organisation tenant.
	HeaderTenant = "x-phq-tenant"
)

// Config holds configuration for the upstream client.
type Config struct {
	// BaseURL is the API root (required), e.g. https://api.playhq.com/v1.
	BaseURL string

	// APIKey authenticates requests (required).
	APIKey string

	// Tenant selects the sport tenant, e.g. "ca" for cricket.
	Tenant string

	// Timeout is the per-request timeout (default: 10s).
	Timeout time.Duration

	// MaxRetries bounds retry attempts (default: 3).
	MaxRetries int

	// RetryDelay is the initial backoff delay (default: 500ms).
	RetryDelay time.Duration
}

// Client is the upstream API client.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	tenant     string
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates an upstream client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("playsport: base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("playsport: API key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = MaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = RetryDelay
	}

	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		tenant:     cfg.Tenant,
		limiter:    rate.NewLimiter(rate.Limit(ProactiveRate), 1),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// page is the upstream response envelope for list endpoints.
type page struct {
	Data     json.RawMessage `json:"data"`
	Metadata struct {
		HasMore    bool   `json:"hasMore"`
		NextCursor string `json:"nextCursor"`
	} `json:"metadata"`
}

// get performs one GET with throttling and bounded retry, decoding the
// response body into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	delay := c.retryDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Debug("Retrying %s (attempt %d/%d) after %s", path, attempt, c.maxRetries, delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		body, status, err := c.do(ctx, reqURL)
		if err != nil {
			// Network-level failure (includes client timeouts): transient.
			lastErr = err
			continue
		}

		if status == http.StatusOK {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}

		apiErr := &APIError{StatusCode: status, Message: string(body), URL: reqURL}
		if !retryable(status) {
			return apiErr
		}
		if status == http.StatusTooManyRequests {
			lastErr = &RateLimitError{RetryAfter: delay}
			continue
		}
		lastErr = apiErr
	}

	return fmt.Errorf("playsport: retries exhausted for %s: %w", path, lastErr)
}

// do executes a single request and returns the body and status code.
func (c *Client) do(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(HeaderAPIKey, c.apiKey)
	if c.tenant != "" {
		req.Header.Set(HeaderTenant, c.tenant)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// listAll follows cursor pagination until the upstream signals no more
// pages, accumulating decoded items.
func listAll[T any](ctx context.Context, c *Client, path string, params url.Values) ([]T, error) {
	var all []T
	cursor := ""

	for {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		pageParams := url.Values{}
		for k, v := range params {
			pageParams[k] = v
		}
		if cursor != "" {
			pageParams.Set("cursor", cursor)
		}

		var pg page
		if err := c.get(ctx, path, pageParams, &pg); err != nil {
			return nil, err
		}

		var items []T
		if len(pg.Data) > 0 {
			if err := json.Unmarshal(pg.Data, &items); err != nil {
				return nil, fmt.Errorf("decode page data: %w", err)
			}
		}
		all = append(all, items...)

		if !pg.Metadata.HasMore || pg.Metadata.NextCursor == "" {
			return all, nil
		}
		cursor = pg.Metadata.NextCursor
	}
}
