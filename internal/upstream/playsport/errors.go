package playsport

import (
	"errors"
	"fmt"
	"time"
)

// APIError represents an upstream API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("playsport: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// RateLimitError indicates the upstream quota was exhausted and the
// bounded retry budget did not outlast it.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("playsport: rate limit exceeded, retry after %s", e.RetryAfter)
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// retryable reports whether a status code indicates a transient
// failure worth retrying. Timeouts and 5xx are transient; 429 is
// retried within the budget; any other 4xx is surfaced immediately.
func retryable(statusCode int) bool {
	return statusCode == 429 || statusCode >= 500
}
