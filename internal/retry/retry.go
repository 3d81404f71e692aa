// Package retry provides a retry mechanism for completion-service calls
// with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config represents retry configuration.
type Config struct {
	MaxAttempts    int           // Maximum number of attempts (default: 3)
	InitialBackoff time.Duration // Initial backoff duration (default: 1s)
	MaxBackoff     time.Duration // Maximum backoff duration (default: 10s)
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 1 * time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Second
	}
	return c
}

// DoWithRetry executes the given function with retry logic.
// It returns the result of the function or the last error if all attempts
// fail. Context cancellation is checked between attempts.
func DoWithRetry(ctx context.Context, fn func() (string, error), cfg Config) (string, error) {
	cfg = cfg.withDefaults()

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return "", err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-time.After(backoffFor(attempt, cfg)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("all %d attempts failed: %w", cfg.MaxAttempts, lastErr)
}

// nonRetryablePatterns are error substrings that make retrying pointless:
// bad requests, auth failures, missing resources, explicit cancellation.
var nonRetryablePatterns = []string{
	"status=400",
	"status=401",
	"status=403",
	"status=404",
	"context canceled",
}

// retryablePatterns are transient conditions worth another attempt.
var retryablePatterns = []string{
	"context deadline exceeded",
	"deadline exceeded",
	"timeout",
	"connection refused",
	"connection reset",
	"temporary",
	"status=429",
	"status=500",
	"status=502",
	"status=503",
	"rate limit",
}

// IsRetryable classifies an error by its message.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	errLower := strings.ToLower(err.Error())
	for _, pattern := range nonRetryablePatterns {
		if strings.Contains(errLower, pattern) {
			return false
		}
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(errLower, pattern) {
			return true
		}
	}

	// Unknown errors are retried rather than dropped outright.
	return true
}

// backoffFor computes the exponential backoff for the given attempt.
func backoffFor(attempt int, cfg Config) time.Duration {
	backoff := cfg.InitialBackoff << uint(attempt)
	if backoff > cfg.MaxBackoff || backoff <= 0 {
		backoff = cfg.MaxBackoff
	}
	return backoff
}
