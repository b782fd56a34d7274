package llm

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// RetryConfig defines retry behavior for provider rate limit handling
type RetryConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration // Base wait after a rate limit error
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// Default retry constants
const (
	DefaultMaxRetries        = 3
	DefaultInitialBackoff    = 10 * time.Second
	DefaultMaxBackoff        = 60 * time.Second
	DefaultBackoffMultiplier = 1.5
)

// NewDefaultRetryConfig returns a RetryConfig with the default constants
func NewDefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        DefaultMaxRetries,
		InitialBackoff:    DefaultInitialBackoff,
		MaxBackoff:        DefaultMaxBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
	}
}

// IsRateLimitError checks if an error is a provider rate limit error.
// Matches 429 status codes, RESOURCE_EXHAUSTED and quota errors.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "rate_limit") ||
		strings.Contains(errStr, "quota")
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs" patterns
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay parses the API-suggested retry delay from an error.
// Returns 0 if no delay is found.
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}

	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}

	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}

// CalculateBackoff computes the backoff for an attempt.
// A positive apiDelay replaces InitialBackoff as the base. The result is capped at MaxBackoff.
func (c *RetryConfig) CalculateBackoff(attempt int, apiDelay time.Duration) time.Duration {
	base := c.InitialBackoff
	if apiDelay > 0 {
		base = apiDelay + time.Second
	}

	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= c.BackoffMultiplier
	}

	backoff := time.Duration(float64(base) * multiplier)
	if backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}

	return backoff
}

// backoffFor returns the wait before the next attempt.
// Rate limit errors use the configured backoff, other errors a short linear one.
func (c *RetryConfig) backoffFor(attempt int, err error) time.Duration {
	if IsRateLimitError(err) {
		return c.CalculateBackoff(attempt, ExtractRetryDelay(err))
	}
	backoff := time.Duration(attempt+1) * 2 * time.Second
	if backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}
	return backoff
}

// withRetry calls fn until it succeeds, retries are exhausted or ctx is done
func withRetry[T any](ctx context.Context, logger arbor.ILogger, config *RetryConfig, name string, fn func() (T, error)) (T, error) {
	var result T
	var err error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}
		if attempt == config.MaxRetries {
			break
		}

		backoff := config.backoffFor(attempt, err)
		logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(err).
			Msgf("Retrying %s API call", name)

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return result, err
}
