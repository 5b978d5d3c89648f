// Package retry provides bounded exponential backoff around external
// calls that can be rate limited. It is generic: any call returning an
// error can be wrapped, not just answer generation.
package retry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
	"github.com/oshiete-dev/oshiete-cli/internal/logger"
)

// Default retry constants. The base delay matches the hosted endpoint's
// observed quota window of roughly one minute.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 60 * time.Second
	DefaultMultiplier = 2.0
)

// Config defines retry behaviour for rate-limited calls.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration

	// Multiplier is applied to the delay on each further retry.
	Multiplier float64

	// MaxDelay caps the wait between retries. Zero means uncapped.
	MaxDelay time.Duration
}

// DefaultConfig returns a Config with the default backoff schedule
// (3 retries waiting 60s, 120s, 240s).
func DefaultConfig() Config {
	return Config{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		Multiplier: DefaultMultiplier,
	}
}

// Backoff computes the wait before retry number attempt (0-based).
func (c Config) Backoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= c.Multiplier
	}
	backoff := time.Duration(float64(c.BaseDelay) * multiplier)
	if c.MaxDelay > 0 && backoff > c.MaxDelay {
		backoff = c.MaxDelay
	}
	return backoff
}

// IsRateLimit reports whether an error looks like a rate-limit response.
// Matches the domain sentinel as well as raw 429/quota error strings from
// clients that do not classify.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "quota")
}

// Do runs fn, retrying on rate-limit errors with exponential backoff.
// Non-rate-limit errors return immediately. Context cancellation aborts
// the wait. When retries are exhausted the last error is returned.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := cfg.Backoff(attempt - 1)
			logger.Warn("rate limited, retrying after %s (attempt %d/%d)", wait, attempt, cfg.MaxRetries)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsRateLimit(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// DoValue runs fn with the same retry semantics as Do and returns its value.
func DoValue[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func(ctx context.Context) error {
		var fnErr error
		result, fnErr = fn(ctx)
		return fnErr
	})
	return result, err
}
