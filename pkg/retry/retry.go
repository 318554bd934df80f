// pkg/retry/retry.go - retries actions with exponential backoff.

package retry

import (
	"errors"
	"fmt"
	"time"

	"github.com/windowsadmins/cimianboot/pkg/logging"
)

// NonRetryableError marks an error that should end the retry loop at once.
type NonRetryableError interface {
	error
	Unwrap() error
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so Retry returns it without another attempt.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryConfig defines the configuration for retry attempts
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	Multiplier      float64
}

// DefaultConfig is used when connecting to a local status listener.
var DefaultConfig = RetryConfig{MaxRetries: 3, InitialInterval: 250 * time.Millisecond, Multiplier: 2}

var sleep = time.Sleep

// Retry calls action until it succeeds, returns a NonRetryableError, or
// MaxRetries attempts have failed. The last error is wrapped in the result.
func Retry(config RetryConfig, action func() error) error {
	interval := config.InitialInterval
	var lastErr error

	for attempt := 1; attempt <= config.MaxRetries; attempt++ {
		err := action()
		if err == nil {
			return nil
		}
		lastErr = err

		var nonRetryableErr NonRetryableError
		if errors.As(err, &nonRetryableErr) {
			logging.LogStructured(logging.LevelWarn,
				fmt.Sprintf("Non-retryable error encountered: %s", err.Error()),
				map[string]interface{}{
					"level":         "RETRY",
					"attempt":       attempt,
					"non_retryable": true,
				})
			return nonRetryableErr.Unwrap()
		}

		if attempt == config.MaxRetries {
			logging.LogStructured(logging.LevelWarn,
				fmt.Sprintf("Attempt %d/%d failed: %s. No more retries.",
					attempt, config.MaxRetries, err.Error()),
				map[string]interface{}{
					"level":         "RETRY",
					"attempt":       attempt,
					"max_attempts":  config.MaxRetries,
					"final_failure": true,
				})
			break
		}

		logging.LogStructured(logging.LevelWarn,
			fmt.Sprintf("Attempt %d/%d failed: %s. Retrying in %s...",
				attempt, config.MaxRetries, err.Error(), interval.String()),
			map[string]interface{}{
				"level":        "RETRY",
				"attempt":      attempt,
				"max_attempts": config.MaxRetries,
				"retry_delay":  interval.String(),
			})

		sleep(interval)
		interval = time.Duration(float64(interval) * config.Multiplier)
	}

	if lastErr == nil {
		return fmt.Errorf("action failed after %d attempts", config.MaxRetries)
	}
	return fmt.Errorf("action failed after %d attempts: %w", config.MaxRetries, lastErr)
}
