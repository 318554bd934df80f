package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var waits []time.Duration
	sleep = func(d time.Duration) { waits = append(waits, d) }
	t.Cleanup(func() { sleep = time.Sleep })
	return &waits
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	waits := noSleep(t)
	calls := 0
	err := Retry(RetryConfig{MaxRetries: 4, InitialInterval: 10 * time.Millisecond, Multiplier: 2}, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *waits)
}

func TestRetryGivesUp(t *testing.T) {
	waits := noSleep(t)
	cause := errors.New("connection refused")
	calls := 0
	err := Retry(RetryConfig{MaxRetries: 3, InitialInterval: time.Millisecond, Multiplier: 2}, func() error {
		calls++
		return cause
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, calls)
	assert.Len(t, *waits, 2)
}

func TestRetryStopsOnPermanent(t *testing.T) {
	noSleep(t)
	cause := errors.New("invalid address")
	calls := 0
	err := Retry(DefaultConfig, func() error {
		calls++
		return Permanent(cause)
	})
	assert.Equal(t, cause, err)
	assert.Equal(t, 1, calls)
}

func TestPermanentNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}
