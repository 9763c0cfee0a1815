package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesRetryableErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("transient"))
		}
		return nil
	}, WithMaxAttempts(5), WithInitialDelay(time.Millisecond))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	sentinel := errors.New("rejected")
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(sentinel)
	}, WithMaxAttempts(5), WithInitialDelay(time.Millisecond))

	assert.Equal(t, sentinel, err)
	assert.Equal(t, 1, calls)
}

func TestDo_NonRetryableErrorReturnedImmediately(t *testing.T) {
	sentinel := errors.New("plain failure")
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return sentinel
	}, WithMaxAttempts(5), WithInitialDelay(time.Millisecond))

	assert.Equal(t, sentinel, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	sentinel := errors.New("still down")
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Retryable(sentinel)
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond))

	assert.Equal(t, sentinel, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return Retryable(errors.New("transient"))
	}, WithMaxAttempts(10), WithInitialDelay(50*time.Millisecond))

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetryIfOverride(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("plain but retried")
		}
		return nil
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond),
		WithRetryIf(func(err error) bool { return true }))

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_OnRetryCallback(t *testing.T) {
	var attempts []int
	_ = Do(context.Background(), func(ctx context.Context) error {
		return Retryable(errors.New("transient"))
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond),
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			attempts = append(attempts, attempt)
		}))

	assert.Equal(t, []int{1, 2}, attempts)
}
