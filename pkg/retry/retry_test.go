package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DoWithResult_SucceedsFirstAttempt(t *testing.T) {
	calls := 0

	result, err := DoWithResult(context.Background(), Config{MaxAttempts: 3}, func() (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func Test_DoWithResult_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	cfg := Config{MaxAttempts: 3, Backoff: ConstantBackoff(time.Millisecond)}

	result, err := DoWithResult(context.Background(), cfg, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func Test_DoWithResult_ExhaustsAttempts(t *testing.T) {
	calls := 0
	wantErr := errors.New("always failing")
	cfg := Config{MaxAttempts: 3, Backoff: ConstantBackoff(time.Millisecond)}

	_, err := DoWithResult(context.Background(), cfg, func() (string, error) {
		calls++
		return "", wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls)
}

func Test_DoWithResult_StopsOnNonRetryableError(t *testing.T) {
	calls := 0
	fatal := errors.New("not found")
	cfg := Config{
		MaxAttempts: 5,
		Backoff:     ConstantBackoff(time.Millisecond),
		ShouldRetry: func(err error) bool { return !errors.Is(err, fatal) },
	}

	_, err := DoWithResult(context.Background(), cfg, func() (string, error) {
		calls++
		return "", fatal
	})

	assert.ErrorIs(t, err, fatal, "the non-retryable error must be returned, not swallowed")
	assert.Equal(t, 1, calls)
}

func Test_DoWithResult_HonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 10, Backoff: ConstantBackoff(time.Hour)}

	go cancel()

	_, err := DoWithResult(ctx, cfg, func() (string, error) {
		return "", errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func Test_Do_WrapsDoWithResult(t *testing.T) {
	calls := 0
	cfg := Config{MaxAttempts: 2, Backoff: ConstantBackoff(time.Millisecond)}

	err := Do(context.Background(), cfg, func() error {
		calls++
		return errors.New("failing")
	})

	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func Test_ExponentialBackoff_Doubles(t *testing.T) {
	backoff := ExponentialBackoff(100 * time.Millisecond)

	first := backoff(1)
	second := backoff(2)
	third := backoff(3)

	// jitter adds at most 50% on top of the base delay
	assert.GreaterOrEqual(t, first, 100*time.Millisecond)
	assert.LessOrEqual(t, first, 150*time.Millisecond)
	assert.GreaterOrEqual(t, second, 200*time.Millisecond)
	assert.LessOrEqual(t, second, 300*time.Millisecond)
	assert.GreaterOrEqual(t, third, 400*time.Millisecond)
	assert.LessOrEqual(t, third, 600*time.Millisecond)
}
