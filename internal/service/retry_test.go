package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_SucceedsFirstTry(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_ExhaustsAttempts(t *testing.T) {
	p := RetryPolicy{
		MaxAttempts: 3,
		Delay:       LinearBackoff(time.Millisecond),
	}
	calls := 0
	boom := errors.New("boom")
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_RecoverOnSecondAttempt(t *testing.T) {
	p := RetryPolicy{
		MaxAttempts: 3,
		Delay:       LinearBackoff(time.Millisecond),
	}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryPolicy_NonRetryableStopsEarly(t *testing.T) {
	fatal := errors.New("fatal")
	p := RetryPolicy{
		MaxAttempts: 3,
		Retryable:   func(err error) bool { return !errors.Is(err, fatal) },
	}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fatal
	})
	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_AttemptTimeout(t *testing.T) {
	p := RetryPolicy{
		MaxAttempts:    2,
		AttemptTimeout: 10 * time.Millisecond,
	}
	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return ctx.Err()
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryPolicy_ParentCancellationWins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{
		MaxAttempts: 5,
		Delay:       LinearBackoff(50 * time.Millisecond),
	}
	calls := 0
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestLinearBackoff(t *testing.T) {
	delay := LinearBackoff(2 * time.Second)
	assert.Equal(t, 2*time.Second, delay(1))
	assert.Equal(t, 4*time.Second, delay(2))
	assert.Equal(t, 6*time.Second, delay(3))
}
