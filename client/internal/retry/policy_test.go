package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	t.Parallel()
	var calls int32
	err := Do(context.Background(), Policy{MaxAttempts: 3, NewBackOff: Constant(time.Millisecond)}, func(context.Context, int) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()
	var waits []time.Duration
	p := Policy{
		MaxAttempts: 3,
		NewBackOff:  Exponential(5*time.Millisecond, time.Second),
		OnRetry:     func(_ int, _ error, wait time.Duration) { waits = append(waits, wait) },
	}
	var seen []int
	err := Do(context.Background(), p, func(_ context.Context, attempt int) error {
		seen = append(seen, attempt)
		if attempt < 3 {
			return errBoom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 10 * time.Millisecond}, waits)
}

func TestDo_ReturnsLastError(t *testing.T) {
	t.Parallel()
	errs := []error{errors.New("first"), errors.New("second"), errors.New("third")}
	err := Do(context.Background(), Policy{MaxAttempts: 3, NewBackOff: Constant(time.Millisecond)}, func(_ context.Context, attempt int) error {
		return errs[attempt-1]
	})
	assert.Same(t, errs[2], err)
}

func TestDo_NonRetryableStopsWithoutWaiting(t *testing.T) {
	t.Parallel()
	var retried bool
	p := Policy{
		MaxAttempts: 3,
		NewBackOff:  Constant(time.Hour),
		Retryable:   func(err error) bool { return !errors.Is(err, errBoom) },
		OnRetry:     func(int, error, time.Duration) { retried = true },
	}
	var calls int
	start := time.Now()
	err := Do(context.Background(), p, func(context.Context, int) error {
		calls++
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, calls)
	assert.False(t, retried)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDo_NoWaitAfterFinalAttempt(t *testing.T) {
	t.Parallel()
	var waits int
	p := Policy{
		MaxAttempts: 2,
		NewBackOff:  Constant(time.Millisecond),
		OnRetry:     func(int, error, time.Duration) { waits++ },
	}
	_ = Do(context.Background(), p, func(context.Context, int) error { return errBoom })
	assert.Equal(t, 1, waits)
}

func TestDo_ContextCanceledDuringWait(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{
		MaxAttempts: 3,
		NewBackOff:  Constant(time.Hour),
		OnRetry:     func(int, error, time.Duration) { cancel() },
	}
	var calls int
	err := Do(ctx, p, func(context.Context, int) error {
		calls++
		return errBoom
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_FreshScheduleForEveryCall(t *testing.T) {
	t.Parallel()
	p := Policy{MaxAttempts: 2, NewBackOff: Exponential(2*time.Millisecond, time.Second)}
	for i := 0; i < 2; i++ {
		var got time.Duration
		p.OnRetry = func(_ int, _ error, wait time.Duration) { got = wait }
		_ = Do(context.Background(), p, func(context.Context, int) error { return errBoom })
		assert.Equal(t, 2*time.Millisecond, got, "call %d", i)
	}
}

func TestDefaultPolicy(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy()
	assert.Equal(t, 3, p.MaxAttempts)
	b := p.NewBackOff()
	assert.Equal(t, time.Second, b.NextBackOff())
	assert.Equal(t, 2*time.Second, b.NextBackOff())
	assert.Equal(t, 4*time.Second, b.NextBackOff())
}

func TestPolicy_ZeroValueDefaults(t *testing.T) {
	t.Parallel()
	p := Policy{}.withDefaults()
	assert.Equal(t, DefaultMaxAttempts, p.MaxAttempts)
	require.NotNil(t, p.NewBackOff)
}
