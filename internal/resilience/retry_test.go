package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/permit-cli/internal/config"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{Attempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

// scripted returns a write that fails with errs in order, then succeeds.
func scripted(errs []error, calls *int) func(context.Context) error {
	return func(context.Context) error {
		i := *calls
		*calls++
		if i < len(errs) {
			return errs[i]
		}
		return nil
	}
}

func TestDo_StoreErrors(t *testing.T) {
	busy := sqliteBusyErr(t)

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
		exhausted bool
	}{
		{"first try", nil, 1, nil, false},
		{"deadlock then success", []error{pgWriteErr("40P01")}, 2, nil, false},
		{"serialization twice then success", []error{pgWriteErr("40001"), pgWriteErr("40001")}, 3, nil, false},
		{"sqlite busy then success", []error{busy}, 2, nil, false},
		{"busy until exhausted", []error{busy, busy, busy, busy}, 3, busy, true},
		{"unique violation not retried", []error{pgWriteErr("23505")}, 1, nil, false},
		{"undefined table not retried", []error{pgWriteErr("42P01")}, 1, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			err := Do(context.Background(), fastPolicy(3), scripted(tt.errs, &calls))
			assert.Equal(t, tt.wantCalls, calls)

			switch {
			case tt.exhausted:
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "after 3 attempts")
				assert.True(t, IsTransient(err))
			case len(tt.errs) >= tt.wantCalls:
				assert.Equal(t, tt.errs[tt.wantCalls-1], err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestDo_CancelStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int
	p := fastPolicy(5)
	p.BaseDelay = time.Hour
	p.MaxDelay = time.Hour
	p.OnRetry = func(int, time.Duration, error) { cancel() }

	err := Do(ctx, p, scripted([]error{pgWriteErr("08006"), pgWriteErr("08006")}, &calls))
	assert.Equal(t, 1, calls)
	assert.ErrorContains(t, err, "08006")
}

func TestDo_CancelledWriteNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	err := Do(ctx, fastPolicy(3), func(context.Context) error {
		calls++
		cancel()
		return pgWriteErr("57014")
	})
	assert.Equal(t, 1, calls)
	assert.Error(t, err)
}

func TestDo_OnRetryReportsAttemptAndWait(t *testing.T) {
	type retry struct {
		attempt int
		wait    time.Duration
	}
	var seen []retry
	p := fastPolicy(3)
	p.OnRetry = func(attempt int, wait time.Duration, err error) {
		assert.True(t, IsTransient(err))
		seen = append(seen, retry{attempt, wait})
	}

	var calls int
	_ = Do(context.Background(), p, scripted([]error{pgWriteErr("40001"), pgWriteErr("40001"), pgWriteErr("40001")}, &calls))

	require.Len(t, seen, 2)
	assert.Equal(t, 1, seen[0].attempt)
	assert.Equal(t, 2, seen[1].attempt)
	for _, r := range seen {
		assert.LessOrEqual(t, r.wait, 2*time.Millisecond)
	}
}

func TestDo_CustomRetryable(t *testing.T) {
	p := fastPolicy(2)
	p.Retryable = func(err error) bool { return errors.Is(err, errPageConflict) }

	var calls int
	err := Do(context.Background(), p, scripted([]error{errPageConflict}, &calls))
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = Do(context.Background(), p, scripted([]error{pgWriteErr("40001")}, &calls))
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

var errPageConflict = errors.New("page rewritten by another run")

func TestRetryPolicy_Wait(t *testing.T) {
	p := RetryPolicy{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}.withDefaults()

	tests := []struct {
		retry int
		ceil  time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{40, time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ceil, p.ceiling(tt.retry), "retry %d", tt.retry)
		for range 20 {
			w := p.wait(tt.retry)
			assert.GreaterOrEqual(t, w, tt.ceil/2)
			assert.LessOrEqual(t, w, tt.ceil)
		}
	}
}

func TestRetryPolicy_Defaults(t *testing.T) {
	p := RetryPolicy{BaseDelay: 10 * time.Second}.withDefaults()
	assert.Equal(t, 3, p.Attempts)
	assert.Equal(t, 10*time.Second, p.MaxDelay)
	assert.NotNil(t, p.Retryable)
}

func TestFromRetryConfig(t *testing.T) {
	tests := []struct {
		name string
		in   config.RetryConfig
		want RetryPolicy
	}{
		{"defaults", config.RetryConfig{}, DefaultRetryPolicy()},
		{"overrides", config.RetryConfig{MaxAttempts: 5, InitialBackoffMs: 50, MaxBackoffMs: 1000},
			RetryPolicy{Attempts: 5, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRetryConfig(tt.in)
			assert.Equal(t, tt.want.Attempts, got.Attempts)
			assert.Equal(t, tt.want.BaseDelay, got.BaseDelay)
			assert.Equal(t, tt.want.MaxDelay, got.MaxDelay)
		})
	}
}

func TestRetryLogger(t *testing.T) {
	log := RetryLogger("pipeline", "persist")
	assert.NotPanics(t, func() { log(1, 5*time.Millisecond, pgWriteErr("40P01")) })
}
