package resilience

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// RetryPolicy controls how a failed store write is retried.
type RetryPolicy struct {
	// Attempts is the total number of tries, the first included.
	Attempts int
	// BaseDelay is the wait ceiling before the first retry; it doubles per retry.
	BaseDelay time.Duration
	// MaxDelay caps the wait ceiling.
	MaxDelay time.Duration
	// Retryable reports whether err is worth another try. Defaults to IsTransient.
	Retryable func(err error) bool
	// OnRetry is called before each wait.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultRetryPolicy makes three tries, waiting up to 200ms then 400ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.Attempts <= 0 {
		p.Attempts = def.Attempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = def.BaseDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = max(def.MaxDelay, p.BaseDelay)
	}
	if p.Retryable == nil {
		p.Retryable = IsTransient
	}
	return p
}

// ceiling is the longest wait before retry number n (1-based).
func (p RetryPolicy) ceiling(n int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < n && d < p.MaxDelay; i++ {
		d *= 2
	}
	return min(d, p.MaxDelay)
}

// wait picks a delay in [ceiling/2, ceiling] so concurrent page writers
// that failed together do not retry together.
func (p RetryPolicy) wait(n int) time.Duration {
	c := p.ceiling(n)
	half := c / 2
	return half + time.Duration(rand.Int64N(int64(c-half)+1))
}

// Do runs write until it succeeds, fails with a non-retryable error, the
// attempts run out, or ctx is done. Exhausting the attempts wraps the last
// error with the attempt count.
func Do(ctx context.Context, p RetryPolicy, write func(ctx context.Context) error) error {
	p = p.withDefaults()

	for attempt := 1; ; attempt++ {
		err := write(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !p.Retryable(err) {
			return err
		}
		if attempt == p.Attempts {
			return eris.Wrapf(err, "resilience: store write failed after %d attempts", attempt)
		}

		d := p.wait(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, d, err)
		}
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
	}
}

// RetryLogger returns an OnRetry callback that logs each retried write.
func RetryLogger(component, operation string) func(int, time.Duration, error) {
	log := zap.L().With(zap.String("component", component), zap.String("operation", operation))
	return func(attempt int, wait time.Duration, err error) {
		log.Warn("resilience: retrying store write",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.String("error_type", ClassifyError(err)),
			zap.Error(err),
		)
	}
}
