// Package resilience keeps classification passes writing through store
// outages: transient write failures are retried, and a run of them opens a
// breaker that sheds page writes until the store recovers.
package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// BreakerState is the position of a write breaker.
type BreakerState int

const (
	// BreakerClosed lets every write through.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects writes until the cooldown has elapsed.
	BreakerOpen
	// BreakerHalfOpen lets a single trial write through.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrBreakerOpen is returned for writes shed while the store is considered down.
var ErrBreakerOpen = eris.New("resilience: store write breaker open")

// BreakerConfig controls a write breaker.
type BreakerConfig struct {
	// Threshold is the run of consecutive store-side failures that opens the breaker.
	Threshold int
	// Cooldown is how long the breaker stays open before a trial write.
	Cooldown time.Duration
	// Counts reports whether an error is evidence of a store outage.
	// Defaults to IsTransient, so constraint violations and bad input
	// never open the breaker.
	Counts func(err error) bool
	// OnTransition is called with the breaker lock held.
	OnTransition func(from, to BreakerState)
}

// DefaultBreakerConfig opens after five consecutive outage errors and
// retries the store after thirty seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{Threshold: 5, Cooldown: 30 * time.Second}
}

// BreakerStats is a point-in-time view of a breaker.
type BreakerStats struct {
	State    BreakerState
	Streak   int
	Rejected int64
}

// Breaker sheds store writes during an outage. It is safe for concurrent
// page writers; in half-open state only one trial write runs at a time.
type Breaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu       sync.Mutex
	state    BreakerState
	streak   int
	openedAt time.Time
	trial    bool
	rejected int64
}

// NewBreaker creates a closed breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	def := DefaultBreakerConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.Counts == nil {
		cfg.Counts = IsTransient
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// Execute runs write unless the breaker is shedding load. The write's own
// error is returned unchanged.
func (b *Breaker) Execute(ctx context.Context, write func(ctx context.Context) error) error {
	trial, err := b.admit()
	if err != nil {
		return err
	}
	werr := write(ctx)
	b.settle(trial, werr)
	return werr
}

// State reports the breaker position, treating an expired cooldown as half-open.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerOpen && b.cooled() {
		return BreakerHalfOpen
	}
	return b.state
}

// Stats returns the breaker position, failure streak, and shed write count.
func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerStats{State: b.state, Streak: b.streak, Rejected: b.rejected}
}

func (b *Breaker) cooled() bool {
	return b.now().Sub(b.openedAt) >= b.cfg.Cooldown
}

func (b *Breaker) admit() (trial bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen && b.cooled() {
		b.move(BreakerHalfOpen)
	}
	switch b.state {
	case BreakerOpen:
		b.rejected++
		return false, ErrBreakerOpen
	case BreakerHalfOpen:
		if b.trial {
			b.rejected++
			return false, ErrBreakerOpen
		}
		b.trial = true
		return true, nil
	}
	return false, nil
}

// settle records a write outcome. Errors that do not count still prove the
// store answered, so they end a failure streak like a success does.
func (b *Breaker) settle(trial bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if trial {
		b.trial = false
	}

	if err == nil || !b.cfg.Counts(err) {
		b.streak = 0
		if b.state == BreakerHalfOpen && trial {
			b.move(BreakerClosed)
		}
		return
	}

	b.streak++
	switch {
	case b.state == BreakerHalfOpen && trial:
		b.trip()
	case b.state == BreakerClosed && b.streak >= b.cfg.Threshold:
		b.trip()
	}
}

func (b *Breaker) trip() {
	b.openedAt = b.now()
	b.move(BreakerOpen)
}

func (b *Breaker) move(to BreakerState) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.cfg.OnTransition != nil {
		b.cfg.OnTransition(from, to)
	}
}
