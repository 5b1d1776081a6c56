// Package pipeline drives batch classification and propagation over the
// permit store.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/permit-cli/internal/classify"
	"github.com/sells-group/permit-cli/internal/config"
	"github.com/sells-group/permit-cli/internal/model"
	"github.com/sells-group/permit-cli/internal/reference"
	"github.com/sells-group/permit-cli/internal/resilience"
	"github.com/sells-group/permit-cli/internal/scorer"
	"github.com/sells-group/permit-cli/internal/store"
	"github.com/sells-group/permit-cli/internal/trades"
)

// Stats summarizes one batch pass.
type Stats struct {
	RunID         string        `json:"run_id"`
	PermitsSeen   int           `json:"permits_seen"`
	PagesWritten  int           `json:"pages_written"`
	PagesFailed   int           `json:"pages_failed"`
	GroupsSeen    int           `json:"groups_seen,omitempty"`
	ScopesChanged int           `json:"scopes_changed,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// Runner pages permits out of the store, classifies or propagates them, and
// writes the results back.
type Runner struct {
	store      store.Store
	scope      *classify.Classifier
	trades     *trades.Classifier
	cfg        config.PipelineConfig
	retry      resilience.RetryPolicy
	breaker    *resilience.Breaker
	limiter    *rate.Limiter
	now        func() time.Time
	configHash string
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock overrides the time source used for phases, scores, and
// classified_at stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New creates a Runner. A nil scorer uses the default lead-score constants.
func New(st store.Store, t *reference.Tables, sc *scorer.Scorer, cfg config.PipelineConfig, opts ...Option) *Runner {
	if sc == nil {
		sc = scorer.Default()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	limit := rate.Inf
	if cfg.MaxWritesPerSec > 0 {
		limit = rate.Limit(cfg.MaxWritesPerSec)
	}

	retry := resilience.FromRetryConfig(cfg.Retry)
	retry.OnRetry = resilience.RetryLogger("pipeline", "persist")

	breakerCfg := resilience.FromBreakerConfig(cfg.Breaker)
	breakerCfg.OnTransition = func(from, to resilience.BreakerState) {
		zap.L().Warn("pipeline: store write breaker changed state",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	r := &Runner{
		store:   st,
		scope:   classify.New(t),
		cfg:     cfg,
		retry:   retry,
		breaker: resilience.NewBreaker(breakerCfg),
		limiter: rate.NewLimiter(limit, cfg.Workers),
		now:     time.Now,
		configHash: scorer.ConfigHash(struct {
			Pipeline config.PipelineConfig
			Scorer   config.ScorerConfig
		}{cfg, sc.Config()}),
	}
	for _, o := range opts {
		o(r)
	}
	r.trades = trades.New(t, sc, trades.WithClock(r.now))
	return r
}

// ConfigHash identifies the pipeline and scorer settings recorded on each run.
func (r *Runner) ConfigHash() string { return r.configHash }

// ClassifyPermit derives the scope, trades, and products of one permit.
func (r *Runner) ClassifyPermit(p *model.Permit) store.Classification {
	scope := r.scope.Classify(p)
	return store.Classification{
		Scope:    scope,
		Trades:   r.trades.ClassifyTrades(p, scope.ScopeTags),
		Products: r.trades.ClassifyProducts(p, scope.ScopeTags),
	}
}

// persist throttles a write and runs it with retries behind the circuit breaker.
func (r *Runner) persist(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.breaker.Execute(ctx, func(ctx context.Context) error {
		return resilience.Do(ctx, r.retry, fn)
	})
}

// finish records the outcome of a run on the run log.
func (r *Runner) finish(ctx context.Context, log *zap.Logger, stats *Stats, runErr error) {
	if runErr != nil {
		// The pass context may already be cancelled; record the failure regardless.
		if err := r.store.FailRun(context.WithoutCancel(ctx), stats.RunID, runErr.Error()); err != nil {
			log.Error("pipeline: failed to record run failure", zap.Error(err))
		}
		return
	}
	if err := r.store.CompleteRun(ctx, stats.RunID, store.RunResult{
		PermitsSeen: stats.PermitsSeen,
		PagesFailed: stats.PagesFailed,
	}); err != nil {
		log.Error("pipeline: failed to record run completion", zap.Error(err))
	}
}
