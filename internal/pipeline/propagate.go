package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/permit-cli/internal/model"
	"github.com/sells-group/permit-cli/internal/propagate"
	"github.com/sells-group/permit-cli/internal/resilience"
	"github.com/sells-group/permit-cli/internal/store"
)

// Propagate copies each building permit's scope onto its companion permits.
// Base groups are fetched cfg.PageSize at a time; pages run concurrently and
// each writes its changed scopes in one call. Groups never share permits, so
// pages cannot conflict.
func (r *Runner) Propagate(ctx context.Context) (*Stats, error) {
	start := time.Now()
	runID, err := r.store.StartRun(ctx, store.RunPropagate, r.configHash)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: start propagate run")
	}

	stats := &Stats{RunID: runID}
	log := zap.L().With(zap.String("component", "pipeline.propagate"), zap.String("run_id", runID))
	log.Info("pipeline: propagation started")

	var (
		seen, groups, changed, written, failed atomic.Int64
		cursor                                 string
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	dispatch := func(b [][]model.Permit) {
		g.Go(func() error {
			n, err := r.propagateBatch(gCtx, runID, b)
			if err != nil {
				failed.Add(1)
				log.Error("pipeline: propagated scope write failed, skipping",
					zap.Int("groups", len(b)),
					zap.String("error_type", resilience.ClassifyError(err)),
					zap.Error(err),
				)
				return nil
			}
			changed.Add(int64(n))
			if n > 0 {
				written.Add(1)
			}
			return nil
		})
	}

	var loopErr error
	for {
		if err := gCtx.Err(); err != nil {
			loopErr = err
			break
		}
		page, err := r.store.NextBaseGroups(gCtx, cursor, r.cfg.PageSize)
		if err != nil {
			loopErr = eris.Wrapf(err, "pipeline: fetch base groups after %q", cursor)
			break
		}
		if len(page) == 0 {
			break
		}
		cursor = page[len(page)-1].Base

		batch := make([][]model.Permit, len(page))
		for i, grp := range page {
			batch[i] = grp.Permits
			seen.Add(int64(len(grp.Permits)))
		}
		groups.Add(int64(len(page)))
		dispatch(batch)
	}
	_ = g.Wait()
	if loopErr == nil {
		loopErr = ctx.Err()
	}

	stats.PermitsSeen = int(seen.Load())
	stats.GroupsSeen = int(groups.Load())
	stats.ScopesChanged = int(changed.Load())
	stats.PagesWritten = int(written.Load())
	stats.PagesFailed = int(failed.Load())
	stats.Duration = time.Since(start)

	r.finish(ctx, log, stats, loopErr)
	if loopErr != nil {
		return stats, loopErr
	}

	log.Info("pipeline: propagation complete",
		zap.Int("groups", stats.GroupsSeen),
		zap.Int("permits", stats.PermitsSeen),
		zap.Int("scopes_changed", stats.ScopesChanged),
		zap.Int("batches_failed", stats.PagesFailed),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// propagateBatch runs the propagation engine over each group and writes the
// changed scopes. It returns the number of scopes written.
func (r *Runner) propagateBatch(ctx context.Context, runID string, groups [][]model.Permit) (int, error) {
	now := r.now().UTC()

	var results []model.ScopeResult
	for _, permits := range groups {
		group := make([]*model.Permit, len(permits))
		for i := range permits {
			group[i] = &permits[i]
		}
		for _, res := range propagate.Propagate(group) {
			res.RunID = runID
			res.ClassifiedAt = now
			results = append(results, res)
		}
	}
	if len(results) == 0 {
		return 0, nil
	}

	err := r.persist(ctx, func(ctx context.Context) error {
		return r.store.SaveScopes(ctx, results)
	})
	if err != nil {
		return 0, err
	}
	return len(results), nil
}
