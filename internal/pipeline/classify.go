package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/permit-cli/internal/model"
	"github.com/sells-group/permit-cli/internal/resilience"
	"github.com/sells-group/permit-cli/internal/store"
)

// Classify re-classifies every permit in the store. Pages are fetched in key
// order and processed by up to cfg.Workers goroutines. A page whose write
// still fails after retries is logged and counted, and the pass moves on.
func (r *Runner) Classify(ctx context.Context) (*Stats, error) {
	start := time.Now()
	runID, err := r.store.StartRun(ctx, store.RunClassify, r.configHash)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: start classify run")
	}

	stats := &Stats{RunID: runID}
	log := zap.L().With(zap.String("component", "pipeline.classify"), zap.String("run_id", runID))
	log.Info("pipeline: classification started",
		zap.Int("page_size", r.cfg.PageSize),
		zap.Int("workers", r.cfg.Workers),
	)

	var (
		seen, written, failed atomic.Int64
		cursor                model.PermitKey
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	var loopErr error
	for {
		if err := gCtx.Err(); err != nil {
			loopErr = err
			break
		}
		page, err := r.store.NextPage(gCtx, cursor, r.cfg.PageSize)
		if err != nil {
			loopErr = eris.Wrapf(err, "pipeline: fetch page after %s", cursor)
			break
		}
		if len(page) == 0 {
			break
		}
		cursor = page[len(page)-1].Key()
		seen.Add(int64(len(page)))

		g.Go(func() error {
			if err := r.classifyPage(gCtx, runID, page); err != nil {
				failed.Add(1)
				log.Error("pipeline: page write failed, skipping",
					zap.String("first", page[0].Key().String()),
					zap.String("last", page[len(page)-1].Key().String()),
					zap.Int("permits", len(page)),
					zap.String("error_type", resilience.ClassifyError(err)),
					zap.Error(err),
				)
				return nil
			}
			written.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	if loopErr == nil {
		loopErr = ctx.Err()
	}

	stats.PermitsSeen = int(seen.Load())
	stats.PagesWritten = int(written.Load())
	stats.PagesFailed = int(failed.Load())
	stats.Duration = time.Since(start)

	r.finish(ctx, log, stats, loopErr)
	if loopErr != nil {
		return stats, loopErr
	}

	log.Info("pipeline: classification complete",
		zap.Int("permits", stats.PermitsSeen),
		zap.Int("pages_written", stats.PagesWritten),
		zap.Int("pages_failed", stats.PagesFailed),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// classifyPage classifies a page in memory and writes it as one batch.
func (r *Runner) classifyPage(ctx context.Context, runID string, page []model.Permit) error {
	now := r.now().UTC()
	batch := make([]store.Classification, len(page))
	for i := range page {
		c := r.ClassifyPermit(&page[i])
		c.Scope.RunID = runID
		c.Scope.ClassifiedAt = now
		batch[i] = c
	}
	return r.persist(ctx, func(ctx context.Context) error {
		return r.store.SaveClassifications(ctx, batch)
	})
}
