// Package store persists permits, their classifications, and the run log.
package store

import (
	"context"
	"time"

	"github.com/sells-group/permit-cli/internal/model"
	"github.com/sells-group/permit-cli/internal/propagate"
)

// RunKind names the batch pass a run row records.
type RunKind string

// Run kinds.
const (
	RunClassify  RunKind = "classify"
	RunPropagate RunKind = "propagate"
)

// RunStatus is the lifecycle state of a run row.
type RunStatus string

// Run statuses.
const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is one row of the classification run log.
type Run struct {
	ID          string     `json:"id"`
	Kind        RunKind    `json:"kind"`
	Status      RunStatus  `json:"status"`
	ConfigHash  string     `json:"config_hash"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	PermitsSeen int        `json:"permits_seen"`
	PagesFailed int        `json:"pages_failed"`
	Error       string     `json:"error,omitempty"`
}

// RunResult carries the counters written when a run completes.
type RunResult struct {
	PermitsSeen int
	PagesFailed int
}

// Classification is everything one classification pass derives for a permit.
// Trades and Products replace the permit's previous rows entirely.
type Classification struct {
	Scope    model.ScopeResult
	Trades   []model.TradeMatch
	Products []model.ProductMatch
}

// BaseGroup is the set of permits sharing a base identifier. Base is the
// cursor for the next NextBaseGroups call.
type BaseGroup struct {
	Base    string
	Permits []model.Permit
}

// LeadFilter selects trade matches for export.
type LeadFilter struct {
	MinScore   int
	TradeSlug  string
	ActiveOnly bool
	Limit      int
}

// Lead is a trade match joined to the permit it was derived from.
type Lead struct {
	Permit model.Permit
	Match  model.TradeMatch
}

// Store defines the persistence interface for the classification pipeline.
type Store interface {
	// Permits
	NextPage(ctx context.Context, after model.PermitKey, limit int) ([]model.Permit, error)
	NextBaseGroups(ctx context.Context, after string, limit int) ([]BaseGroup, error)
	ListPermitsByBase(ctx context.Context, base string) ([]model.Permit, error)
	UpsertPermits(ctx context.Context, permits []model.Permit) error

	// Results
	SaveClassifications(ctx context.Context, cs []Classification) error
	SaveScopes(ctx context.Context, scopes []model.ScopeResult) error
	ListLeads(ctx context.Context, filter LeadFilter) ([]Lead, error)

	// Run log
	StartRun(ctx context.Context, kind RunKind, configHash string) (string, error)
	CompleteRun(ctx context.Context, runID string, result RunResult) error
	FailRun(ctx context.Context, runID string, errMsg string) error
	GetRun(ctx context.Context, runID string) (*Run, error)

	// Lifecycle
	SeedCatalog(ctx context.Context, trades []model.Trade, products []model.ProductGroup) error
	Migrate(ctx context.Context) error
	Close() error
}

// groupByBase cuts permits ordered by base identifier into groups.
// Permits without a base identifier are dropped.
func groupByBase(permits []model.Permit) []BaseGroup {
	var groups []BaseGroup
	for _, p := range permits {
		base := propagate.BaseID(p.PermitNum)
		if base == "" {
			continue
		}
		if n := len(groups); n == 0 || groups[n-1].Base != base {
			groups = append(groups, BaseGroup{Base: base})
		}
		g := &groups[len(groups)-1]
		g.Permits = append(g.Permits, p)
	}
	return groups
}

const defaultLeadLimit = 10000
