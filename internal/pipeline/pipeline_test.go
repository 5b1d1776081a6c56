package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/permit-cli/internal/config"
	"github.com/sells-group/permit-cli/internal/model"
	"github.com/sells-group/permit-cli/internal/reference"
	"github.com/sells-group/permit-cli/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testConfig() config.PipelineConfig {
	return config.PipelineConfig{
		PageSize: 1,
		Workers:  2,
		Retry:    config.RetryConfig{MaxAttempts: 2, InitialBackoffMs: 1, MaxBackoffMs: 2},
		Breaker:  config.BreakerConfig{FailureThreshold: 100, ResetTimeoutSecs: 1},
	}
}

func newTestRunner(t *testing.T, st store.Store, cfg config.PipelineConfig) *Runner {
	t.Helper()
	return New(st, reference.Default(), nil, cfg, WithClock(func() time.Time { return fixedNow }))
}

func newSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func samplePermits() []model.Permit {
	issued := fixedNow.AddDate(0, -2, 0)
	cost := 850000.0
	return []model.Permit{
		{
			PermitNum: "24 555555 BLD 00", RevisionNum: "00",
			PermitType: "New Houses", Work: "New Building",
			Description:   "Proposed new detached dwelling with attached garage",
			StructureType: "SFD - Detached", ProposedUse: "Single Family Dwelling",
			Status: "Permit Issued", IssuedDate: &issued, EstConstCost: &cost, Storeys: 2,
		},
		{
			PermitNum: "24 555555 PLB 00", RevisionNum: "00",
			PermitType: "Plumbing(PS)", Work: "New Building",
			Description: "Plumbing for new dwelling",
			Status:      "Permit Issued", IssuedDate: &issued,
		},
		{
			PermitNum: "24 666666 BLD 00", RevisionNum: "00",
			PermitType: "Small Residential Projects", Work: "Interior Alterations",
			Description:   "Interior alterations to basement, new washroom",
			StructureType: "SFD - Semi-Detached", ProposedUse: "Single Family Dwelling",
			Status: "Under Review",
		},
	}
}

func TestRunner_ClassifyThenPropagate(t *testing.T) {
	st := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, st.UpsertPermits(ctx, samplePermits()))

	r := newTestRunner(t, st, testConfig())

	stats, err := r.Classify(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.PermitsSeen)
	assert.Equal(t, 3, stats.PagesWritten)
	assert.Equal(t, 0, stats.PagesFailed)

	run, err := st.GetRun(ctx, stats.RunID)
	require.NoError(t, err)
	assert.Equal(t, store.RunCompleted, run.Status)
	assert.Equal(t, 3, run.PermitsSeen)
	assert.Equal(t, r.ConfigHash(), run.ConfigHash)

	leads, err := st.ListLeads(ctx, store.LeadFilter{TradeSlug: "plumbing"})
	require.NoError(t, err)
	assert.NotEmpty(t, leads)
	for _, l := range leads {
		assert.GreaterOrEqual(t, l.Match.LeadScore, 0)
		assert.LessOrEqual(t, l.Match.LeadScore, 100)
	}

	plbLeads, err := st.ListLeads(ctx, store.LeadFilter{})
	require.NoError(t, err)
	for _, l := range plbLeads {
		if l.Permit.PermitNum == "24 555555 PLB 00" {
			assert.Equal(t, "plumbing", l.Match.TradeSlug, "narrow-scope permit only carries plumbing")
		}
	}

	pstats, err := r.Propagate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pstats.GroupsSeen)
	assert.Equal(t, 3, pstats.PermitsSeen)
	assert.Equal(t, 1, pstats.ScopesChanged)

	page, err := st.NextPage(ctx, model.PermitKey{}, 10)
	require.NoError(t, err)
	require.Len(t, page, 3)
	bld, plb := page[0], page[1]
	require.Equal(t, "24 555555 BLD 00", bld.PermitNum)
	require.Equal(t, "24 555555 PLB 00", plb.PermitNum)
	assert.Equal(t, bld.ScopeTags, plb.ScopeTags)
	assert.Equal(t, bld.ProjectType, plb.ProjectType)

	again, err := r.Propagate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.ScopesChanged, "propagation is idempotent")
}

func TestRunner_ClassifyIsRepeatable(t *testing.T) {
	st := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, st.UpsertPermits(ctx, samplePermits()))
	r := newTestRunner(t, st, testConfig())

	_, err := r.Classify(ctx)
	require.NoError(t, err)
	first, err := st.ListLeads(ctx, store.LeadFilter{})
	require.NoError(t, err)

	_, err = r.Classify(ctx)
	require.NoError(t, err)
	second, err := st.ListLeads(ctx, store.LeadFilter{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunner_ClassifyPermit(t *testing.T) {
	r := newTestRunner(t, newSQLiteStore(t), testConfig())
	p := samplePermits()[0]

	c := r.ClassifyPermit(&p)
	assert.Equal(t, p.Key(), c.Scope.Key)
	assert.Equal(t, model.ProjectNewBuild, c.Scope.ProjectType)
	assert.NotEmpty(t, c.Scope.ScopeTags)
	assert.NotEmpty(t, c.Trades)
	for _, m := range c.Trades {
		assert.Equal(t, p.Key(), m.Key)
	}
}

func TestRunner_Classify_PageWriteFailureAdvances(t *testing.T) {
	ms := new(mockStore)
	cfg := testConfig()
	permits := samplePermits()

	ms.On("StartRun", mock.Anything, store.RunClassify, mock.Anything).Return("run-1", nil)
	ms.On("NextPage", mock.Anything, model.PermitKey{}, 1).Return(permits[:1], nil).Once()
	ms.On("NextPage", mock.Anything, permits[0].Key(), 1).Return(permits[1:2], nil).Once()
	ms.On("NextPage", mock.Anything, permits[1].Key(), 1).Return([]model.Permit{}, nil).Once()
	ms.On("SaveClassifications", mock.Anything, mock.MatchedBy(func(cs []store.Classification) bool {
		return cs[0].Scope.Key == permits[0].Key()
	})).Return(errors.New("value too long for type character varying(20)"))
	ms.On("SaveClassifications", mock.Anything, mock.MatchedBy(func(cs []store.Classification) bool {
		return cs[0].Scope.Key == permits[1].Key()
	})).Return(nil)
	ms.On("CompleteRun", mock.Anything, "run-1", store.RunResult{PermitsSeen: 2, PagesFailed: 1}).Return(nil)

	r := newTestRunner(t, ms, cfg)
	stats, err := r.Classify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PermitsSeen)
	assert.Equal(t, 1, stats.PagesWritten)
	assert.Equal(t, 1, stats.PagesFailed)
	ms.AssertExpectations(t)
	ms.AssertNumberOfCalls(t, "SaveClassifications", 2)
}

func TestRunner_Classify_BreakerCountsOnlyStoreOutages(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCalls   int
		wantWritten int
		wantFailed  int
	}{
		{"unique violation leaves breaker closed", &pgconn.PgError{Code: "23505"}, 2, 1, 1},
		{"serialization failures open breaker", &pgconn.PgError{Code: "40001"}, 2, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := new(mockStore)
			cfg := testConfig()
			cfg.Workers = 1
			cfg.Breaker = config.BreakerConfig{FailureThreshold: 1, ResetTimeoutSecs: 60}
			permits := samplePermits()

			ms.On("StartRun", mock.Anything, store.RunClassify, mock.Anything).Return("run-1", nil)
			ms.On("NextPage", mock.Anything, model.PermitKey{}, 1).Return(permits[:1], nil).Once()
			ms.On("NextPage", mock.Anything, permits[0].Key(), 1).Return(permits[1:2], nil).Once()
			ms.On("NextPage", mock.Anything, permits[1].Key(), 1).Return([]model.Permit{}, nil).Once()
			ms.On("SaveClassifications", mock.Anything, mock.MatchedBy(func(cs []store.Classification) bool {
				return cs[0].Scope.Key == permits[0].Key()
			})).Return(tt.err)
			ms.On("SaveClassifications", mock.Anything, mock.MatchedBy(func(cs []store.Classification) bool {
				return cs[0].Scope.Key == permits[1].Key()
			})).Return(nil).Maybe()
			ms.On("CompleteRun", mock.Anything, "run-1", store.RunResult{PermitsSeen: 2, PagesFailed: tt.wantFailed}).Return(nil)

			r := newTestRunner(t, ms, cfg)
			stats, err := r.Classify(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantWritten, stats.PagesWritten)
			assert.Equal(t, tt.wantFailed, stats.PagesFailed)
			ms.AssertNumberOfCalls(t, "SaveClassifications", tt.wantCalls)
			ms.AssertExpectations(t)
		})
	}
}

func TestRunner_Classify_RetriesTransientWrite(t *testing.T) {
	ms := new(mockStore)
	permits := samplePermits()[:1]

	ms.On("StartRun", mock.Anything, store.RunClassify, mock.Anything).Return("run-1", nil)
	ms.On("NextPage", mock.Anything, model.PermitKey{}, 1).Return(permits, nil).Once()
	ms.On("NextPage", mock.Anything, permits[0].Key(), 1).Return([]model.Permit{}, nil).Once()
	ms.On("SaveClassifications", mock.Anything, mock.Anything).Return(&pgconn.PgError{Code: "40P01"}).Once()
	ms.On("SaveClassifications", mock.Anything, mock.Anything).Return(nil).Once()
	ms.On("CompleteRun", mock.Anything, "run-1", store.RunResult{PermitsSeen: 1}).Return(nil)

	r := newTestRunner(t, ms, testConfig())
	stats, err := r.Classify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PagesWritten)
	assert.Equal(t, 0, stats.PagesFailed)
	ms.AssertExpectations(t)
}

func TestRunner_Classify_FetchErrorFailsRun(t *testing.T) {
	ms := new(mockStore)

	ms.On("StartRun", mock.Anything, store.RunClassify, mock.Anything).Return("run-1", nil)
	ms.On("NextPage", mock.Anything, model.PermitKey{}, 1).Return(nil, errors.New("connection refused"))
	ms.On("FailRun", mock.Anything, "run-1", mock.AnythingOfType("string")).Return(nil)

	r := newTestRunner(t, ms, testConfig())
	stats, err := r.Classify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline: fetch page")
	assert.Equal(t, "run-1", stats.RunID)
	ms.AssertExpectations(t)
}

func TestRunner_Classify_StartRunError(t *testing.T) {
	ms := new(mockStore)
	ms.On("StartRun", mock.Anything, store.RunClassify, mock.Anything).Return("", errors.New("read-only transaction"))

	r := newTestRunner(t, ms, testConfig())
	_, err := r.Classify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start classify run")
}

func TestRunner_Classify_CancelledContext(t *testing.T) {
	ms := new(mockStore)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ms.On("StartRun", mock.Anything, store.RunClassify, mock.Anything).Return("run-1", nil)
	ms.On("FailRun", mock.Anything, "run-1", context.Canceled.Error()).Return(nil)

	r := newTestRunner(t, ms, testConfig())
	_, err := r.Classify(ctx)
	require.ErrorIs(t, err, context.Canceled)
	ms.AssertExpectations(t)
	ms.AssertNotCalled(t, "NextPage", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunner_Propagate_PagesGroupsAndWritesChanged(t *testing.T) {
	ms := new(mockStore)
	bld := model.Permit{
		PermitNum: "24 555555 BLD 00", RevisionNum: "00",
		ProjectType: model.ProjectAddition, ScopeTags: []string{"new:2-storey-addition", "residential"},
	}
	hva := model.Permit{PermitNum: "24 555555 HVA 00", RevisionNum: "00", ScopeTags: []string{}}
	lone := model.Permit{PermitNum: "24 444444 DM", RevisionNum: "00", ScopeTags: []string{}}

	ms.On("StartRun", mock.Anything, store.RunPropagate, mock.Anything).Return("run-2", nil)
	ms.On("NextBaseGroups", mock.Anything, "", 1).
		Return([]store.BaseGroup{{Base: "24 444444", Permits: []model.Permit{lone}}}, nil).Once()
	ms.On("NextBaseGroups", mock.Anything, "24 444444", 1).
		Return([]store.BaseGroup{{Base: "24 555555", Permits: []model.Permit{bld, hva}}}, nil).Once()
	ms.On("NextBaseGroups", mock.Anything, "24 555555", 1).Return(nil, nil).Once()
	ms.On("SaveScopes", mock.Anything, mock.MatchedBy(func(scopes []model.ScopeResult) bool {
		return len(scopes) == 1 &&
			scopes[0].Key == hva.Key() &&
			scopes[0].Source == model.ScopePropagated &&
			scopes[0].RunID == "run-2" &&
			scopes[0].ClassifiedAt.Equal(fixedNow)
	})).Return(nil).Once()
	ms.On("CompleteRun", mock.Anything, "run-2", store.RunResult{PermitsSeen: 3}).Return(nil)

	r := newTestRunner(t, ms, testConfig())
	stats, err := r.Propagate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.GroupsSeen)
	assert.Equal(t, 1, stats.ScopesChanged)
	ms.AssertExpectations(t)
}

func TestRunner_Propagate_WriteFailureCounted(t *testing.T) {
	ms := new(mockStore)
	bld := model.Permit{PermitNum: "24 1 BLD", RevisionNum: "00", ProjectType: model.ProjectNewBuild, ScopeTags: []string{"new:sfd"}}
	plb := model.Permit{PermitNum: "24 1 PLB", RevisionNum: "00"}

	ms.On("StartRun", mock.Anything, store.RunPropagate, mock.Anything).Return("run-3", nil)
	ms.On("NextBaseGroups", mock.Anything, "", 1).
		Return([]store.BaseGroup{{Base: "24 1", Permits: []model.Permit{bld, plb}}}, nil).Once()
	ms.On("NextBaseGroups", mock.Anything, "24 1", 1).Return(nil, nil).Once()
	ms.On("SaveScopes", mock.Anything, mock.Anything).Return(errors.New("permission denied for table permit_scope"))
	ms.On("CompleteRun", mock.Anything, "run-3", store.RunResult{PermitsSeen: 2, PagesFailed: 1}).Return(nil)

	r := newTestRunner(t, ms, testConfig())
	stats, err := r.Propagate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PagesFailed)
	assert.Equal(t, 0, stats.ScopesChanged)
	ms.AssertExpectations(t)
}

func TestNew_Defaults(t *testing.T) {
	r := newTestRunner(t, new(mockStore), config.PipelineConfig{})
	assert.Equal(t, 500, r.cfg.PageSize)
	assert.Equal(t, 1, r.cfg.Workers)
	assert.NotEmpty(t, r.ConfigHash())
}
