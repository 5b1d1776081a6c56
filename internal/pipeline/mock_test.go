package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/permit-cli/internal/model"
	"github.com/sells-group/permit-cli/internal/store"
)

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) NextPage(ctx context.Context, after model.PermitKey, limit int) ([]model.Permit, error) {
	args := m.Called(ctx, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Permit), args.Error(1)
}

func (m *mockStore) NextBaseGroups(ctx context.Context, after string, limit int) ([]store.BaseGroup, error) {
	args := m.Called(ctx, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.BaseGroup), args.Error(1)
}

func (m *mockStore) ListPermitsByBase(ctx context.Context, base string) ([]model.Permit, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Permit), args.Error(1)
}

func (m *mockStore) UpsertPermits(ctx context.Context, permits []model.Permit) error {
	return m.Called(ctx, permits).Error(0)
}

func (m *mockStore) SaveClassifications(ctx context.Context, cs []store.Classification) error {
	return m.Called(ctx, cs).Error(0)
}

func (m *mockStore) SaveScopes(ctx context.Context, scopes []model.ScopeResult) error {
	return m.Called(ctx, scopes).Error(0)
}

func (m *mockStore) ListLeads(ctx context.Context, filter store.LeadFilter) ([]store.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Lead), args.Error(1)
}

func (m *mockStore) StartRun(ctx context.Context, kind store.RunKind, configHash string) (string, error) {
	args := m.Called(ctx, kind, configHash)
	return args.String(0), args.Error(1)
}

func (m *mockStore) CompleteRun(ctx context.Context, runID string, result store.RunResult) error {
	return m.Called(ctx, runID, result).Error(0)
}

func (m *mockStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	return m.Called(ctx, runID, errMsg).Error(0)
}

func (m *mockStore) GetRun(ctx context.Context, runID string) (*store.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Run), args.Error(1)
}

func (m *mockStore) SeedCatalog(ctx context.Context, trades []model.Trade, products []model.ProductGroup) error {
	return m.Called(ctx, trades, products).Error(0)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}
