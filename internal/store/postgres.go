package store

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/permit-cli/internal/db"
	"github.com/sells-group/permit-cli/internal/model"
	"github.com/sells-group/permit-cli/internal/propagate"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationLockID = 73_240_611

// PostgresStore implements Store using a pgx pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres wraps an open pool.
func NewPostgres(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var (
	scopeUpsert = db.UpsertConfig{
		Table:        "permit_scope",
		Columns:      []string{"permit_num", "revision_num", "project_type", "scope_tags", "source", "run_id", "classified_at"},
		ConflictKeys: []string{"permit_num", "revision_num"},
	}
	permitUpsert = db.UpsertConfig{
		Table: "permits",
		Columns: []string{
			"permit_num", "revision_num", "work", "permit_type", "description",
			"structure_type", "current_use", "proposed_use", "storeys",
			"est_const_cost", "status", "issued_date", "housing_units", "base_id",
		},
		ConflictKeys: []string{"permit_num", "revision_num"},
	}
	tradeCatalogUpsert = db.UpsertConfig{
		Table:        "trades",
		Columns:      []string{"id", "slug", "name", "icon", "color", "sort_order"},
		ConflictKeys: []string{"id"},
	}
	productCatalogUpsert = db.UpsertConfig{
		Table:        "product_groups",
		Columns:      []string{"id", "slug", "name", "sort_order"},
		ConflictKeys: []string{"id"},
	}

	tradeColumns = []string{
		"permit_num", "revision_num", "trade_id", "trade_slug", "tier",
		"confidence", "is_active", "phase", "lead_score", "run_id", "classified_at",
	}
	productColumns = []string{"permit_num", "revision_num", "product_id", "product_slug", "run_id"}
)

const pgPermitSelect = `SELECT p.permit_num, p.revision_num, COALESCE(p.work, ''), COALESCE(p.permit_type, ''),
	COALESCE(p.description, ''), COALESCE(p.structure_type, ''), COALESCE(p.current_use, ''),
	COALESCE(p.proposed_use, ''), p.storeys, p.est_const_cost, COALESCE(p.status, ''),
	p.issued_date, p.housing_units, COALESCE(s.project_type, ''), COALESCE(s.scope_tags, '{}'::text[])
FROM permits p
LEFT JOIN permit_scope s ON s.permit_num = p.permit_num AND s.revision_num = p.revision_num`

// Migrate applies pending migrations under an advisory lock.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	log := zap.L().With(zap.String("component", "store.migrate"))

	if _, err := s.pool.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return eris.Wrap(err, "postgres: acquire migration advisory lock")
	}
	defer func() {
		if _, err := s.pool.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			log.Warn("postgres: failed to release migration advisory lock", zap.Error(err))
		}
	}()

	if _, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename   TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return eris.Wrap(err, "postgres: ensure migration table")
	}

	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return eris.Wrap(err, "postgres: read migration dir")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	applied, err := s.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		if applied[name] {
			continue
		}
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return eris.Wrapf(err, "postgres: read migration %s", name)
		}

		log.Info("applying migration", zap.String("file", name))
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return eris.Wrapf(err, "postgres: apply migration %s", name)
		}
		if _, err := s.pool.Exec(ctx,
			"INSERT INTO schema_migrations (filename, applied_at) VALUES ($1, now())", name,
		); err != nil {
			return eris.Wrapf(err, "postgres: record migration %s", name)
		}
	}
	return nil
}

func (s *PostgresStore) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query applied migrations")
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "postgres: scan migration row")
		}
		applied[name] = true
	}
	return applied, eris.Wrap(rows.Err(), "postgres: iterate migrations")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// NextPage returns up to limit permits whose key is strictly greater than after.
func (s *PostgresStore) NextPage(ctx context.Context, after model.PermitKey, limit int) ([]model.Permit, error) {
	rows, err := s.pool.Query(ctx,
		pgPermitSelect+`
WHERE (p.permit_num, p.revision_num) > ($1, $2)
ORDER BY p.permit_num, p.revision_num
LIMIT $3`,
		after.PermitNum, after.RevisionNum, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: next page")
	}
	return collectPgPermits(rows)
}

// NextBaseGroups returns up to limit whole base groups whose base sorts
// strictly after the cursor. Permits without a base are never returned.
func (s *PostgresStore) NextBaseGroups(ctx context.Context, after string, limit int) ([]BaseGroup, error) {
	var upper *string
	err := s.pool.QueryRow(ctx, `SELECT MAX(b.base_id) FROM (
	SELECT DISTINCT base_id FROM permits
	WHERE base_id > $1
	ORDER BY base_id
	LIMIT $2
) b`, after, limit).Scan(&upper)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: next base bound")
	}
	if upper == nil {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		pgPermitSelect+`
WHERE p.base_id > $1 AND p.base_id <= $2
ORDER BY p.base_id, p.permit_num, p.revision_num`,
		after, *upper,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: next base groups")
	}
	permits, err := collectPgPermits(rows)
	if err != nil {
		return nil, err
	}
	return groupByBase(permits), nil
}

// ListPermitsByBase returns every permit sharing the base identifier.
func (s *PostgresStore) ListPermitsByBase(ctx context.Context, base string) ([]model.Permit, error) {
	key := propagate.BaseID(base)
	if key == "" {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		pgPermitSelect+`
WHERE p.base_id = $1
ORDER BY p.permit_num, p.revision_num`,
		key,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list permits for base %s", base)
	}
	return collectPgPermits(rows)
}

// UpsertPermits writes source permit rows.
func (s *PostgresStore) UpsertPermits(ctx context.Context, permits []model.Permit) error {
	rows := make([][]any, len(permits))
	for i, p := range permits {
		rows[i] = []any{
			p.PermitNum, p.RevisionNum, p.Work, p.PermitType, p.Description,
			p.StructureType, p.CurrentUse, p.ProposedUse, p.Storeys,
			p.EstConstCost, p.Status, p.IssuedDate, p.HousingUnits,
			propagate.BaseID(p.PermitNum),
		}
	}
	_, err := db.BulkUpsert(ctx, s.pool, permitUpsert, rows)
	return eris.Wrap(err, "postgres: upsert permits")
}

// SaveClassifications upserts scope rows and replaces each permit's trade and
// product rows in a single transaction.
func (s *PostgresStore) SaveClassifications(ctx context.Context, cs []Classification) error {
	if len(cs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: save classifications: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	scopes := make([]model.ScopeResult, len(cs))
	nums := make([]string, len(cs))
	revs := make([]string, len(cs))
	var tradeRows, productRows [][]any
	for i, c := range cs {
		scopes[i] = c.Scope
		nums[i] = c.Scope.Key.PermitNum
		revs[i] = c.Scope.Key.RevisionNum
		for _, m := range c.Trades {
			tradeRows = append(tradeRows, []any{
				m.Key.PermitNum, m.Key.RevisionNum, m.TradeID, m.TradeSlug, int(m.Tier),
				m.Confidence, m.IsActive, string(m.Phase), m.LeadScore, c.Scope.RunID, c.Scope.ClassifiedAt,
			})
		}
		for _, pm := range c.Products {
			productRows = append(productRows, []any{
				pm.Key.PermitNum, pm.Key.RevisionNum, pm.ProductID, pm.ProductSlug, c.Scope.RunID,
			})
		}
	}

	if _, err := db.UpsertTx(ctx, tx, scopeUpsert, scopeRows(scopes)); err != nil {
		return eris.Wrap(err, "postgres: save classifications: scopes")
	}

	const keyFilter = ` WHERE (permit_num, revision_num) IN (SELECT * FROM unnest($1::text[], $2::text[]))`
	if _, err := tx.Exec(ctx, `DELETE FROM permit_trades`+keyFilter, nums, revs); err != nil {
		return eris.Wrap(err, "postgres: save classifications: clear trades")
	}
	if _, err := db.CopyFrom(ctx, tx, "permit_trades", tradeColumns, tradeRows); err != nil {
		return eris.Wrap(err, "postgres: save classifications: trades")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM permit_products`+keyFilter, nums, revs); err != nil {
		return eris.Wrap(err, "postgres: save classifications: clear products")
	}
	if _, err := db.CopyFrom(ctx, tx, "permit_products", productColumns, productRows); err != nil {
		return eris.Wrap(err, "postgres: save classifications: products")
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: save classifications: commit")
	}
	return nil
}

// SaveScopes upserts scope rows, typically propagated ones.
func (s *PostgresStore) SaveScopes(ctx context.Context, scopes []model.ScopeResult) error {
	_, err := db.BulkUpsert(ctx, s.pool, scopeUpsert, scopeRows(scopes))
	return eris.Wrap(err, "postgres: save scopes")
}

func scopeRows(scopes []model.ScopeResult) [][]any {
	rows := make([][]any, len(scopes))
	for i, sc := range scopes {
		tags := sc.ScopeTags
		if tags == nil {
			tags = []string{}
		}
		rows[i] = []any{
			sc.Key.PermitNum, sc.Key.RevisionNum, string(sc.ProjectType), tags,
			string(sc.Source), sc.RunID, sc.ClassifiedAt,
		}
	}
	return rows
}

// ListLeads returns trade matches ordered by descending lead score.
func (s *PostgresStore) ListLeads(ctx context.Context, f LeadFilter) ([]Lead, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLeadLimit
	}

	rows, err := s.pool.Query(ctx, `SELECT p.permit_num, p.revision_num, COALESCE(p.work, ''), COALESCE(p.permit_type, ''),
	COALESCE(p.description, ''), COALESCE(p.status, ''), p.est_const_cost, p.issued_date,
	t.trade_id, t.trade_slug, COALESCE(c.name, t.trade_slug), t.tier, t.confidence, t.is_active,
	t.phase, t.lead_score
FROM permit_trades t
JOIN permits p ON p.permit_num = t.permit_num AND p.revision_num = t.revision_num
LEFT JOIN trades c ON c.slug = t.trade_slug
WHERE t.lead_score >= $1 AND ($2::text = '' OR t.trade_slug = $2::text) AND (NOT $3::boolean OR t.is_active)
ORDER BY t.lead_score DESC, t.permit_num, t.revision_num, t.trade_slug
LIMIT $4`,
		f.MinScore, f.TradeSlug, f.ActiveOnly, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var (
			l     Lead
			tier  int
			phase string
		)
		if err := rows.Scan(
			&l.Permit.PermitNum, &l.Permit.RevisionNum, &l.Permit.Work, &l.Permit.PermitType,
			&l.Permit.Description, &l.Permit.Status, &l.Permit.EstConstCost, &l.Permit.IssuedDate,
			&l.Match.TradeID, &l.Match.TradeSlug, &l.Match.TradeName, &tier, &l.Match.Confidence,
			&l.Match.IsActive, &phase, &l.Match.LeadScore,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		l.Match.Key = l.Permit.Key()
		l.Match.Tier = model.Tier(tier)
		l.Match.Phase = model.Phase(phase)
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

// StartRun inserts a running run row and returns its id.
func (s *PostgresStore) StartRun(ctx context.Context, kind RunKind, configHash string) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO classification_runs (id, kind, status, config_hash, started_at) VALUES ($1, $2, $3, $4, $5)`,
		id, string(kind), string(RunRunning), configHash, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: start run")
	}
	return id, nil
}

// CompleteRun marks a run completed with its counters.
func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result RunResult) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE classification_runs SET status = $2, permits_seen = $3, pages_failed = $4, completed_at = now() WHERE id = $1`,
		runID, string(RunCompleted), result.PermitsSeen, result.PagesFailed,
	)
	return eris.Wrapf(err, "postgres: complete run %s", runID)
}

// FailRun marks a run failed with an error message.
func (s *PostgresStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE classification_runs SET status = $2, error = $3, completed_at = now() WHERE id = $1`,
		runID, string(RunFailed), errMsg,
	)
	return eris.Wrapf(err, "postgres: fail run %s", runID)
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	var (
		r          Run
		kind, stat string
		hash, msg  *string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, kind, status, config_hash, started_at, completed_at, permits_seen, pages_failed, error
FROM classification_runs WHERE id = $1`, runID,
	).Scan(&r.ID, &kind, &stat, &hash, &r.StartedAt, &r.CompletedAt, &r.PermitsSeen, &r.PagesFailed, &msg)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	r.Kind = RunKind(kind)
	r.Status = RunStatus(stat)
	if hash != nil {
		r.ConfigHash = *hash
	}
	if msg != nil {
		r.Error = *msg
	}
	return &r, nil
}

// SeedCatalog upserts the trade and product-group catalogs.
func (s *PostgresStore) SeedCatalog(ctx context.Context, trades []model.Trade, products []model.ProductGroup) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: seed catalog: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tradeRows := make([][]any, len(trades))
	for i, t := range trades {
		tradeRows[i] = []any{t.ID, t.Slug, t.Name, t.Icon, t.Color, t.SortOrder}
	}
	if _, err := db.UpsertTx(ctx, tx, tradeCatalogUpsert, tradeRows); err != nil {
		return eris.Wrap(err, "postgres: seed trades")
	}

	productRows := make([][]any, len(products))
	for i, p := range products {
		productRows[i] = []any{p.ID, p.Slug, p.Name, p.SortOrder}
	}
	if _, err := db.UpsertTx(ctx, tx, productCatalogUpsert, productRows); err != nil {
		return eris.Wrap(err, "postgres: seed product groups")
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: seed catalog: commit")
}

func collectPgPermits(rows pgx.Rows) ([]model.Permit, error) {
	defer rows.Close()

	var permits []model.Permit
	for rows.Next() {
		var (
			p  model.Permit
			pt string
		)
		if err := rows.Scan(
			&p.PermitNum, &p.RevisionNum, &p.Work, &p.PermitType, &p.Description,
			&p.StructureType, &p.CurrentUse, &p.ProposedUse, &p.Storeys, &p.EstConstCost,
			&p.Status, &p.IssuedDate, &p.HousingUnits, &pt, &p.ScopeTags,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan permit")
		}
		p.ProjectType = model.ProjectType(pt)
		permits = append(permits, p)
	}
	return permits, eris.Wrap(rows.Err(), "postgres: iterate permits")
}
