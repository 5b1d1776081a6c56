package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/permit-cli/internal/model"
	"github.com/sells-group/permit-cli/internal/propagate"
)

const (
	sqliteDateLayout = "2006-01-02"
	sqliteTimeLayout = time.RFC3339Nano
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	// One writer at a time; concurrent page saves queue on the pool.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS permits (
	permit_num     TEXT NOT NULL,
	revision_num   TEXT NOT NULL,
	work           TEXT,
	permit_type    TEXT,
	description    TEXT,
	structure_type TEXT,
	current_use    TEXT,
	proposed_use   TEXT,
	storeys        INTEGER NOT NULL DEFAULT 0,
	est_const_cost REAL,
	status         TEXT,
	issued_date    TEXT,
	housing_units  INTEGER NOT NULL DEFAULT 0,
	base_id        TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (permit_num, revision_num)
);

CREATE TABLE IF NOT EXISTS permit_scope (
	permit_num    TEXT NOT NULL,
	revision_num  TEXT NOT NULL,
	project_type  TEXT NOT NULL,
	scope_tags    TEXT NOT NULL DEFAULT '[]',
	source        TEXT NOT NULL DEFAULT 'classified',
	run_id        TEXT,
	classified_at TEXT NOT NULL,
	PRIMARY KEY (permit_num, revision_num)
);

CREATE TABLE IF NOT EXISTS trades (
	id         INTEGER PRIMARY KEY,
	slug       TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	icon       TEXT,
	color      TEXT,
	sort_order INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS product_groups (
	id         INTEGER PRIMARY KEY,
	slug       TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	sort_order INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS permit_trades (
	permit_num    TEXT NOT NULL,
	revision_num  TEXT NOT NULL,
	trade_id      INTEGER NOT NULL,
	trade_slug    TEXT NOT NULL,
	tier          INTEGER NOT NULL,
	confidence    REAL NOT NULL,
	is_active     INTEGER NOT NULL DEFAULT 0,
	phase         TEXT NOT NULL,
	lead_score    INTEGER NOT NULL,
	run_id        TEXT,
	classified_at TEXT NOT NULL,
	PRIMARY KEY (permit_num, revision_num, trade_slug)
);

CREATE TABLE IF NOT EXISTS permit_products (
	permit_num   TEXT NOT NULL,
	revision_num TEXT NOT NULL,
	product_id   INTEGER NOT NULL,
	product_slug TEXT NOT NULL,
	run_id       TEXT,
	PRIMARY KEY (permit_num, revision_num, product_slug)
);

CREATE TABLE IF NOT EXISTS classification_runs (
	id           TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	config_hash  TEXT,
	started_at   TEXT NOT NULL,
	completed_at TEXT,
	permits_seen INTEGER NOT NULL DEFAULT 0,
	pages_failed INTEGER NOT NULL DEFAULT 0,
	error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_permit_trades_lead_score ON permit_trades(lead_score DESC);
CREATE INDEX IF NOT EXISTS idx_permit_trades_slug ON permit_trades(trade_slug);
CREATE INDEX IF NOT EXISTS idx_permit_scope_project_type ON permit_scope(project_type);
`

const sqlitePermitSelect = `SELECT p.permit_num, p.revision_num, COALESCE(p.work, ''), COALESCE(p.permit_type, ''),
	COALESCE(p.description, ''), COALESCE(p.structure_type, ''), COALESCE(p.current_use, ''),
	COALESCE(p.proposed_use, ''), p.storeys, p.est_const_cost, COALESCE(p.status, ''),
	p.issued_date, p.housing_units, COALESCE(s.project_type, ''), COALESCE(s.scope_tags, '[]')
FROM permits p
LEFT JOIN permit_scope s ON s.permit_num = p.permit_num AND s.revision_num = p.revision_num`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	if err := s.ensureBaseColumn(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_permits_base ON permits(base_id, permit_num, revision_num)`)
	return eris.Wrap(err, "sqlite: migrate base index")
}

// ensureBaseColumn adds and backfills permits.base_id on databases created
// before the column existed.
func (s *SQLiteStore) ensureBaseColumn(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info('permits') WHERE name = 'base_id'`,
	).Scan(&n); err != nil {
		return eris.Wrap(err, "sqlite: inspect permits columns")
	}
	if n > 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		`ALTER TABLE permits ADD COLUMN base_id TEXT NOT NULL DEFAULT ''`,
	); err != nil {
		return eris.Wrap(err, "sqlite: add base_id column")
	}

	// Collect first: the pool has a single connection.
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT permit_num FROM permits`)
	if err != nil {
		return eris.Wrap(err, "sqlite: list permit numbers")
	}
	var nums []string
	for rows.Next() {
		var num string
		if err := rows.Scan(&num); err != nil {
			rows.Close() //nolint:errcheck
			return eris.Wrap(err, "sqlite: scan permit number")
		}
		nums = append(nums, num)
	}
	rows.Close() //nolint:errcheck
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "sqlite: iterate permit numbers")
	}

	return s.inTx(ctx, "backfill base_id", func(tx *sql.Tx) error {
		for _, num := range nums {
			if _, err := tx.ExecContext(ctx,
				`UPDATE permits SET base_id = ? WHERE permit_num = ?`, propagate.BaseID(num), num,
			); err != nil {
				return eris.Wrapf(err, "permit %s", num)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) NextPage(ctx context.Context, after model.PermitKey, limit int) ([]model.Permit, error) {
	rows, err := s.db.QueryContext(ctx,
		sqlitePermitSelect+`
WHERE (p.permit_num, p.revision_num) > (?, ?)
ORDER BY p.permit_num, p.revision_num
LIMIT ?`,
		after.PermitNum, after.RevisionNum, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: next page")
	}
	return collectSQLitePermits(rows)
}

func (s *SQLiteStore) NextBaseGroups(ctx context.Context, after string, limit int) ([]BaseGroup, error) {
	var upper sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(b.base_id) FROM (
	SELECT DISTINCT base_id FROM permits
	WHERE base_id > ?
	ORDER BY base_id
	LIMIT ?
) b`, after, limit).Scan(&upper)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: next base bound")
	}
	if !upper.Valid {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		sqlitePermitSelect+`
WHERE p.base_id > ? AND p.base_id <= ?
ORDER BY p.base_id, p.permit_num, p.revision_num`,
		after, upper.String,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: next base groups")
	}
	permits, err := collectSQLitePermits(rows)
	if err != nil {
		return nil, err
	}
	return groupByBase(permits), nil
}

func (s *SQLiteStore) ListPermitsByBase(ctx context.Context, base string) ([]model.Permit, error) {
	key := propagate.BaseID(base)
	if key == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		sqlitePermitSelect+`
WHERE p.base_id = ?
ORDER BY p.permit_num, p.revision_num`,
		key,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list permits for base %s", base)
	}
	return collectSQLitePermits(rows)
}

func (s *SQLiteStore) UpsertPermits(ctx context.Context, permits []model.Permit) error {
	if len(permits) == 0 {
		return nil
	}
	return s.inTx(ctx, "upsert permits", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO permits (
	permit_num, revision_num, work, permit_type, description, structure_type, current_use,
	proposed_use, storeys, est_const_cost, status, issued_date, housing_units, base_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (permit_num, revision_num) DO UPDATE SET
	work = excluded.work, permit_type = excluded.permit_type, description = excluded.description,
	structure_type = excluded.structure_type, current_use = excluded.current_use,
	proposed_use = excluded.proposed_use, storeys = excluded.storeys,
	est_const_cost = excluded.est_const_cost, status = excluded.status,
	issued_date = excluded.issued_date, housing_units = excluded.housing_units,
	base_id = excluded.base_id`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range permits {
			if _, err := stmt.ExecContext(ctx,
				p.PermitNum, p.RevisionNum, p.Work, p.PermitType, p.Description,
				p.StructureType, p.CurrentUse, p.ProposedUse, p.Storeys,
				nullFloat(p.EstConstCost), p.Status, formatDate(p.IssuedDate), p.HousingUnits,
				propagate.BaseID(p.PermitNum),
			); err != nil {
				return eris.Wrapf(err, "permit %s", p.Key())
			}
		}
		return nil
	})
}

const sqliteScopeUpsert = `INSERT INTO permit_scope (
	permit_num, revision_num, project_type, scope_tags, source, run_id, classified_at
) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (permit_num, revision_num) DO UPDATE SET
	project_type = excluded.project_type, scope_tags = excluded.scope_tags,
	source = excluded.source, run_id = excluded.run_id, classified_at = excluded.classified_at`

func (s *SQLiteStore) SaveClassifications(ctx context.Context, cs []Classification) error {
	if len(cs) == 0 {
		return nil
	}
	return s.inTx(ctx, "save classifications", func(tx *sql.Tx) error {
		for _, c := range cs {
			if err := execScope(ctx, tx, c.Scope); err != nil {
				return err
			}
			k := c.Scope.Key
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM permit_trades WHERE permit_num = ? AND revision_num = ?`, k.PermitNum, k.RevisionNum,
			); err != nil {
				return eris.Wrapf(err, "clear trades %s", k)
			}
			for _, m := range c.Trades {
				if _, err := tx.ExecContext(ctx, `INSERT INTO permit_trades (
	permit_num, revision_num, trade_id, trade_slug, tier, confidence, is_active, phase, lead_score, run_id, classified_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					k.PermitNum, k.RevisionNum, m.TradeID, m.TradeSlug, int(m.Tier), m.Confidence,
					m.IsActive, string(m.Phase), m.LeadScore, c.Scope.RunID, formatTime(c.Scope.ClassifiedAt),
				); err != nil {
					return eris.Wrapf(err, "insert trade %s %s", k, m.TradeSlug)
				}
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM permit_products WHERE permit_num = ? AND revision_num = ?`, k.PermitNum, k.RevisionNum,
			); err != nil {
				return eris.Wrapf(err, "clear products %s", k)
			}
			for _, pm := range c.Products {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO permit_products (permit_num, revision_num, product_id, product_slug, run_id) VALUES (?, ?, ?, ?, ?)`,
					k.PermitNum, k.RevisionNum, pm.ProductID, pm.ProductSlug, c.Scope.RunID,
				); err != nil {
					return eris.Wrapf(err, "insert product %s %s", k, pm.ProductSlug)
				}
			}
		}
		return nil
	})
}

func (s *SQLiteStore) SaveScopes(ctx context.Context, scopes []model.ScopeResult) error {
	if len(scopes) == 0 {
		return nil
	}
	return s.inTx(ctx, "save scopes", func(tx *sql.Tx) error {
		for _, sc := range scopes {
			if err := execScope(ctx, tx, sc); err != nil {
				return err
			}
		}
		return nil
	})
}

func execScope(ctx context.Context, tx *sql.Tx, sc model.ScopeResult) error {
	tags := sc.ScopeTags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return eris.Wrap(err, "marshal scope tags")
	}
	_, err = tx.ExecContext(ctx, sqliteScopeUpsert,
		sc.Key.PermitNum, sc.Key.RevisionNum, string(sc.ProjectType), string(tagsJSON),
		string(sc.Source), sc.RunID, formatTime(sc.ClassifiedAt),
	)
	return eris.Wrapf(err, "upsert scope %s", sc.Key)
}

func (s *SQLiteStore) ListLeads(ctx context.Context, f LeadFilter) ([]Lead, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLeadLimit
	}

	rows, err := s.db.QueryContext(ctx, `SELECT p.permit_num, p.revision_num, COALESCE(p.work, ''), COALESCE(p.permit_type, ''),
	COALESCE(p.description, ''), COALESCE(p.status, ''), p.est_const_cost, p.issued_date,
	t.trade_id, t.trade_slug, COALESCE(c.name, t.trade_slug), t.tier, t.confidence, t.is_active,
	t.phase, t.lead_score
FROM permit_trades t
JOIN permits p ON p.permit_num = t.permit_num AND p.revision_num = t.revision_num
LEFT JOIN trades c ON c.slug = t.trade_slug
WHERE t.lead_score >= ? AND (? = '' OR t.trade_slug = ?) AND (? = 0 OR t.is_active = 1)
ORDER BY t.lead_score DESC, t.permit_num, t.revision_num, t.trade_slug
LIMIT ?`,
		f.MinScore, f.TradeSlug, f.TradeSlug, f.ActiveOnly, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var (
			l      Lead
			cost   sql.NullFloat64
			issued sql.NullString
			tier   int
			phase  string
		)
		if err := rows.Scan(
			&l.Permit.PermitNum, &l.Permit.RevisionNum, &l.Permit.Work, &l.Permit.PermitType,
			&l.Permit.Description, &l.Permit.Status, &cost, &issued,
			&l.Match.TradeID, &l.Match.TradeSlug, &l.Match.TradeName, &tier, &l.Match.Confidence,
			&l.Match.IsActive, &phase, &l.Match.LeadScore,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		l.Permit.EstConstCost = floatPtr(cost)
		l.Permit.IssuedDate = parseDate(issued)
		l.Match.Key = l.Permit.Key()
		l.Match.Tier = model.Tier(tier)
		l.Match.Phase = model.Phase(phase)
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) StartRun(ctx context.Context, kind RunKind, configHash string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO classification_runs (id, kind, status, config_hash, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(kind), string(RunRunning), configHash, formatTime(time.Now().UTC()),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: start run")
	}
	return id, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, result RunResult) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE classification_runs SET status = ?, permits_seen = ?, pages_failed = ?, completed_at = ? WHERE id = ?`,
		string(RunCompleted), result.PermitsSeen, result.PagesFailed, formatTime(time.Now().UTC()), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE classification_runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(RunFailed), errMsg, formatTime(time.Now().UTC()), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	var (
		r                 Run
		kind, stat        string
		hash, msg, closed sql.NullString
		started           string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, kind, status, config_hash, started_at, completed_at, permits_seen, pages_failed, error
FROM classification_runs WHERE id = ?`, runID,
	).Scan(&r.ID, &kind, &stat, &hash, &started, &closed, &r.PermitsSeen, &r.PagesFailed, &msg)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	r.Kind = RunKind(kind)
	r.Status = RunStatus(stat)
	r.ConfigHash = hash.String
	r.Error = msg.String
	if t, err := time.Parse(sqliteTimeLayout, started); err == nil {
		r.StartedAt = t
	}
	if closed.Valid {
		if t, err := time.Parse(sqliteTimeLayout, closed.String); err == nil {
			r.CompletedAt = &t
		}
	}
	return &r, nil
}

func (s *SQLiteStore) SeedCatalog(ctx context.Context, trades []model.Trade, products []model.ProductGroup) error {
	return s.inTx(ctx, "seed catalog", func(tx *sql.Tx) error {
		for _, t := range trades {
			if _, err := tx.ExecContext(ctx, `INSERT INTO trades (id, slug, name, icon, color, sort_order)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET slug = excluded.slug, name = excluded.name, icon = excluded.icon,
	color = excluded.color, sort_order = excluded.sort_order`,
				t.ID, t.Slug, t.Name, t.Icon, t.Color, t.SortOrder,
			); err != nil {
				return eris.Wrapf(err, "trade %s", t.Slug)
			}
		}
		for _, p := range products {
			if _, err := tx.ExecContext(ctx, `INSERT INTO product_groups (id, slug, name, sort_order)
VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET slug = excluded.slug, name = excluded.name, sort_order = excluded.sort_order`,
				p.ID, p.Slug, p.Name, p.SortOrder,
			); err != nil {
				return eris.Wrapf(err, "product group %s", p.Slug)
			}
		}
		return nil
	})
}

// inTx runs fn in a transaction, committing on success.
func (s *SQLiteStore) inTx(ctx context.Context, action string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrapf(err, "sqlite: %s: begin tx", action)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return eris.Wrapf(err, "sqlite: %s", action)
	}
	return eris.Wrapf(tx.Commit(), "sqlite: %s: commit", action)
}

func collectSQLitePermits(rows *sql.Rows) ([]model.Permit, error) {
	defer rows.Close()

	var permits []model.Permit
	for rows.Next() {
		var (
			p        model.Permit
			cost     sql.NullFloat64
			issued   sql.NullString
			pt, tags string
		)
		if err := rows.Scan(
			&p.PermitNum, &p.RevisionNum, &p.Work, &p.PermitType, &p.Description,
			&p.StructureType, &p.CurrentUse, &p.ProposedUse, &p.Storeys, &cost,
			&p.Status, &issued, &p.HousingUnits, &pt, &tags,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan permit")
		}
		if err := json.Unmarshal([]byte(tags), &p.ScopeTags); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal scope tags for %s", p.Key())
		}
		p.EstConstCost = floatPtr(cost)
		p.IssuedDate = parseDate(issued)
		p.ProjectType = model.ProjectType(pt)
		permits = append(permits, p)
	}
	return permits, eris.Wrap(rows.Err(), "sqlite: iterate permits")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %s", entity, id)
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s not found: %s", entity, id)
	}
	return nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func formatDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(sqliteDateLayout), Valid: true}
}

func parseDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(sqliteDateLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}
