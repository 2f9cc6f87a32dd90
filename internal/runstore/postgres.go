package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"genforge/internal/plan"
)

const runsSchema = `
CREATE TABLE IF NOT EXISTS generation_runs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	plan       JSONB NOT NULL,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS run_artifacts (
	run_id   TEXT NOT NULL,
	path     TEXT NOT NULL,
	content  BYTEA NOT NULL,
	PRIMARY KEY (run_id, path)
);`

// Postgres persists runs through database/sql with the pgx stdlib driver.
// Run reads go through a small LRU so the hot run (the one being polled)
// does not hit the database on every request.
type Postgres struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	runCache *lru.Cache[string, Run]
}

// NewPostgres opens and pings the database.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	cache, err := lru.New[string, Run](256)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Postgres{db: db, runCache: cache}, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	p.schemaOnce.Do(func() {
		_, p.schemaErr = p.db.ExecContext(ctx, runsSchema)
	})
	return p.schemaErr
}

func (p *Postgres) Save(ctx context.Context, run Run) error {
	if err := p.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	planJSON, err := json.Marshal(run.Plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO generation_runs (id, status, plan, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			plan = EXCLUDED.plan,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at`,
		run.ID, string(run.Status), planJSON, run.Error, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	p.runCache.Add(run.ID, run)
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (Run, error) {
	if cached, ok := p.runCache.Get(id); ok {
		return cached, nil
	}
	if err := p.ensureSchema(ctx); err != nil {
		return Run{}, fmt.Errorf("ensure schema: %w", err)
	}
	row := p.db.QueryRowContext(ctx, `
		SELECT id, status, plan, error, created_at, updated_at
		FROM generation_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	p.runCache.Add(run.ID, run)
	return run, nil
}

func (p *Postgres) List(ctx context.Context) ([]Run, error) {
	if err := p.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, status, plan, error, created_at, updated_at
		FROM generation_runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// Put stores one artifact blob; Postgres doubles as an ArtifactStore so a
// single database can hold a whole deployment.
func (p *Postgres) PutArtifact(ctx context.Context, runID, path string, content []byte) error {
	if err := p.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	if content == nil {
		content = []byte{}
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO run_artifacts (run_id, path, content)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id, path) DO UPDATE SET content = EXCLUDED.content`,
		runID, path, content)
	if err != nil {
		return fmt.Errorf("put artifact %s/%s: %w", runID, path, err)
	}
	return nil
}

func (p *Postgres) GetArtifact(ctx context.Context, runID, path string) ([]byte, error) {
	if err := p.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	var content []byte
	err := p.db.QueryRowContext(ctx, `
		SELECT content FROM run_artifacts WHERE run_id = $1 AND path = $2`,
		runID, path).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact %s/%s: %w", runID, path, err)
	}
	return content, nil
}

func (p *Postgres) ListRunArtifacts(ctx context.Context, runID string) ([]string, error) {
	if err := p.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT path FROM run_artifacts WHERE run_id = $1 ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts %s: %w", runID, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		out = append(out, path)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var status string
	var planJSON []byte
	if err := row.Scan(&run.ID, &status, &planJSON, &run.Error, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return Run{}, err
	}
	run.Status = RunStatus(status)
	var p plan.GenerationPlan
	if err := json.Unmarshal(planJSON, &p); err != nil {
		return Run{}, fmt.Errorf("decode plan: %w", err)
	}
	run.Plan = p
	return run, nil
}

// PostgresArtifacts adapts a Postgres store to the ArtifactStore
// interface.
type PostgresArtifacts struct{ *Postgres }

func (p PostgresArtifacts) Put(ctx context.Context, runID, path string, content []byte) error {
	return p.PutArtifact(ctx, runID, path, content)
}

func (p PostgresArtifacts) Get(ctx context.Context, runID, path string) ([]byte, error) {
	return p.GetArtifact(ctx, runID, path)
}

func (p PostgresArtifacts) List(ctx context.Context, runID string) ([]string, error) {
	return p.ListRunArtifacts(ctx, runID)
}
