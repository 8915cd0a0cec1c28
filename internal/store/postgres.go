package store

import (
	"context"
	"fmt"

	"remotejobs-crawler/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS crawled_jobs (
  position INTEGER PRIMARY KEY,
  id TEXT NOT NULL,
  slug TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending',
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  type TEXT NOT NULL DEFAULT '',
  salary TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  original_url TEXT NOT NULL DEFAULT '',
  apply_url TEXT NOT NULL DEFAULT '',
  tags TEXT NOT NULL DEFAULT '[]',
  source TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL DEFAULT '',
  crawled_at TEXT NOT NULL DEFAULT '',
  score INTEGER NOT NULL DEFAULT 0,
  keywords_matched TEXT NOT NULL DEFAULT '[]',
  scoring_factors TEXT NOT NULL DEFAULT '',
  role_category TEXT NOT NULL DEFAULT '',
  is_featured BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_crawled_jobs_status_score ON crawled_jobs (status, score DESC);
`

var pgColumns = []string{
	"position", "id", "slug", "status", "title", "company", "location", "type", "salary", "description",
	"original_url", "apply_url", "tags", "source", "created_at", "crawled_at", "score", "keywords_matched",
	"scoring_factors", "role_category", "is_featured",
}

type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) ReadJobs(ctx context.Context) ([]domain.JobRecord, error) {
	return queryJobs(ctx, p.pool)
}

type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryJobs(ctx context.Context, q pgQuerier) ([]domain.JobRecord, error) {
	rows, err := q.Query(ctx, `SELECT `+jobColumns+` FROM crawled_jobs ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}
	jr, err := pgx.CollectRows(rows, pgx.RowToStructByName[jobRow])
	if err != nil {
		return nil, fmt.Errorf("scan jobs: %w", err)
	}
	out := make([]domain.JobRecord, 0, len(jr))
	for _, r := range jr {
		out = append(out, r.record())
	}
	return out, nil
}

func (p *Postgres) WriteJobs(ctx context.Context, jobs []domain.JobRecord) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		return replaceCrawled(ctx, tx, jobs)
	})
}

// UpdateJobs locks the table so concurrent writers queue behind the read.
func (p *Postgres) UpdateJobs(ctx context.Context, fn UpdateFunc) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE crawled_jobs IN EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock jobs: %w", err)
		}
		existing, err := queryJobs(ctx, tx)
		if err != nil {
			return err
		}
		next, err := fn(existing)
		if err != nil || next == nil {
			return err
		}
		return replaceCrawled(ctx, tx, next)
	})
}

func replaceCrawled(ctx context.Context, tx pgx.Tx, jobs []domain.JobRecord) error {
	if _, err := tx.Exec(ctx, `DELETE FROM crawled_jobs`); err != nil {
		return fmt.Errorf("clear jobs: %w", err)
	}
	_, err := tx.CopyFrom(ctx, pgx.Identifier{"crawled_jobs"}, pgColumns,
		pgx.CopyFromSlice(len(jobs), func(i int) ([]any, error) {
			r := toRow(i, jobs[i])
			return []any{
				r.Position, r.ID, r.Slug, r.Status, r.Title, r.Company, r.Location, r.Type, r.Salary,
				r.Description, r.OriginalURL, r.ApplyURL, r.Tags, r.Source, r.CreatedAt, r.CrawledAt,
				r.Score, r.KeywordsMatched, r.ScoringFactors, r.RoleCategory, r.IsFeatured,
			}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy jobs: %w", err)
	}
	return nil
}
