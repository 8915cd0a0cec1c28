package store

import (
	"context"
	"fmt"
	"time"

	"remotejobs-crawler/internal/domain"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type SQLite struct {
	db *sqlx.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	db.SetConnMaxLifetime(5 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLite{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.GetContext(ctx, &v, `PRAGMA user_version;`); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS jobs (
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
  is_featured INTEGER NOT NULL DEFAULT 0
);
`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_jobs_status_score
ON jobs(status, score DESC);
`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) ReadJobs(ctx context.Context) ([]domain.JobRecord, error) {
	return selectJobs(ctx, s.db)
}

func selectJobs(ctx context.Context, q sqlx.QueryerContext) ([]domain.JobRecord, error) {
	var rows []jobRow
	if err := sqlx.SelectContext(ctx, q, &rows, `SELECT `+jobColumns+` FROM jobs ORDER BY position;`); err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}
	out := make([]domain.JobRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (s *SQLite) WriteJobs(ctx context.Context, jobs []domain.JobRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := replaceJobs(ctx, tx, jobs); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateJobs reads and rewrites the table inside one transaction.
func (s *SQLite) UpdateJobs(ctx context.Context, fn UpdateFunc) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := selectJobs(ctx, tx)
	if err != nil {
		return err
	}
	next, err := fn(existing)
	if err != nil || next == nil {
		return err
	}
	if err := replaceJobs(ctx, tx, next); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceJobs(ctx context.Context, tx *sqlx.Tx, jobs []domain.JobRecord) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM jobs;`); err != nil {
		return fmt.Errorf("clear jobs: %w", err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, `
INSERT INTO jobs (`+jobColumns+`)
VALUES (:position, :id, :slug, :status, :title, :company, :location, :type, :salary, :description,
:original_url, :apply_url, :tags, :source, :created_at, :crawled_at, :score, :keywords_matched,
:scoring_factors, :role_category, :is_featured);`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, j := range jobs {
		if _, err := stmt.ExecContext(ctx, toRow(i, j)); err != nil {
			return fmt.Errorf("insert job %s: %w", j.ID, err)
		}
	}
	return nil
}
