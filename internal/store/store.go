package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"remotejobs-crawler/internal/domain"
)

var ErrUnknownDriver = errors.New("store: unknown driver")

// JobStore persists the full job list. WriteJobs replaces what was there.
type JobStore interface {
	ReadJobs(ctx context.Context) ([]domain.JobRecord, error)
	WriteJobs(ctx context.Context, jobs []domain.JobRecord) error
}

// UpdateFunc maps the stored list to its replacement. Returning a nil slice
// leaves the store untouched.
type UpdateFunc func(existing []domain.JobRecord) ([]domain.JobRecord, error)

// Updater is implemented by stores that can read and rewrite the list as one
// atomic step.
type Updater interface {
	UpdateJobs(ctx context.Context, fn UpdateFunc) error
}

// Update applies fn through st's UpdateJobs when it has one, and falls back to
// a plain read then write otherwise.
func Update(ctx context.Context, st JobStore, fn UpdateFunc) error {
	if u, ok := st.(Updater); ok {
		return u.UpdateJobs(ctx, fn)
	}
	existing, err := st.ReadJobs(ctx)
	if err != nil {
		return fmt.Errorf("read existing jobs: %w", err)
	}
	next, err := fn(existing)
	if err != nil || next == nil {
		return err
	}
	if err := st.WriteJobs(ctx, next); err != nil {
		return fmt.Errorf("write jobs: %w", err)
	}
	return nil
}

// Open returns the store for driver. dataDir anchors relative sqlite and file
// paths.
func Open(ctx context.Context, driver, dsn, path, dataDir string) (JobStore, io.Closer, error) {
	resolve := func(p, def string) string {
		if p == "" {
			p = def
		}
		if filepath.IsAbs(p) || dataDir == "" {
			return p
		}
		return filepath.Join(dataDir, p)
	}

	switch driver {
	case "", "sqlite":
		s, err := OpenSQLite(ctx, resolve(path, "jobs.db"))
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "postgres":
		p, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	case "file":
		f := NewFile(resolve(path, "jobs.json"))
		return f, f, nil
	default:
		return nil, nil, fmt.Errorf("%w %q", ErrUnknownDriver, driver)
	}
}

type ListOpts struct {
	Status   domain.Status
	Sort     string // relevance | score | date | company | title
	MinScore int
	Limit    int
	Tags     []string // every one must be present, case-insensitive
}

// List filters and orders records for display.
func List(records []domain.JobRecord, opts ListOpts) []domain.JobRecord {
	out := make([]domain.JobRecord, 0, len(records))
	for _, r := range records {
		if opts.Status != "" && r.Status != opts.Status {
			continue
		}
		if r.Score < opts.MinScore {
			continue
		}
		if !hasTags(r.Tags, opts.Tags) {
			continue
		}
		out = append(out, r)
	}

	less := map[string]func(a, b domain.JobRecord) bool{
		"score": func(a, b domain.JobRecord) bool {
			return a.Score > b.Score
		},
		"date": func(a, b domain.JobRecord) bool {
			return a.CreatedTime().After(b.CreatedTime())
		},
		"company": func(a, b domain.JobRecord) bool {
			return strings.ToLower(a.Company) < strings.ToLower(b.Company)
		},
		"title": func(a, b domain.JobRecord) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		},
	}[opts.Sort]
	if less != nil {
		sort.SliceStable(out, func(i, k int) bool { return less(out[i], out[k]) })
	}

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

func hasTags(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if strings.EqualFold(h, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

const lockRetry = 50 * time.Millisecond
