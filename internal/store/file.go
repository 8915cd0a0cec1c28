package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"remotejobs-crawler/internal/domain"

	"github.com/gofrs/flock"
)

// File keeps the job list in one JSON file. A sibling .lock file serializes
// writers across processes.
type File struct {
	path string
	lock *flock.Flock
}

func NewFile(path string) *File {
	return &File{path: path, lock: flock.New(path + ".lock")}
}

func (f *File) Close() error { return f.lock.Close() }

func (f *File) ReadJobs(ctx context.Context) ([]domain.JobRecord, error) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return nil, err
	}
	if _, err := f.lock.TryRLockContext(ctx, lockRetry); err != nil {
		return nil, fmt.Errorf("lock %s: %w", f.path, err)
	}
	defer f.lock.Unlock()
	return f.read()
}

func (f *File) read() ([]domain.JobRecord, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.JobRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out []domain.JobRecord
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return out, nil
}

func (f *File) WriteJobs(ctx context.Context, jobs []domain.JobRecord) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	if _, err := f.lock.TryLockContext(ctx, lockRetry); err != nil {
		return fmt.Errorf("lock %s: %w", f.path, err)
	}
	defer f.lock.Unlock()
	return f.write(jobs)
}

// UpdateJobs holds the exclusive lock across the read and the write.
func (f *File) UpdateJobs(ctx context.Context, fn UpdateFunc) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	if _, err := f.lock.TryLockContext(ctx, lockRetry); err != nil {
		return fmt.Errorf("lock %s: %w", f.path, err)
	}
	defer f.lock.Unlock()

	existing, err := f.read()
	if err != nil {
		return err
	}
	next, err := fn(existing)
	if err != nil || next == nil {
		return err
	}
	return f.write(next)
}

func (f *File) write(jobs []domain.JobRecord) error {
	if jobs == nil {
		jobs = []domain.JobRecord{}
	}
	b, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
