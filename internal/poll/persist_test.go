package poll

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"remotejobs-crawler/internal/domain"
	"remotejobs-crawler/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistPrependsPending(t *testing.T) {
	st := store.NewFile(filepath.Join(t.TempDir(), "jobs.json"))
	old := domain.JobRecord{
		CandidateJob: domain.CandidateJob{ID: "manual-1", Title: "Old", Company: "Acme", ApplyURL: "https://acme.example/1"},
		Status:       domain.StatusPublished,
	}
	require.NoError(t, st.WriteJobs(t.Context(), []domain.JobRecord{old}))

	n, err := Persist(t.Context(), st, []domain.CandidateJob{
		{ID: "greenhouse-1767225600000-x1y2z3", Title: "Go Engineer", Company: "GitLab", ApplyURL: "https://gitlab.example/apply"},
		{ID: "greenhouse-2", Title: "No URL", Company: "GitLab"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := st.ReadJobs(t.Context())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.StatusPending, got[0].Status)
	assert.Equal(t, "go-engineer-gitlab-x1y2z3", got[0].Slug)
	assert.Equal(t, "manual-1", got[1].ID)
	assert.Equal(t, domain.StatusPublished, got[1].Status)
}

func TestPersistNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	n, err := Persist(t.Context(), store.NewFile(path), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoFileExists(t, path)
}

func TestPersistKeepsExistingIDs(t *testing.T) {
	st := store.NewFile(filepath.Join(t.TempDir(), "jobs.json"))
	stored := domain.JobRecord{
		CandidateJob: domain.CandidateJob{ID: "lever-1", Title: "Go Engineer", Company: "Acme", ApplyURL: "https://acme.example/1"},
		Status:       domain.StatusPublished,
	}
	require.NoError(t, st.WriteJobs(t.Context(), []domain.JobRecord{stored}))

	n, err := Persist(t.Context(), st, []domain.CandidateJob{
		{ID: "lever-1", Title: "Go Engineer (updated)", Company: "Acme", ApplyURL: "https://acme.example/1"},
		{ID: "lever-2", Title: "Rust Engineer", Company: "Acme", ApplyURL: "https://acme.example/2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := st.ReadJobs(t.Context())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "lever-2", got[0].ID)
	assert.Equal(t, "Go Engineer", got[1].Title)
	assert.Equal(t, domain.StatusPublished, got[1].Status)
}

func TestPersistSkipsSameApplyURL(t *testing.T) {
	st := store.NewFile(filepath.Join(t.TempDir(), "jobs.json"))
	stored := domain.JobRecord{
		CandidateJob: domain.CandidateJob{ID: "greenhouse-1", Title: "Go Engineer", Company: "Acme", ApplyURL: "https://boards.greenhouse.io/acme/jobs/1"},
		Status:       domain.StatusPublished,
	}
	require.NoError(t, st.WriteJobs(t.Context(), []domain.JobRecord{stored}))

	n, err := Persist(t.Context(), st, []domain.CandidateJob{
		{ID: "greenhouse-2", Title: "Go Engineer", Company: "Acme", ApplyURL: "HTTPS://Boards.Greenhouse.io/acme/jobs/1?gh_src=feed#apply"},
		{ID: "greenhouse-3", Title: "SRE", Company: "Acme", ApplyURL: "https://boards.greenhouse.io/acme/jobs/3"},
		{ID: "greenhouse-4", Title: "SRE", Company: "Acme", ApplyURL: "https://boards.greenhouse.io/acme/jobs/3?utm_source=x"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := st.ReadJobs(t.Context())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "greenhouse-3", got[0].ID)
	assert.Equal(t, "greenhouse-1", got[1].ID)
}

// slowStore widens the gap between read and write.
type slowStore struct {
	mu   sync.Mutex
	jobs []domain.JobRecord
}

func (s *slowStore) ReadJobs(context.Context) ([]domain.JobRecord, error) {
	s.mu.Lock()
	out := append([]domain.JobRecord(nil), s.jobs...)
	s.mu.Unlock()
	time.Sleep(50 * time.Millisecond)
	return out, nil
}

func (s *slowStore) WriteJobs(_ context.Context, jobs []domain.JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = jobs
	return nil
}

func persistConcurrently(t *testing.T, st store.JobStore, n int) {
	t.Helper()
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added, err := Persist(context.Background(), st, []domain.CandidateJob{{
				ID:       fmt.Sprintf("lever-%d", i),
				Title:    "Go Engineer",
				Company:  "Acme",
				ApplyURL: fmt.Sprintf("https://jobs.lever.co/acme/%d", i),
			}})
			assert.NoError(t, err)
			assert.Equal(t, 1, added)
		}()
	}
	wg.Wait()
}

func TestPersistConcurrentCallsKeepEveryJob(t *testing.T) {
	st := &slowStore{}
	persistConcurrently(t, st, 4)

	got, err := st.ReadJobs(t.Context())
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestPersistConcurrentFileStore(t *testing.T) {
	st := store.NewFile(filepath.Join(t.TempDir(), "jobs.json"))
	persistConcurrently(t, st, 8)

	got, err := st.ReadJobs(t.Context())
	require.NoError(t, err)
	assert.Len(t, got, 8)
}
