package poll

import (
	"context"
	"sync"

	"remotejobs-crawler/internal/domain"
	"remotejobs-crawler/internal/scrape/util"
	"remotejobs-crawler/internal/store"
)

// persistMu serializes Persist callers in this process. Stores that implement
// store.Updater also keep other processes out.
var persistMu sync.Mutex

// Persist prepends newly crawled jobs to the stored list as pending, so nothing
// is published without review. Jobs failing validation, or already stored under
// the same ID or the same canonical apply URL, are skipped. It returns how many
// were added.
func Persist(ctx context.Context, st store.JobStore, jobs []domain.CandidateJob) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	persistMu.Lock()
	defer persistMu.Unlock()

	added := 0
	err := store.Update(ctx, st, func(existing []domain.JobRecord) ([]domain.JobRecord, error) {
		seenID := make(map[string]bool, len(existing))
		seenURL := make(map[string]bool, len(existing))
		for _, r := range existing {
			seenID[r.ID] = true
			if u := util.CanonicalizeURL(r.ApplyURL); u != "" {
				seenURL[u] = true
			}
		}

		fresh := make([]domain.JobRecord, 0, len(jobs))
		for _, j := range jobs {
			u := util.CanonicalizeURL(j.ApplyURL)
			if seenID[j.ID] || seenURL[u] || store.ValidateJob(j) != nil {
				continue
			}
			seenID[j.ID] = true
			seenURL[u] = true
			fresh = append(fresh, domain.JobRecord{
				CandidateJob: j,
				Slug:         util.JobSlug(j.Title, j.Company, j.ID),
				Status:       domain.StatusPending,
			})
		}
		if len(fresh) == 0 {
			return nil, nil
		}
		added = len(fresh)
		return append(fresh, existing...), nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
