package rank

import (
	"sort"
	"strings"

	"remotejobs-crawler/internal/domain"
)

func FilterByScore(jobs []domain.CandidateJob, minScore int) []domain.CandidateJob {
	out := make([]domain.CandidateJob, 0, len(jobs))
	for _, j := range jobs {
		if j.Score >= minScore {
			out = append(out, j)
		}
	}
	return out
}

// SortByRelevance orders featured first, then score desc, then newest first.
// The input is not modified.
func SortByRelevance(jobs []domain.CandidateJob) []domain.CandidateJob {
	out := make([]domain.CandidateJob, len(jobs))
	copy(out, jobs)
	sort.SliceStable(out, func(i, k int) bool {
		a, b := out[i], out[k]
		if a.IsFeatured != b.IsFeatured {
			return a.IsFeatured
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.CreatedTime().After(b.CreatedTime())
	})
	return out
}

// DedupKey identifies the same posting across sources.
func DedupKey(job domain.CandidateJob) string {
	return strings.ToLower(strings.TrimSpace(job.Title)) + "-" + strings.ToLower(strings.TrimSpace(job.Company))
}

// FindDuplicateGroups returns the ids of every key shared by more than one job,
// groups in first-seen order.
func FindDuplicateGroups(jobs []domain.CandidateJob) [][]string {
	var keys []string
	groups := map[string][]string{}
	for _, j := range jobs {
		k := DedupKey(j)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], j.ID)
	}

	var out [][]string
	for _, k := range keys {
		if len(groups[k]) > 1 {
			out = append(out, groups[k])
		}
	}
	return out
}

// RemoveDuplicates keeps the highest scoring job of each key (first seen on ties)
// and preserves the input order of survivors. It returns the kept jobs and the
// number dropped.
func RemoveDuplicates(jobs []domain.CandidateJob) ([]domain.CandidateJob, int) {
	best := map[string]int{}
	for i, j := range jobs {
		k := DedupKey(j)
		cur, ok := best[k]
		if !ok || j.Score > jobs[cur].Score {
			best[k] = i
		}
	}

	out := make([]domain.CandidateJob, 0, len(best))
	for i, j := range jobs {
		if best[DedupKey(j)] == i {
			out = append(out, j)
		}
	}
	return out, len(jobs) - len(out)
}
