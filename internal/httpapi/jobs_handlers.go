package httpapi

import (
	"net/http"
	"strconv"

	"remotejobs-crawler/internal/domain"
	"remotejobs-crawler/internal/scrape/util"
	"remotejobs-crawler/internal/store"
)

type JobsHandler struct {
	Store store.JobStore
}

// List serves persisted jobs. Query: status, sort, min_score, limit, tags.
func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListOpts{
		Status: domain.Status(q.Get("status")),
		Sort:   q.Get("sort"),
		Limit:  50000,
		Tags:   util.NormalizeTags(q["tags"]...),
	}
	if v := q.Get("min_score"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_query", "min_score must be an integer")
			return
		}
		opts.MinScore = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_query", "limit must be a positive integer")
			return
		}
		opts.Limit = n
	}

	records, err := h.Store.ReadJobs(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	jobs := store.List(records, opts)
	writeJSON(w, map[string]any{"total": len(jobs), "jobs": jobs})
}
