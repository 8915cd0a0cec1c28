package store

import (
	"encoding/json"

	"remotejobs-crawler/internal/domain"
)

const jobColumns = `position, id, slug, status, title, company, location, type, salary, description,
original_url, apply_url, tags, source, created_at, crawled_at, score, keywords_matched,
scoring_factors, role_category, is_featured`

// jobRow is the flat table shape shared by the SQL stores. Slices and the
// scoring breakdown are stored as JSON text.
type jobRow struct {
	Position        int    `db:"position"`
	ID              string `db:"id"`
	Slug            string `db:"slug"`
	Status          string `db:"status"`
	Title           string `db:"title"`
	Company         string `db:"company"`
	Location        string `db:"location"`
	Type            string `db:"type"`
	Salary          string `db:"salary"`
	Description     string `db:"description"`
	OriginalURL     string `db:"original_url"`
	ApplyURL        string `db:"apply_url"`
	Tags            string `db:"tags"`
	Source          string `db:"source"`
	CreatedAt       string `db:"created_at"`
	CrawledAt       string `db:"crawled_at"`
	Score           int    `db:"score"`
	KeywordsMatched string `db:"keywords_matched"`
	ScoringFactors  string `db:"scoring_factors"`
	RoleCategory    string `db:"role_category"`
	IsFeatured      bool   `db:"is_featured"`
}

func toRow(pos int, r domain.JobRecord) jobRow {
	tags, _ := json.Marshal(nonNil(r.Tags))
	kws, _ := json.Marshal(nonNil(r.KeywordsMatched))
	factors := ""
	if r.ScoringFactors != nil {
		b, _ := json.Marshal(r.ScoringFactors)
		factors = string(b)
	}
	return jobRow{
		Position:        pos,
		ID:              r.ID,
		Slug:            r.Slug,
		Status:          string(r.Status),
		Title:           r.Title,
		Company:         r.Company,
		Location:        r.Location,
		Type:            r.Type,
		Salary:          r.Salary,
		Description:     r.Description,
		OriginalURL:     r.OriginalURL,
		ApplyURL:        r.ApplyURL,
		Tags:            string(tags),
		Source:          string(r.Source),
		CreatedAt:       r.CreatedAt,
		CrawledAt:       r.CrawledAt,
		Score:           r.Score,
		KeywordsMatched: string(kws),
		ScoringFactors:  factors,
		RoleCategory:    string(r.RoleCategory),
		IsFeatured:      r.IsFeatured,
	}
}

func (row jobRow) record() domain.JobRecord {
	r := domain.JobRecord{
		CandidateJob: domain.CandidateJob{
			ID:           row.ID,
			Title:        row.Title,
			Company:      row.Company,
			Location:     row.Location,
			Type:         row.Type,
			Salary:       row.Salary,
			Description:  row.Description,
			OriginalURL:  row.OriginalURL,
			ApplyURL:     row.ApplyURL,
			Source:       domain.Source(row.Source),
			CreatedAt:    row.CreatedAt,
			CrawledAt:    row.CrawledAt,
			Score:        row.Score,
			RoleCategory: domain.RoleCategory(row.RoleCategory),
			IsFeatured:   row.IsFeatured,
		},
		Slug:   row.Slug,
		Status: domain.Status(row.Status),
	}
	r.Tags = decodeList(row.Tags)
	r.KeywordsMatched = decodeList(row.KeywordsMatched)
	if row.ScoringFactors != "" {
		var f domain.ScoringFactors
		if json.Unmarshal([]byte(row.ScoringFactors), &f) == nil {
			r.ScoringFactors = &f
		}
	}
	return r
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func decodeList(raw string) []string {
	var out []string
	if json.Unmarshal([]byte(raw), &out) != nil || len(out) == 0 {
		return nil
	}
	return out
}
