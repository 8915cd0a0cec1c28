package scrape

import (
	"fmt"
	"math/rand/v2"
	"time"

	"remotejobs-crawler/internal/domain"
	"remotejobs-crawler/internal/rank"
	"remotejobs-crawler/internal/scrape/types"
	"remotejobs-crawler/internal/scrape/util"
)

// Scorer scores and classifies candidates. *rank.Engine implements it.
type Scorer interface {
	rank.Scorer
	InferRoleCategory(job domain.CandidateJob) domain.RoleCategory
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateID returns {source}-{unixMillis}-{6 random base36 chars}.
func GenerateID(source domain.Source, now time.Time) string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return fmt.Sprintf("%s-%d-%s", source, now.UnixMilli(), b)
}

// NormalizeAndScore maps one raw record to a scored candidate. accepted is false
// when the score is under rank.AcceptanceThreshold. A panic inside the adapter is
// returned as an error so one bad record never takes the page down.
func NormalizeAndScore[R any](raw R, a types.Adapter[R], cfg types.Config, scorer Scorer, now time.Time) (job domain.CandidateJob, accepted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			job, accepted, err = domain.CandidateJob{}, false, fmt.Errorf("extract record: %v", r)
		}
	}()

	stamp := now.UTC().Format(time.RFC3339)
	job = domain.CandidateJob{
		ID:          GenerateID(cfg.Source, now),
		Title:       a.Title(raw),
		Company:     a.Company(raw),
		Location:    a.Location(raw),
		Type:        a.Type(raw),
		Salary:      a.Salary(raw),
		Description: a.Description(raw),
		ApplyURL:    a.ApplyURL(raw),
		OriginalURL: a.OriginalURL(raw),
		Tags:        util.UniqueLower(a.Tags(raw)),
		Source:      cfg.Source,
		CrawledAt:   stamp,
		CreatedAt:   a.CreatedAt(raw),
	}
	if job.CreatedAt == "" {
		job.CreatedAt = stamp
	}
	job.RoleCategory = scorer.InferRoleCategory(job)

	res := scorer.Score(job)
	job.Score = res.Score
	job.KeywordsMatched = res.MatchedKeywords
	factors := res.Factors
	job.ScoringFactors = &factors

	return job, res.Score >= rank.AcceptanceThreshold, nil
}
