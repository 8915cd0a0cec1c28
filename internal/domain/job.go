package domain

import "time"

type Source string

const (
	SourceManual     Source = "manual"
	SourceGreenhouse Source = "greenhouse"
	SourceLever      Source = "lever"
	SourceAshby      Source = "ashby"
	SourceWorkable   Source = "workable"
	SourceOther      Source = "other"
)

func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceGreenhouse, SourceLever, SourceAshby, SourceWorkable, SourceOther:
		return true
	}
	return false
}

type RoleCategory string

const (
	RoleEngineering RoleCategory = "engineering"
	RoleProduct     RoleCategory = "product"
	RoleDesign      RoleCategory = "design"
	RoleQA          RoleCategory = "qa"
	RoleData        RoleCategory = "data"
	RoleMarketing   RoleCategory = "marketing"
	RoleOps         RoleCategory = "ops"
	RoleSales       RoleCategory = "sales"
	RoleSupport     RoleCategory = "support"
	RoleOther       RoleCategory = "other"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusRejected  Status = "rejected"
)

// ScoringFactors is the per-component breakdown behind a score, kept for auditing.
type ScoringFactors struct {
	KeywordMatch       float64 `json:"keywordMatch"`
	LocationRelevance  int     `json:"locationRelevance"`
	CompanyRelevance   int     `json:"companyRelevance"`
	SalaryPresent      bool    `json:"salaryPresent"`
	DescriptionQuality float64 `json:"descriptionQuality"`
}

// CandidateJob is a normalized, scored posting that has not been persisted yet.
type CandidateJob struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Company         string          `json:"company"`
	Location        string          `json:"location"`
	Type            string          `json:"type,omitempty"`
	Salary          string          `json:"salary,omitempty"`
	Description     string          `json:"description,omitempty"`
	OriginalURL     string          `json:"originalUrl,omitempty"`
	ApplyURL        string          `json:"applyUrl,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
	Source          Source          `json:"source"`
	CreatedAt       string          `json:"createdAt"`
	CrawledAt       string          `json:"crawledAt,omitempty"`
	Score           int             `json:"score"`
	KeywordsMatched []string        `json:"keywordsMatched,omitempty"`
	ScoringFactors  *ScoringFactors `json:"scoringFactors,omitempty"`
	RoleCategory    RoleCategory    `json:"roleCategory,omitempty"`
	IsFeatured      bool            `json:"isFeatured,omitempty"`
}

// CreatedTime parses CreatedAt; unparseable values sort as the zero time.
func (j CandidateJob) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339, j.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// JobRecord is what the job store persists.
type JobRecord struct {
	CandidateJob
	Slug   string `json:"slug,omitempty"`
	Status Status `json:"status"`
}
