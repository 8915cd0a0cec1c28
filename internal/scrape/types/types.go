package types

import (
	"context"
	"errors"
	"time"

	"remotejobs-crawler/internal/domain"
)

const (
	DefaultMaxPages = 5
	// DefaultRateLimit applies when a config leaves RateLimit unset.
	DefaultRateLimit = 10
	// NextCrawlDelay is how long a finished crawl asks to be left alone.
	NextCrawlDelay = 4 * time.Hour
)

// ErrMissingURL means a crawler's base URL does not name a board to crawl.
var ErrMissingURL = errors.New("base url has no board slug")

// Config describes one crawler. RateLimit is requests per minute.
type Config struct {
	Name        string        `json:"name"`
	Source      domain.Source `json:"source"`
	BaseURL     string        `json:"baseUrl"`
	Enabled     bool          `json:"enabled"`
	RateLimit   int           `json:"rateLimit"`
	Timeout     time.Duration `json:"timeout"`
	MaxPages    int           `json:"maxPages,omitempty"`
	SearchTerms []string      `json:"searchTerms,omitempty"`
}

func (c Config) PageLimit() int {
	if c.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return c.MaxPages
}

// PerMinute is RateLimit, or DefaultRateLimit when that is not positive.
func (c Config) PerMinute() int {
	if c.RateLimit <= 0 {
		return DefaultRateLimit
	}
	return c.RateLimit
}

func (c Config) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 10 * time.Second
	}
	return c.Timeout
}

type Result struct {
	Success       bool                  `json:"success"`
	JobsFound     int                   `json:"jobsFound"`
	JobsProcessed int                   `json:"jobsProcessed"`
	Errors        []string              `json:"errors"`
	Jobs          []domain.CandidateJob `json:"jobs"`
	NextCrawlAt   *time.Time            `json:"nextCrawlAt,omitempty"`
}

// Crawler fetches one source. Crawl never returns an error: failures are
// reported in Result.Errors.
type Crawler interface {
	Name() string
	Config() Config
	Crawl(ctx context.Context) Result
}

// Page is one page of raw source records.
type Page[R any] struct {
	Records []R
	HasMore bool
}

// Adapter is everything source-specific about a crawler: how to fetch a page
// and how to read each field out of a raw record.
type Adapter[R any] interface {
	FetchPage(ctx context.Context, page int) (Page[R], error)

	Title(R) string
	Company(R) string
	Location(R) string
	Type(R) string
	Salary(R) string
	Description(R) string
	ApplyURL(R) string
	OriginalURL(R) string
	Tags(R) []string
	CreatedAt(R) string
}
