package lever

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"remotejobs-crawler/internal/domain"
	"remotejobs-crawler/internal/scrape"
	"remotejobs-crawler/internal/scrape/types"
	"remotejobs-crawler/internal/scrape/util"
)

const (
	DefaultAPIBase = "https://api.lever.co/v0/postings"
	pageSize       = 100
)

type Posting struct {
	ID               string `json:"id"`
	Text             string `json:"text"` // title
	HostedURL        string `json:"hostedUrl"`
	ApplyURL         string `json:"applyUrl"`
	CreatedAt        int64  `json:"createdAt"` // ms epoch
	WorkplaceType    string `json:"workplaceType"`
	Description      string `json:"description"` // html
	DescriptionPlain string `json:"descriptionPlain"`
	Categories       struct {
		Location   string `json:"location"`
		Commitment string `json:"commitment"`
		Team       string `json:"team"`
		Department string `json:"department"`
	} `json:"categories"`
	SalaryRange *struct {
		Min      float64 `json:"min"`
		Max      float64 `json:"max"`
		Currency string  `json:"currency"`
	} `json:"salaryRange"`
}

// Adapter reads one company's postings from the Lever postings API. Lever has
// no page numbers, so page N is fetched with skip=(N-1)*100.
type Adapter struct {
	client  *util.JSONClient
	apiBase string
	slug    string
	company string
}

type AdapterOption func(*Adapter)

func WithAPIBase(base string) AdapterOption {
	return func(a *Adapter) { a.apiBase = strings.TrimRight(base, "/") }
}

func NewAdapter(cfg types.Config, client *util.JSONClient, opts ...AdapterOption) *Adapter {
	slug := util.LastPathSegment(cfg.BaseURL)
	a := &Adapter{
		client:  client,
		apiBase: DefaultAPIBase,
		slug:    slug,
		company: domain.CompanyFromSlug(slug),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func New(cfg types.Config, client *util.JSONClient, opts []AdapterOption, crawlOpts ...scrape.Option) types.Crawler {
	return scrape.New[Posting](cfg, NewAdapter(cfg, client, opts...), crawlOpts...)
}

func (a *Adapter) pageURL(page int) string {
	q := url.Values{}
	q.Set("mode", "json")
	q.Set("skip", fmt.Sprint((page-1)*pageSize))
	q.Set("limit", fmt.Sprint(pageSize))
	return fmt.Sprintf("%s/%s?%s", a.apiBase, url.PathEscape(a.slug), q.Encode())
}

func (a *Adapter) FetchPage(ctx context.Context, page int) (types.Page[Posting], error) {
	if a.slug == "" {
		return types.Page[Posting]{}, fmt.Errorf("lever: %w", types.ErrMissingURL)
	}
	var postings []Posting
	if err := a.client.GetJSON(ctx, a.pageURL(page), &postings); err != nil {
		return types.Page[Posting]{}, err
	}
	return types.Page[Posting]{Records: postings, HasMore: len(postings) >= pageSize}, nil
}

func (a *Adapter) Title(p Posting) string       { return util.CleanText(p.Text) }
func (a *Adapter) Company(Posting) string       { return a.company }
func (a *Adapter) OriginalURL(p Posting) string { return p.HostedURL }

func (a *Adapter) ApplyURL(p Posting) string {
	if p.ApplyURL != "" {
		return p.ApplyURL
	}
	return p.HostedURL
}

func (a *Adapter) Location(p Posting) string {
	loc := util.NormalizeLocation(p.Categories.Location)
	if loc == "" {
		return "Remote"
	}
	if strings.EqualFold(p.WorkplaceType, "remote") && !strings.Contains(strings.ToLower(loc), "remote") {
		return loc + " (Remote)"
	}
	return loc
}

func (a *Adapter) Type(p Posting) string {
	if t := util.CleanText(p.Categories.Commitment); t != "" {
		return t
	}
	return "Full-time"
}

func (a *Adapter) Salary(p Posting) string {
	sr := p.SalaryRange
	if sr == nil || (sr.Min == 0 && sr.Max == 0) {
		return ""
	}
	cur := sr.Currency
	if cur == "" {
		cur = "USD"
	}
	return fmt.Sprintf("%s %.0f - %.0f", cur, sr.Min, sr.Max)
}

func (a *Adapter) Description(p Posting) string {
	if d := util.CleanText(p.DescriptionPlain); d != "" {
		return d
	}
	return util.HTMLToText(p.Description)
}

func (a *Adapter) Tags(p Posting) []string {
	var tags []string
	for _, t := range []string{p.Categories.Team, p.Categories.Department} {
		if t != "" {
			tags = append(tags, strings.ToLower(t))
		}
	}
	return append(tags, util.TechTags(p.Text+" "+a.Description(p))...)
}

func (a *Adapter) CreatedAt(p Posting) string {
	if p.CreatedAt <= 0 {
		return ""
	}
	return time.UnixMilli(p.CreatedAt).UTC().Format(time.RFC3339)
}
