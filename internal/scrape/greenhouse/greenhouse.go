package greenhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"remotejobs-crawler/internal/domain"
	"remotejobs-crawler/internal/scrape"
	"remotejobs-crawler/internal/scrape/types"
	"remotejobs-crawler/internal/scrape/util"
)

const (
	DefaultAPIBase = "https://boards-api.greenhouse.io/v1/boards"
	pageSize       = 100
)

type Job struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
	Content     string `json:"content"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Departments []struct {
		Name string `json:"name"`
	} `json:"departments"`
	Offices []struct {
		Name     string         `json:"name"`
		Location OfficeLocation `json:"location"`
	} `json:"offices"`
	Metadata []Metadata `json:"metadata"`
}

// OfficeLocation arrives either as a plain string or as {"name": ...}.
type OfficeLocation string

func (l *OfficeLocation) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = OfficeLocation(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("office location: %w", err)
	}
	*l = OfficeLocation(obj.Name)
	return nil
}

type Metadata struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func (m Metadata) String() string {
	switch v := m.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

type listResponse struct {
	Jobs []Job `json:"jobs"`
}

// Adapter reads one Greenhouse job board through the public boards API.
type Adapter struct {
	client  *util.JSONClient
	apiBase string
	slug    string
	company string
}

type AdapterOption func(*Adapter)

// WithAPIBase points the adapter at another boards API root.
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

// New builds a ready crawler for cfg.
func New(cfg types.Config, client *util.JSONClient, opts []AdapterOption, crawlOpts ...scrape.Option) types.Crawler {
	return scrape.New[Job](cfg, NewAdapter(cfg, client, opts...), crawlOpts...)
}

func (a *Adapter) pageURL(page int) string {
	q := url.Values{}
	q.Set("content", "true")
	q.Set("page", fmt.Sprint(page))
	q.Set("limit", fmt.Sprint(pageSize))
	return fmt.Sprintf("%s/%s/jobs?%s", a.apiBase, url.PathEscape(a.slug), q.Encode())
}

func (a *Adapter) FetchPage(ctx context.Context, page int) (types.Page[Job], error) {
	if a.slug == "" {
		return types.Page[Job]{}, fmt.Errorf("greenhouse: %w", types.ErrMissingURL)
	}
	var body listResponse
	if err := a.client.GetJSON(ctx, a.pageURL(page), &body); err != nil {
		return types.Page[Job]{}, err
	}
	return types.Page[Job]{Records: body.Jobs, HasMore: len(body.Jobs) >= pageSize}, nil
}

func (a *Adapter) Title(j Job) string    { return util.CleanText(j.Title) }
func (a *Adapter) Company(Job) string    { return a.company }
func (a *Adapter) ApplyURL(j Job) string { return j.AbsoluteURL }

func (a *Adapter) OriginalURL(j Job) string { return j.AbsoluteURL }
func (a *Adapter) CreatedAt(j Job) string   { return j.UpdatedAt }

func (a *Adapter) Location(j Job) string {
	places := make([]util.Place, 0, len(j.Offices))
	for _, o := range j.Offices {
		places = append(places, util.Place{Name: o.Name, Location: string(o.Location)})
	}
	return util.PickLocation(places, j.Location.Name)
}

func (a *Adapter) Type(j Job) string {
	for _, m := range j.Metadata {
		n := strings.ToLower(m.Name)
		if strings.Contains(n, "type") || strings.Contains(n, "employment") {
			if v := util.CleanText(m.String()); v != "" {
				return v
			}
		}
	}
	return "Full-time"
}

var salaryRe = regexp.MustCompile(`(?i)(\$[\d,]+\s*-\s*\$[\d,]+|\$[\d,]+k?\+?|R\$[\d,]+\s*-\s*R\$[\d,]+)`)

func (a *Adapter) Salary(j Job) string {
	if m := salaryRe.FindString(html.UnescapeString(j.Content)); m != "" {
		return m
	}
	for _, m := range j.Metadata {
		n := strings.ToLower(m.Name)
		if strings.Contains(n, "salary") || strings.Contains(n, "compensation") {
			if v := util.CleanText(m.String()); v != "" {
				return v
			}
		}
	}
	return ""
}

func (a *Adapter) Description(j Job) string { return util.HTMLToText(j.Content) }

func (a *Adapter) Tags(j Job) []string {
	var tags []string
	for _, d := range j.Departments {
		if d.Name != "" {
			tags = append(tags, strings.ToLower(d.Name))
		}
	}
	return append(tags, util.TechTags(j.Title+" "+html.UnescapeString(j.Content))...)
}
