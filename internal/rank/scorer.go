package rank

import (
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"remotejobs-crawler/internal/domain"
)

type Scorer interface {
	Score(job domain.CandidateJob) Result
}

type Result struct {
	Score           int                   `json:"score"`
	Factors         domain.ScoringFactors `json:"factors"`
	MatchedKeywords []string              `json:"matchedKeywords"`
}

type compiledCategory struct {
	Category
	set *termSet
}

// Engine is a Policy compiled into keyword automata. Safe for concurrent use.
type Engine struct {
	policy     Policy
	categories []compiledCategory
	byName     map[string]*termSet

	trusted        *termSet
	worldwide      *termSet
	negativeRegion *termSet
	latamCountries *termSet
	hybrid         *termSet
	brazilMention  *termSet
	globalCompany  *termSet
}

func NewEngine(p Policy) *Engine {
	e := &Engine{
		policy:         p,
		byName:         make(map[string]*termSet, len(p.Categories)),
		trusted:        newTermSet(p.TrustedCompanies),
		worldwide:      newTermSet(p.WorldwideTerms),
		negativeRegion: newTermSet(p.NegativeRegionTerms),
		latamCountries: newTermSet(p.LatamCountriesNotBrazil),
		hybrid:         newTermSet(p.HybridTerms),
		brazilMention:  newTermSet(p.ExplicitBrazilTerms),
		globalCompany:  newTermSet(p.GlobalCompanyTerms),
	}
	for _, c := range p.Categories {
		set := newTermSet(c.Keywords)
		e.categories = append(e.categories, compiledCategory{Category: c, set: set})
		e.byName[c.Name] = set
	}
	return e
}

func (e *Engine) Policy() Policy { return e.policy }

var defaultEngine = sync.OnceValue(func() *Engine { return NewEngine(DefaultPolicy()) })

// Default returns the shared engine built from DefaultPolicy.
func Default() *Engine { return defaultEngine() }

// CalculateJobScore scores a job under p. Callers scoring many jobs should keep an Engine.
func CalculateJobScore(job domain.CandidateJob, p Policy) Result {
	return NewEngine(p).Score(job)
}

func (e *Engine) category(name string) *termSet {
	if s, ok := e.byName[name]; ok {
		return s
	}
	return newTermSet(nil)
}

func scoringText(job domain.CandidateJob) string {
	parts := []string{job.Title, job.Company, job.Location, job.Description}
	if len(job.Tags) > 0 {
		parts = append(parts, strings.Join(job.Tags, " "))
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func (e *Engine) Score(job domain.CandidateJob) Result {
	p := e.policy
	text := scoringText(job)
	blob := []byte(text)
	location := strings.ToLower(job.Location)

	var score float64
	matched := []string{}

	var keywordScore float64
	for _, c := range e.categories {
		for _, kw := range c.set.hits(blob) {
			keywordScore += c.Weight
			matched = append(matched, kw)
		}
	}
	keywordScore = math.Min(keywordScore, p.KeywordCap)
	score += keywordScore

	companyRelevance := 0
	if e.trusted.any(blob) {
		companyRelevance = p.CompanyRelevance
		score *= p.CompanyMultiplier
	}

	salaryPresent := strings.TrimSpace(job.Salary) != ""
	if salaryPresent {
		score += p.SalaryBonus
	}

	descLen := utf8.RuneCountInString(job.Description)
	var descQuality float64
	if p.DescriptionMinLength > 0 {
		descQuality = math.Min(float64(descLen)/float64(p.DescriptionMinLength)*10, p.DescriptionMax)
	}
	score += descQuality

	hasRemote := e.category(CategoryRemote).any(blob)
	hasBrazilFriendly := e.category(CategoryBrazilFriendly).any(blob)
	hasBrazilMention := strings.Contains(text, "brazil") || strings.Contains(text, "brasil")
	worldwideLike := e.worldwide.any(blob)

	switch {
	case !hasRemote:
		score *= p.NotRemoteFactor
	case !hasBrazilFriendly && worldwideLike:
		score *= p.WorldwideFactor
	case !hasBrazilFriendly:
		score *= p.NotFriendlyFactor
	}

	locationRelevance := 0
	switch {
	case containsAny(location, "brazil", "brasil"):
		locationRelevance = 30
	case containsAny(location, "latam", "latin america"):
		locationRelevance = 25
	case containsAny(location, "south america", "americas"):
		locationRelevance = 20
	case strings.Contains(location, "remote") && containsAny(text, "brazil", "latam", "time zone"):
		locationRelevance = 15
	case hasBrazilFriendly:
		locationRelevance = 10
	case containsAny(location, "worldwide", "anywhere"):
		locationRelevance = 8
	}

	var quality float64
	if job.Salary != "" && containsAny(job.Salary, "-", "to", "USD") {
		quality += p.SalaryRangeBonus
	}
	if e.brazilMention.any(blob) {
		quality += p.BrazilMentionBonus
	}
	if e.globalCompany.any(blob) {
		quality += p.GlobalCompanyBonus
	}
	if strings.Contains(text, "english") && !strings.Contains(text, "english only") {
		quality += p.EnglishBonus
	}
	if descLen > p.LongDescriptionChars {
		quality += p.LongDescriptionBonus
	}
	score += quality

	if e.hybrid.any(blob) {
		score *= p.HybridPenalty
	}
	if e.negativeRegion.any(blob) {
		score *= p.NoramFactor
	}
	if e.latamCountries.any(blob) && !hasBrazilMention {
		score *= p.LatamNonBrazilFactor
		locationRelevance = max(locationRelevance-p.LatamLocationDrop, 0)
	}

	return Result{
		Score: roundScore(math.Min(score, p.MaxScore)),
		Factors: domain.ScoringFactors{
			KeywordMatch:       keywordScore,
			LocationRelevance:  locationRelevance,
			CompanyRelevance:   companyRelevance,
			SalaryPresent:      salaryPresent,
			DescriptionQuality: descQuality,
		},
		MatchedKeywords: matched,
	}
}

// roundScore rounds half up and clamps at zero.
func roundScore(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(math.Floor(v + 0.5))
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
