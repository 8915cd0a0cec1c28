package rank

// AcceptanceThreshold is the minimum score a crawled posting needs to leave its crawler.
// It lives outside Policy so overrides cannot move it.
const AcceptanceThreshold = 30

const (
	CategoryRemote         = "remote"
	CategoryBrazilFriendly = "brazilFriendly"
)

type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Weight   float64  `yaml:"weight" json:"weight"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Policy holds every knob of CalculateJobScore. Categories are evaluated in slice order,
// which is also the order of Result.MatchedKeywords.
type Policy struct {
	Categories []Category `yaml:"categories" json:"categories"`

	TrustedCompanies        []string `yaml:"trusted_companies" json:"trustedCompanies"`
	WorldwideTerms          []string `yaml:"worldwide_terms" json:"worldwideTerms"`
	NegativeRegionTerms     []string `yaml:"negative_region_terms" json:"negativeRegionTerms"`
	LatamCountriesNotBrazil []string `yaml:"latam_countries_not_brazil" json:"latamCountriesNotBrazil"`
	HybridTerms             []string `yaml:"hybrid_terms" json:"hybridTerms"`
	ExplicitBrazilTerms     []string `yaml:"explicit_brazil_terms" json:"explicitBrazilTerms"`
	GlobalCompanyTerms      []string `yaml:"global_company_terms" json:"globalCompanyTerms"`

	KeywordCap           float64 `yaml:"keyword_cap" json:"keywordCap"`
	CompanyMultiplier    float64 `yaml:"company_multiplier" json:"companyMultiplier"`
	CompanyRelevance     int     `yaml:"company_relevance" json:"companyRelevance"`
	SalaryBonus          float64 `yaml:"salary_bonus" json:"salaryBonus"`
	DescriptionMinLength int     `yaml:"description_min_length" json:"descriptionMinLength"`
	DescriptionMax       float64 `yaml:"description_max" json:"descriptionMax"`

	NotRemoteFactor      float64 `yaml:"not_remote_factor" json:"notRemoteFactor"`
	NotFriendlyFactor    float64 `yaml:"not_friendly_factor" json:"notFriendlyFactor"`
	WorldwideFactor      float64 `yaml:"worldwide_factor" json:"worldwideFactor"`
	HybridPenalty        float64 `yaml:"hybrid_penalty" json:"hybridPenalty"`
	NoramFactor          float64 `yaml:"noram_factor" json:"noramFactor"`
	LatamNonBrazilFactor float64 `yaml:"latam_non_brazil_factor" json:"latamNonBrazilFactor"`
	LatamLocationDrop    int     `yaml:"latam_location_drop" json:"latamLocationDrop"`

	SalaryRangeBonus     float64 `yaml:"salary_range_bonus" json:"salaryRangeBonus"`
	BrazilMentionBonus   float64 `yaml:"brazil_mention_bonus" json:"brazilMentionBonus"`
	GlobalCompanyBonus   float64 `yaml:"global_company_bonus" json:"globalCompanyBonus"`
	EnglishBonus         float64 `yaml:"english_bonus" json:"englishBonus"`
	LongDescriptionBonus float64 `yaml:"long_description_bonus" json:"longDescriptionBonus"`
	LongDescriptionChars int     `yaml:"long_description_chars" json:"longDescriptionChars"`

	MaxScore float64 `yaml:"max_score" json:"maxScore"`
}

// Category returns the named category, or the zero value.
func (p Policy) Category(name string) Category {
	for _, c := range p.Categories {
		if c.Name == name {
			return c
		}
	}
	return Category{}
}

func DefaultPolicy() Policy {
	return Policy{
		Categories: []Category{
			{Name: "frontend", Weight: 5, Keywords: []string{"react", "javascript", "typescript", "vue", "angular", "next.js", "tailwind", "css", "html"}},
			{Name: "backend", Weight: 5, Keywords: []string{"node.js", "node", "python", "java", "golang", "go", "rust", "php", "ruby", "c#", "scala"}},
			{Name: "fullstack", Weight: 5, Keywords: []string{"full-stack", "fullstack", "full stack", "full-stack developer", "fullstack engineer"}},
			{Name: "mobile", Weight: 5, Keywords: []string{"react-native", "react native", "flutter", "ios", "android", "mobile", "kotlin", "swift"}},
			{Name: "devops", Weight: 5, Keywords: []string{"aws", "docker", "kubernetes", "terraform", "ci/cd", "azure", "gcp", "sre", "devops"}},
			{Name: "data", Weight: 5, Keywords: []string{"data-science", "data science", "machine-learning", "machine learning", "ml", "ai", "analytics", "python", "sql", "data engineer"}},
			{Name: "product", Weight: 5, Keywords: []string{"product manager", "pm", "product owner", "technical program manager", "tpm", "product marketing", "product lead"}},
			{Name: "design", Weight: 5, Keywords: []string{"product designer", "ux", "ui", "ux/ui", "design system", "ux researcher", "visual designer", "graphic designer", "ui/ux"}},
			{Name: "marketing", Weight: 5, Keywords: []string{"growth", "performance marketing", "seo", "content marketing", "demand generation", "digital marketing", "marketing manager", "growth hacker"}},
			{Name: "sales", Weight: 5, Keywords: []string{"account executive", "ae", "sales engineer", "solutions engineer", "bd", "business development", "sales manager", "account manager", "sales rep"}},
			{Name: "support", Weight: 5, Keywords: []string{"customer support", "customer success", "technical support", "success manager", "customer care", "client success", "support specialist"}},
			{Name: "qa", Weight: 5, Keywords: []string{"qa", "quality assurance", "test automation", "sdet", "testing", "qa engineer", "test engineer"}},
			{Name: "leadership", Weight: 5, Keywords: []string{"manager", "lead", "director", "head", "vp", "chief", "coordinator", "specialist"}},
			{Name: "levels", Weight: 2, Keywords: []string{"junior", "jr", "pleno", "mid-level", "senior", "sr", "staff", "principal", "lead", "director", "head", "vp"}},
			{Name: CategoryRemote, Weight: 25, Keywords: []string{"remote", "remoto", "trabalho remoto", "home office", "distributed", "anywhere", "worldwide", "global", "work from anywhere", "100% remote", "fully remote"}},
			{Name: CategoryBrazilFriendly, Weight: 35, Keywords: []string{"brazil", "brasil", "latin america", "latam", "south america", "americas", "same time zone", "americas time zone", "utc-3", "gmt-3", "time zone: americas"}},
		},
		TrustedCompanies: []string{
			"remote", "remote.com", "gitlab", "automattic", "shopify", "stripe", "buffer", "zapier", "doist",
			"basecamp", "ghost", "hotjar", "toggl", "toptal", "x-team", "turing", "deel", "workana", "upwork",
			"nubank", "stone", "ifood", "mercadolivre", "vtex", "totvs", "spotify", "uber", "airbnb", "netflix",
			"microsoft", "google", "amazon", "facebook", "meta", "twitter", "linkedin", "github",
		},
		WorldwideTerms: []string{
			"worldwide", "anywhere", "work from anywhere", "no location restrictions", "no location restriction",
			"no location requirements", "no geographic restrictions", "global",
		},
		NegativeRegionTerms: []string{
			"noram", "north america only", "north-america only", "north america", "north-america",
			"us only", "usa only", "u.s. only", "canada only", "us & canada", "must be in us", "must be in canada",
			"apenas américa do norte", "somente américa do norte", "apenas eua", "somente eua",
			"somente estados unidos", "apenas estados unidos", "somente canadá", "apenas canadá",
			"solo norteamérica", "solo ee.uu.", "solo estados unidos", "solo canadá",
		},
		LatamCountriesNotBrazil: []string{
			"argentina", "colombia", "chile", "peru", "mexico", "uruguay", "paraguay", "ecuador", "bolivia",
			"venezuela", "guatemala", "costa rica", "panama", "dominican republic", "honduras", "nicaragua",
			"el salvador", "puerto rico",
		},
		HybridTerms:         []string{"hybrid", "híbrido", "on-site", "onsite", "office-based", "in office"},
		ExplicitBrazilTerms: []string{"brazil", "brazilian", "brasil", "latam", "latin america", "south america"},
		GlobalCompanyTerms:  []string{"global", "international", "worldwide", "distributed team", "remote-first"},

		KeywordCap:           60,
		CompanyMultiplier:    1.3,
		CompanyRelevance:     10,
		SalaryBonus:          15,
		DescriptionMinLength: 200,
		DescriptionMax:       10,

		NotRemoteFactor:      0.1,
		NotFriendlyFactor:    0.1,
		WorldwideFactor:      0.6,
		HybridPenalty:        0.1,
		NoramFactor:          0.3,
		LatamNonBrazilFactor: 0.5,
		LatamLocationDrop:    15,

		SalaryRangeBonus:     8,
		BrazilMentionBonus:   10,
		GlobalCompanyBonus:   5,
		EnglishBonus:         3,
		LongDescriptionBonus: 5,
		LongDescriptionChars: 500,

		MaxScore: 100,
	}
}
