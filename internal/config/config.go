package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Crawler is one configured crawler. RateLimit is requests per minute, Timeout is milliseconds.
type Crawler struct {
	Name        string   `yaml:"name" json:"name"`
	Source      string   `yaml:"source" json:"source"`
	BaseURL     string   `yaml:"base_url" json:"baseUrl"`
	Enabled     bool     `yaml:"enabled" json:"enabled"`
	RateLimit   int      `yaml:"rate_limit" json:"rateLimit"`
	Timeout     int      `yaml:"timeout" json:"timeout"`
	MaxPages    int      `yaml:"max_pages,omitempty" json:"maxPages,omitempty"`
	SearchTerms []string `yaml:"search_terms,omitempty" json:"searchTerms,omitempty"`
}

type Scoring struct {
	PolicyFile           string              `yaml:"policy_file,omitempty"`
	Weights              map[string]float64  `yaml:"weights,omitempty"`
	ExtraKeywords        map[string][]string `yaml:"extra_keywords,omitempty"`
	TrustedCompanies     []string            `yaml:"trusted_companies,omitempty"`
	CompanyMultiplier    *float64            `yaml:"company_multiplier,omitempty"`
	SalaryBonus          *float64            `yaml:"salary_bonus,omitempty"`
	DescriptionMinLength *int                `yaml:"description_min_length,omitempty"`
	HybridPenalty        *float64            `yaml:"hybrid_penalty,omitempty"`
}

type Config struct {
	App struct {
		Port     int    `yaml:"port"`
		DataDir  string `yaml:"data_dir"`
		LogLevel string `yaml:"log_level"`
		Dev      bool   `yaml:"dev"`
	} `yaml:"app"`

	Store struct {
		Driver string `yaml:"driver"` // sqlite | postgres | file
		DSN    string `yaml:"dsn"`
		Path   string `yaml:"path"`
	} `yaml:"store"`

	History struct {
		Driver   string `yaml:"driver"` // memory | redis
		RedisURL string `yaml:"redis_url"`
	} `yaml:"history"`

	Schedule struct {
		Enabled bool   `yaml:"enabled"`
		Spec    string `yaml:"spec"`
	} `yaml:"schedule"`

	Manager struct {
		InterCrawlerDelayMS int `yaml:"inter_crawler_delay_ms"`
	} `yaml:"manager"`

	Scoring Scoring `yaml:"scoring"`

	Crawlers []Crawler `yaml:"crawlers"`
}

func Defaults() Config {
	var cfg Config
	cfg.App.Port = 8787
	cfg.App.DataDir = "."
	cfg.App.LogLevel = "info"
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = "jobs.db"
	cfg.History.Driver = "memory"
	cfg.Schedule.Enabled = true
	cfg.Schedule.Spec = "@every 4h"
	cfg.Manager.InterCrawlerDelayMS = 2000
	cfg.Crawlers = DefaultCrawlers()
	return cfg
}

// DefaultCrawlers are the boards crawled when no crawler list is configured.
func DefaultCrawlers() []Crawler {
	return []Crawler{
		{
			Name:        "Remote.com Greenhouse",
			Source:      "greenhouse",
			BaseURL:     "https://job-boards.greenhouse.io/remotecom",
			Enabled:     true,
			RateLimit:   10,
			Timeout:     10000,
			MaxPages:    3,
			SearchTerms: []string{"remote", "latam", "brazil"},
		},
		{
			Name:        "GitLab Greenhouse",
			Source:      "greenhouse",
			BaseURL:     "https://job-boards.greenhouse.io/gitlab",
			Enabled:     true,
			RateLimit:   10,
			Timeout:     10000,
			MaxPages:    5,
			SearchTerms: []string{"engineering", "developer", "remote", "latam"},
		},
	}
}

func (c Config) InterCrawlerDelay() time.Duration {
	return time.Duration(c.Manager.InterCrawlerDelayMS) * time.Millisecond
}

// Load reads path over the defaults. Sections missing from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
