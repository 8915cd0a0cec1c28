package scrape

import (
	"strings"
	"time"

	"remotejobs-crawler/internal/config"
	"remotejobs-crawler/internal/domain"
	"remotejobs-crawler/internal/scrape/types"
)

func ConfigFromFile(c config.Crawler) types.Config {
	return types.Config{
		Name:        strings.TrimSpace(c.Name),
		Source:      domain.Source(strings.ToLower(strings.TrimSpace(c.Source))),
		BaseURL:     strings.TrimSpace(c.BaseURL),
		Enabled:     c.Enabled,
		RateLimit:   c.RateLimit,
		Timeout:     time.Duration(c.Timeout) * time.Millisecond,
		MaxPages:    c.MaxPages,
		SearchTerms: c.SearchTerms,
	}
}

func ConfigsFromFile(in []config.Crawler) []types.Config {
	out := make([]types.Config, 0, len(in))
	for _, c := range in {
		out = append(out, ConfigFromFile(c))
	}
	return out
}
