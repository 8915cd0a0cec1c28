package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong with it.
// Hard errors come from Validate; everything here is advisory.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Crawlers = make([]Crawler, len(cfg.Crawlers))
	for i, c := range cfg.Crawlers {
		c.Name = strings.TrimSpace(c.Name)
		c.Source = strings.ToLower(strings.TrimSpace(c.Source))
		c.BaseURL = strings.TrimSpace(c.BaseURL)
		c.SearchTerms = trimList(c.SearchTerms)
		out.Crawlers[i] = c
	}
	out.Scoring.TrustedCompanies = trimList(out.Scoring.TrustedCompanies)

	if err := Validate(out); err != nil {
		for _, line := range strings.Split(strings.TrimPrefix(err.Error(), "config validation failed:\n- "), "\n- ") {
			res.addErr("%s", line)
		}
	}

	enabled := 0
	for _, c := range out.Crawlers {
		if !knownSources[c.Source] {
			res.addWarn("crawler %q has unknown source %q and will be skipped", c.Name, c.Source)
		}
		if c.Enabled {
			enabled++
		}
		if c.RateLimit > 60 {
			res.addWarn("crawler %q rate_limit is %d/min; public ATS APIs may throttle it", c.Name, c.RateLimit)
		}
	}
	if len(out.Crawlers) == 0 {
		res.addWarn("no crawlers configured")
	} else if enabled == 0 {
		res.addWarn("all crawlers are disabled; run_all will do nothing")
	}

	if out.Schedule.Enabled && strings.TrimSpace(out.Schedule.Spec) == "" {
		res.addErr("schedule.spec is required when schedule.enabled=true")
	}

	return out, res
}
