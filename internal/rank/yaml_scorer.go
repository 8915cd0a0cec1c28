package rank

import (
	"fmt"
	"os"
	"path/filepath"

	"remotejobs-crawler/internal/config"

	"gopkg.in/yaml.v3"
)

// LoadPolicyFile reads a complete policy. Fields missing from the file keep their defaults.
func LoadPolicyFile(path string) (Policy, error) {
	p := DefaultPolicy()
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("parse policy %s: %w", path, err)
	}
	return p, nil
}

// PolicyFromConfig starts from the policy file (or the defaults) and applies the
// scoring section of the app config on top.
func PolicyFromConfig(cfg config.Config, baseDir string) (Policy, error) {
	s := cfg.Scoring
	p := DefaultPolicy()
	if s.PolicyFile != "" {
		path := s.PolicyFile
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		var err error
		if p, err = LoadPolicyFile(path); err != nil {
			return p, err
		}
	}

	for i := range p.Categories {
		c := &p.Categories[i]
		if w, ok := s.Weights[c.Name]; ok {
			c.Weight = w
		}
		if extra := s.ExtraKeywords[c.Name]; len(extra) > 0 {
			c.Keywords = append(append([]string(nil), c.Keywords...), extra...)
		}
	}
	for name := range s.ExtraKeywords {
		if p.Category(name).Name == "" {
			return p, fmt.Errorf("scoring.extra_keywords: unknown category %q", name)
		}
	}
	if len(s.TrustedCompanies) > 0 {
		p.TrustedCompanies = append(append([]string(nil), p.TrustedCompanies...), s.TrustedCompanies...)
	}
	if s.CompanyMultiplier != nil {
		p.CompanyMultiplier = *s.CompanyMultiplier
	}
	if s.SalaryBonus != nil {
		p.SalaryBonus = *s.SalaryBonus
	}
	if s.DescriptionMinLength != nil {
		p.DescriptionMinLength = *s.DescriptionMinLength
	}
	if s.HybridPenalty != nil {
		p.HybridPenalty = *s.HybridPenalty
	}
	return p, nil
}

// NewYAMLScorer builds the engine the service runs with.
func NewYAMLScorer(cfg config.Config, baseDir string) (*Engine, error) {
	p, err := PolicyFromConfig(cfg, baseDir)
	if err != nil {
		return nil, err
	}
	return NewEngine(p), nil
}
