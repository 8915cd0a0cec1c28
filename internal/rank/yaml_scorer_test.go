package rank

import (
	"os"
	"path/filepath"
	"testing"

	"remotejobs-crawler/internal/config"
	"remotejobs-crawler/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyFromConfig(t *testing.T) {
	cfg := config.Defaults()
	hybrid := 0.5
	cfg.Scoring.HybridPenalty = &hybrid
	cfg.Scoring.Weights = map[string]float64{"levels": 4}
	cfg.Scoring.ExtraKeywords = map[string][]string{"backend": {"elixir"}}
	cfg.Scoring.TrustedCompanies = []string{"acme"}

	p, err := PolicyFromConfig(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, 0.5, p.HybridPenalty)
	assert.Equal(t, 4.0, p.Category("levels").Weight)
	assert.Contains(t, p.Category("backend").Keywords, "elixir")
	assert.Contains(t, p.TrustedCompanies, "acme")

	assert.NotContains(t, DefaultPolicy().Category("backend").Keywords, "elixir")

	res := NewEngine(p).Score(domain.CandidateJob{Title: "Elixir Engineer", Company: "Acme", Location: "Brazil (Remote)"})
	assert.Contains(t, res.MatchedKeywords, "elixir")
	assert.Equal(t, 10, res.Factors.CompanyRelevance)
}

func TestPolicyFromConfigUnknownCategory(t *testing.T) {
	cfg := config.Defaults()
	cfg.Scoring.ExtraKeywords = map[string][]string{"astrology": {"tarot"}}
	_, err := PolicyFromConfig(cfg, "")
	assert.ErrorContains(t, err, `unknown category "astrology"`)
}

func TestLoadPolicyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "policy.yml"), []byte("keyword_cap: 40\nnoram_factor: 0.2\n"), 0o644))

	cfg := config.Defaults()
	cfg.Scoring.PolicyFile = "policy.yml"
	p, err := PolicyFromConfig(cfg, dir)
	require.NoError(t, err)
	assert.Equal(t, 40.0, p.KeywordCap)
	assert.Equal(t, 0.2, p.NoramFactor)
	assert.Equal(t, 1.3, p.CompanyMultiplier)
	assert.Len(t, p.Categories, 16)

	_, err = LoadPolicyFile(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}
