package rank

import (
	"sort"
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// termSet answers substring questions for a fixed term list in one pass over the text.
// The underlying matcher keeps per-call counters, so matching is serialized.
type termSet struct {
	mu      sync.Mutex
	terms   []string
	matcher *ahocorasick.Matcher
}

func newTermSet(terms []string) *termSet {
	ts := &termSet{}
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		ts.terms = append(ts.terms, t)
	}
	if len(ts.terms) > 0 {
		ts.matcher = ahocorasick.NewStringMatcher(ts.terms)
	}
	return ts
}

// hits returns the matched terms in list order.
func (ts *termSet) hits(text []byte) []string {
	if ts.matcher == nil {
		return nil
	}
	ts.mu.Lock()
	idx := ts.matcher.Match(text)
	ts.mu.Unlock()

	sort.Ints(idx)
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		if i >= 0 && i < len(ts.terms) {
			out = append(out, ts.terms[i])
		}
	}
	return out
}

func (ts *termSet) any(text []byte) bool {
	return len(ts.hits(text)) > 0
}
