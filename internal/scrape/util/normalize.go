package util

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanText collapses every whitespace run to one space and trims.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

var tagSplit = regexp.MustCompile(`[;,\n\t ]+`)

// NormalizeTags splits free-form tag input, lowercases it and drops duplicates,
// keeping first-appearance order.
func NormalizeTags(in ...string) []string {
	seen := map[string]bool{}
	var out []string
	for _, raw := range in {
		for _, t := range tagSplit.Split(raw, -1) {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// UniqueLower lowercases and dedups whole tags without splitting them.
func UniqueLower(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range in {
		t = strings.ToLower(CleanText(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// HTMLToText renders ATS description markup as plain text. Content that arrives
// entity-escaped (Greenhouse does this) is unescaped first.
func HTMLToText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if strings.Contains(s, "&lt;") {
		s = html.UnescapeString(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CleanText(s)
	}
	doc.Find("script,style").Remove()
	doc.Find("br,p,li,div,h1,h2,h3,h4,h5,h6").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})
	return CleanText(doc.Text())
}

var techKeywords = []string{
	"react", "javascript", "typescript", "node.js", "python", "java",
	"golang", "rust", "vue", "angular", "full-stack", "frontend", "backend",
}

// TechTags returns the tech keywords found anywhere in text, in a fixed order.
func TechTags(text string) []string {
	text = strings.ToLower(text)
	var out []string
	for _, k := range techKeywords {
		if strings.Contains(text, k) {
			out = append(out, k)
		}
	}
	return out
}
