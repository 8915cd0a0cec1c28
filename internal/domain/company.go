package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Boards whose slug does not read as the company name.
var companyAliases = map[string]string{
	"remotecom": "Remote",
	"gitlab":    "GitLab",
}

// CompanyFromSlug turns an ATS board slug into a display name.
func CompanyFromSlug(slug string) string {
	s := strings.ToLower(strings.TrimSpace(slug))
	if s == "" {
		return "Company"
	}
	if name, ok := companyAliases[s]; ok {
		return name
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
