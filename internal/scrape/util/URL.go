package util

import (
	"errors"
	"net/url"
	"path"
	"sort"
	"strings"
)

var ErrNoHost = errors.New("url has no host")

// IsValidURL reports whether raw is an absolute URL.
func IsValidURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != ""
}

// ExtractDomain returns the hostname of raw without a leading "www.".
func ExtractDomain(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", ErrNoHost
	}
	return strings.TrimPrefix(u.Hostname(), "www."), nil
}

// LastPathSegment returns the final non-empty path segment, e.g. the board slug of
// https://job-boards.greenhouse.io/gitlab.
func LastPathSegment(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// CanonicalizeURL strips tracking parameters and fragments so the same posting
// linked from different places compares equal.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "gh_src" || lk == "lever-source" || lk == "lever-origin" {
			q.Del(k)
		}
	}

	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}
