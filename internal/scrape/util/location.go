package util

import "strings"

// Place is one location label an ATS attaches to a posting, such as an office.
type Place struct {
	Name     string
	Location string
}

func (p Place) Label() string {
	if l := CleanText(p.Location); l != "" {
		return l
	}
	return CleanText(p.Name)
}

func (p Place) remote() bool {
	return strings.Contains(strings.ToLower(p.Name), "remote") ||
		strings.Contains(strings.ToLower(p.Location), "remote")
}

// PickLocation prefers a place that mentions remote, then the first place, then
// fallback. An empty result becomes "Remote".
func PickLocation(places []Place, fallback string) string {
	loc := fallback
	if len(places) > 0 {
		loc = places[0].Label()
		for _, p := range places {
			if p.remote() {
				loc = p.Label()
				break
			}
		}
	}
	if loc = CleanText(loc); loc == "" {
		return "Remote"
	}
	return loc
}

func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATIONS:")
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}
