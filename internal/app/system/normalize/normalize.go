// internal/app/system/normalize/normalize.go
package normalize

import (
	"regexp"
	"strings"
)

var schemeRE = regexp.MustCompile(`(?i)^https?://`)

// WebsiteURL turns free-form input into a link. Blank input yields nil;
// http(s) URLs are kept; anything that looks like a host ("example.org",
// "www.x") gets an https:// prefix; other text is returned trimmed.
func WebsiteURL(raw string) *string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return nil
	}
	if schemeRE.MatchString(u) {
		return &u
	}
	if strings.Contains(u, ".") || strings.HasPrefix(u, "www.") {
		u = "https://" + strings.TrimLeft(u, "/")
	}
	return &u
}

// Labels trims each value, drops empties and removes exact repeats,
// preserving first-seen order.
func Labels(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Optional returns nil for blank input and a pointer to the trimmed value
// otherwise.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
