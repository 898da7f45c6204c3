package article

import (
	"net/url"
	"strings"
)

// Placeholder is the href used when an article URL cannot be made safe.
const Placeholder = "#"

// SanitizeURL turns a raw sheet URL into an absolute http(s) URL.
//
// One layer of wrapping quotes is removed and https:// is prepended when no
// scheme is present. Anything that still fails to parse as an absolute URL with
// a host becomes Placeholder.
func SanitizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" || s == Placeholder {
		return Placeholder
	}

	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" || strings.ContainsAny(u.Host, " \t\r\n") {
		return Placeholder
	}
	return u.String()
}
