package feed

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Sentinel datelines. They are distinct so a renderer can style a missing
// timestamp differently from a broken one.
const (
	NotAvailable = "N/A"
	InvalidDate  = "Invalid Date"
)

// DatelineLayout renders en-US long dates with a 2-digit 12-hour clock,
// e.g. "March 1, 2024 at 02:30 PM".
const DatelineLayout = "January 2, 2006 at 03:04 PM"

// Normalizer turns loosely formatted timestamps into datelines.
// Values without a zone are read as wall-clock time in the display location.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer returns a Normalizer rendering in loc. A nil loc means UTC.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// Location returns the display location.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

var defaultNormalizer = NewNormalizer(time.UTC)

// Normalize renders v with a UTC Normalizer.
func Normalize(v any) string {
	return defaultNormalizer.Normalize(v)
}

// Normalize returns the dateline for v.
// Blank, nil or non-string input returns NotAvailable; input that cannot be
// parsed returns InvalidDate.
func (n *Normalizer) Normalize(v any) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return NotAvailable
	}

	t, ok := n.Parse(s)
	if !ok {
		return InvalidDate
	}
	return t.Format(DatelineLayout)
}

// Parse applies the timestamp cleanups and returns the parsed time.
// The second attempt replaces the first 'T' with a space.
func (n *Normalizer) Parse(raw string) (time.Time, bool) {
	s := cleanTimestamp(raw)
	if s == "" {
		return time.Time{}, false
	}

	if t, ok := n.parse(s); ok {
		return t, true
	}
	if strings.Contains(s, "T") {
		return n.parse(strings.Replace(s, "T", " ", 1))
	}
	return time.Time{}, false
}

func (n *Normalizer) parse(s string) (t time.Time, ok bool) {
	// dateparse can panic on some malformed input.
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()

	t, err := dateparse.ParseIn(s, n.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t.In(n.loc), true
}

// cleanTimestamp trims, strips one layer of wrapping quotes, drops a trailing
// Z and discards fractional seconds.
func cleanTimestamp(raw string) string {
	s := strings.TrimSpace(raw)

	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}

	s = strings.TrimSuffix(s, "Z")

	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i]
	}

	return s
}
