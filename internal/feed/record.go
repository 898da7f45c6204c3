package feed

import "strings"

// Field names used by the news sheet.
const (
	Headline      = "Headline"
	Summary       = "Summary"
	URL           = "URL"
	PublishedTime = "Published Time"
	Tickers       = "Tickers"
	ImageURL      = "Image URL"
)

// Record is one decoded data row keyed by header name.
type Record map[string]string

// Get returns the trimmed value for key, or "" if absent.
func (r Record) Get(key string) string {
	return strings.TrimSpace(r[key])
}

// SkipReason describes why a row was left out of a DecodeResult.
type SkipReason string

const (
	// ReasonFieldCount marks a row whose field count differs from the header.
	ReasonFieldCount SkipReason = "field_count"

	// ReasonNotObject marks a structured-list element that is not an object.
	ReasonNotObject SkipReason = "not_object"
)

// SkippedRow describes a row that was dropped during decoding.
// Row is the 1-based logical row in the input, with the header as row 1.
// Line is the 1-based physical line the row starts on.
type SkippedRow struct {
	Row    int        `json:"row" yaml:"row"`
	Line   int        `json:"line,omitempty" yaml:"line,omitempty"`
	Reason SkipReason `json:"reason" yaml:"reason"`
	Fields int        `json:"fields,omitempty" yaml:"fields,omitempty"`
	Want   int        `json:"want,omitempty" yaml:"want,omitempty"`
}

// DecodeResult holds the accepted records and the rows that were skipped.
type DecodeResult struct {
	Header  []string     `json:"header" yaml:"header"`
	Records []Record     `json:"records" yaml:"records"`
	Skipped []SkippedRow `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// HasHeadline reports whether the record has a non-blank Headline.
func HasHeadline(r Record) bool {
	return r.Get(Headline) != ""
}

// FilterHeadlines returns the records that carry a headline, preserving order,
// and the number of records that were dropped.
func FilterHeadlines(records []Record) ([]Record, int) {
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if HasHeadline(r) {
			kept = append(kept, r)
		}
	}
	return kept, len(records) - len(kept)
}
