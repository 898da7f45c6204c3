// Package article builds render-ready news items from decoded feed records.
package article

import (
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JonMunkholm/newsdesk/internal/feed"
)

// DefaultSummaryLimit is the number of runes shown before a summary is cut.
const DefaultSummaryLimit = 300

// Article is one news item ready for display. Fields are plain text; escaping
// is the renderer's job.
type Article struct {
	Headline         string    `json:"headline" yaml:"headline"`
	Summary          string    `json:"summary" yaml:"summary"`
	SummaryTruncated bool      `json:"summaryTruncated" yaml:"summary_truncated"`
	URL              string    `json:"url" yaml:"url"`
	Dateline         string    `json:"dateline" yaml:"dateline"`
	Published        time.Time `json:"published,omitempty" yaml:"published,omitempty"`
	HasTime          bool      `json:"hasTime" yaml:"has_time"`
	Tickers          string    `json:"tickers,omitempty" yaml:"tickers,omitempty"`
	ImageURL         string    `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
	Breaking         bool      `json:"breaking" yaml:"breaking"`
}

// HasLink reports whether the article links somewhere real.
func (a Article) HasLink() bool {
	return a.URL != Placeholder
}

// Builder converts records into articles.
type Builder struct {
	Normalizer   *feed.Normalizer
	SummaryLimit int
	Logger       *slog.Logger
}

// NewBuilder returns a Builder with the default summary limit.
func NewBuilder(n *feed.Normalizer) *Builder {
	return &Builder{Normalizer: n, SummaryLimit: DefaultSummaryLimit}
}

// Build filters out records without a headline, sorts the rest newest first
// and maps them to articles. The first article is marked Breaking.
// The input slice is not modified.
func (b *Builder) Build(records []feed.Record) []Article {
	n := b.Normalizer
	if n == nil {
		n = feed.NewNormalizer(nil)
	}
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	kept, _ := feed.FilterHeadlines(records)
	n.SortByRecency(kept)

	out := make([]Article, len(kept))
	for i, rec := range kept {
		a := b.article(n, rec)
		a.Breaking = i == 0
		if a.Summary == "" {
			logger.Debug("summary missing", "headline", a.Headline)
		}
		out[i] = a
	}
	return out
}

func (b *Builder) article(n *feed.Normalizer, rec feed.Record) Article {
	limit := b.SummaryLimit
	if limit <= 0 {
		limit = DefaultSummaryLimit
	}

	summary, cut := truncate(rec.Get(feed.Summary), limit)

	a := Article{
		Headline:         rec.Get(feed.Headline),
		Summary:          summary,
		SummaryTruncated: cut,
		URL:              SanitizeURL(rec[feed.URL]),
		Tickers:          tickers(rec.Get(feed.Tickers)),
		ImageURL:         rec.Get(feed.ImageURL),
	}

	published := rec[feed.PublishedTime]
	a.Dateline = n.Normalize(published)
	if t, ok := n.Parse(published); ok {
		a.Published = t
		a.HasTime = true
	}

	return a
}

// truncate cuts s to limit runes and appends "..." when anything was removed.
func truncate(s string, limit int) (string, bool) {
	if utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	runes := []rune(s)
	return string(runes[:limit]) + "...", true
}

func tickers(s string) string {
	if strings.EqualFold(s, feed.NotAvailable) {
		return ""
	}
	return s
}
