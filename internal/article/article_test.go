package article

import (
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/newsdesk/internal/feed"
)

func TestBuild(t *testing.T) {
	records := []feed.Record{
		{feed.Headline: "Older", feed.PublishedTime: "2024-02-01T10:00:00Z", feed.URL: "example.com/old", feed.Tickers: "N/A"},
		{feed.Headline: "  ", feed.PublishedTime: "2024-05-01T10:00:00Z"},
		{feed.Headline: "Newest", feed.Summary: "Big move", feed.PublishedTime: "2024-03-01T14:30:00.123Z", feed.URL: `"https://example.com/new"`, feed.Tickers: "AAPL, MSFT"},
		{feed.Headline: "Undated", feed.URL: "bad url"},
	}

	articles := NewBuilder(feed.NewNormalizer(time.UTC)).Build(records)

	if len(articles) != 3 {
		t.Fatalf("len(articles) = %d, want 3", len(articles))
	}

	first := articles[0]
	if first.Headline != "Newest" {
		t.Errorf("articles[0].Headline = %q, want %q", first.Headline, "Newest")
	}
	if !first.Breaking {
		t.Error("articles[0].Breaking = false, want true")
	}
	if first.URL != "https://example.com/new" {
		t.Errorf("articles[0].URL = %q, want %q", first.URL, "https://example.com/new")
	}
	if first.Dateline != "March 1, 2024 at 02:30 PM" {
		t.Errorf("articles[0].Dateline = %q, want %q", first.Dateline, "March 1, 2024 at 02:30 PM")
	}
	if !first.HasTime || first.Published.IsZero() {
		t.Error("articles[0] should carry a parsed time")
	}
	if first.Tickers != "AAPL, MSFT" {
		t.Errorf("articles[0].Tickers = %q, want %q", first.Tickers, "AAPL, MSFT")
	}

	second := articles[1]
	if second.Headline != "Older" || second.Breaking {
		t.Errorf("articles[1] = %+v, want non-breaking Older", second)
	}
	if second.Tickers != "" {
		t.Errorf("articles[1].Tickers = %q, want empty for N/A", second.Tickers)
	}
	if second.URL != "https://example.com/old" {
		t.Errorf("articles[1].URL = %q, want %q", second.URL, "https://example.com/old")
	}

	last := articles[2]
	if last.Headline != "Undated" {
		t.Errorf("articles[2].Headline = %q, want %q", last.Headline, "Undated")
	}
	if last.Dateline != feed.NotAvailable {
		t.Errorf("articles[2].Dateline = %q, want %q", last.Dateline, feed.NotAvailable)
	}
	if last.HasLink() {
		t.Errorf("articles[2].URL = %q, want placeholder", last.URL)
	}

	// Input order is untouched.
	if records[0][feed.Headline] != "Older" {
		t.Error("Build() must not reorder its input")
	}
}

func TestBuild_InvalidDateline(t *testing.T) {
	records := []feed.Record{{feed.Headline: "x", feed.PublishedTime: "not a date"}}

	articles := NewBuilder(nil).Build(records)

	if got := articles[0].Dateline; got != feed.InvalidDate {
		t.Errorf("Dateline = %q, want %q", got, feed.InvalidDate)
	}
	if articles[0].HasTime {
		t.Error("HasTime = true, want false")
	}
}

func TestBuild_Empty(t *testing.T) {
	articles := NewBuilder(nil).Build(nil)
	if articles == nil || len(articles) != 0 {
		t.Errorf("Build(nil) = %v, want empty slice", articles)
	}
}

func TestBuild_SummaryTruncation(t *testing.T) {
	long := strings.Repeat("é", 310)
	records := []feed.Record{
		{feed.Headline: "long", feed.Summary: long, feed.PublishedTime: "2024-03-02"},
		{feed.Headline: "exact", feed.Summary: strings.Repeat("a", 300), feed.PublishedTime: "2024-03-01"},
	}

	articles := NewBuilder(nil).Build(records)

	if !articles[0].SummaryTruncated {
		t.Error("long summary should be truncated")
	}
	if want := strings.Repeat("é", 300) + "..."; articles[0].Summary != want {
		t.Errorf("Summary has %d runes, want 300 plus ellipsis", len([]rune(articles[0].Summary)))
	}
	if articles[1].SummaryTruncated {
		t.Error("300-rune summary should not be truncated")
	}
}

func TestBuild_CustomSummaryLimit(t *testing.T) {
	b := &Builder{SummaryLimit: 5}
	articles := b.Build([]feed.Record{{feed.Headline: "x", feed.Summary: "abcdefgh"}})

	if got := articles[0].Summary; got != "abcde..." {
		t.Errorf("Summary = %q, want %q", got, "abcde...")
	}
}
