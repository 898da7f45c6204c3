package feed

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// DecodeRSS decodes an RSS, Atom or JSON Feed document into records.
// Item summaries are flattened from HTML to plain text.
func DecodeRSS(data []byte) (DecodeResult, error) {
	res := DecodeResult{
		Header:  []string{Headline, Summary, URL, PublishedTime, Tickers, ImageURL},
		Records: []Record{},
	}

	f, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return res, fmt.Errorf("decode rss: %w", err)
	}

	for _, item := range f.Items {
		if item == nil {
			continue
		}

		summary := item.Description
		if strings.TrimSpace(summary) == "" {
			summary = item.Content
		}

		published := item.Published
		if published == "" {
			published = item.Updated
		}

		res.Records = append(res.Records, Record{
			Headline:      strings.TrimSpace(item.Title),
			Summary:       htmlText(summary),
			URL:           strings.TrimSpace(item.Link),
			PublishedTime: strings.TrimSpace(published),
			Tickers:       strings.Join(item.Categories, ", "),
			ImageURL:      itemImage(item),
		})
	}

	return res, nil
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// htmlText returns the visible text of an HTML fragment with whitespace collapsed.
func htmlText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
