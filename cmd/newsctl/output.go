package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/newsdesk/internal/article"
	"github.com/JonMunkholm/newsdesk/internal/feed"
)

// cellWidth caps table columns so summaries don't wrap the terminal.
const cellWidth = 48

func checkOutput(format string) error {
	switch format {
	case "json", "yaml", "table":
		return nil
	default:
		return fmt.Errorf("unknown output %q (want json, yaml or table)", format)
	}
}

func writeValue(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func writeRecords(w io.Writer, format string, res feed.DecodeResult) error {
	if format != "table" {
		return writeValue(w, format, res.Records)
	}

	rows := make([][]string, 0, len(res.Records))
	for _, rec := range res.Records {
		row := make([]string, len(res.Header))
		for i, h := range res.Header {
			row[i] = rec[h]
		}
		rows = append(rows, row)
	}
	return writeTable(w, res.Header, rows)
}

func writeArticles(w io.Writer, format string, articles []article.Article) error {
	if format != "table" {
		return writeValue(w, format, articles)
	}

	rows := make([][]string, 0, len(articles))
	for _, a := range articles {
		flag := ""
		if a.Breaking {
			flag = "BREAKING"
		}
		rows = append(rows, []string{flag, a.Dateline, a.Headline, a.Tickers, a.URL})
	}
	return writeTable(w, []string{"", "DATELINE", "HEADLINE", "TICKERS", "URL"}, rows)
}

// writeTable aligns columns by display width so CJK and emoji headlines line up.
func writeTable(w io.Writer, header []string, rows [][]string) error {
	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, header)
	for _, row := range rows {
		clean := make([]string, len(row))
		for i, c := range row {
			c = strings.Join(strings.Fields(c), " ")
			clean[i] = runewidth.Truncate(c, cellWidth, "…")
		}
		cells = append(cells, clean)
	}

	widths := make([]int, len(header))
	for _, row := range cells {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if n := runewidth.StringWidth(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for _, row := range cells {
		var sb strings.Builder
		for i := range widths {
			content := ""
			if i < len(row) {
				content = row[i]
			}
			if i > 0 {
				sb.WriteString("  ")
			}
			if i == len(widths)-1 {
				sb.WriteString(content)
				continue
			}
			sb.WriteString(runewidth.FillRight(content, widths[i]))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(sb.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}

func writeSkipped(w io.Writer, skipped []feed.SkippedRow) {
	for _, s := range skipped {
		if s.Reason == feed.ReasonFieldCount {
			fmt.Fprintf(w, "skipped row %d (line %d): %d fields, want %d\n", s.Row, s.Line, s.Fields, s.Want)
			continue
		}
		fmt.Fprintf(w, "skipped item %d: %s\n", s.Row, s.Reason)
	}
}
