package fetch

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
)

// Format identifies how a feed body is encoded.
type Format string

const (
	FormatAuto Format = "auto"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatRSS  Format = "rss"
)

// ParseFormat parses a configured format name. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatCSV, FormatJSON, FormatRSS:
		return f, nil
	default:
		return "", fmt.Errorf("unknown feed format %q (want auto, csv, json or rss)", s)
	}
}

// Detect picks a format from the response content type, falling back to the
// first non-space byte of the body.
func Detect(contentType string, body []byte) Format {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch {
		case strings.Contains(mt, "json"):
			return FormatJSON
		case strings.Contains(mt, "csv"):
			return FormatCSV
		case strings.Contains(mt, "rss"), strings.Contains(mt, "atom"), strings.Contains(mt, "xml"):
			return FormatRSS
		}
	}

	trimmed := bytes.TrimLeft(body, " \t\r\n\xef\xbb\xbf")
	if len(trimmed) == 0 {
		return FormatCSV
	}
	switch trimmed[0] {
	case '[', '{':
		return FormatJSON
	case '<':
		return FormatRSS
	default:
		return FormatCSV
	}
}
