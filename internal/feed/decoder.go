package feed

// decoder.go implements the delimited-text decoder.
//
// Decoding runs in two passes over the input:
//  1. Row splitting: a newline ends a row only when the scanner is outside a
//     quoted field. Every quote character toggles the flag, so an escaped ""
//     toggles twice and leaves it unchanged.
//  2. Field tokenizing: within a row, the delimiter ends a field outside quotes,
//     "" inside quotes emits one literal quote, and a lone quote closes the field.
//
// The first non-blank row is the header. Data rows are zipped against it and
// dropped when their field count differs.

import "strings"

// Dialect describes the delimiter and quoting rules of a delimited feed.
type Dialect struct {
	Comma     rune // Field delimiter (default ',')
	Quote     rune // Quote character (default '"')
	TrimSpace bool // Trim surrounding whitespace from header names and values
}

// DefaultDialect is comma-separated text with double-quote quoting and trimming.
var DefaultDialect = Dialect{Comma: ',', Quote: '"', TrimSpace: true}

// Decoder decodes delimited text for a fixed Dialect.
// A Decoder holds no state between calls.
type Decoder struct {
	dialect Dialect
}

// NewDecoder returns a decoder for d. Zero Comma or Quote fall back to the defaults.
func NewDecoder(d Dialect) *Decoder {
	if d.Comma == 0 {
		d.Comma = DefaultDialect.Comma
	}
	if d.Quote == 0 {
		d.Quote = DefaultDialect.Quote
	}
	return &Decoder{dialect: d}
}

// Dialect returns the decoder's dialect.
func (d *Decoder) Dialect() Dialect {
	return d.dialect
}

var defaultDecoder = NewDecoder(DefaultDialect)

// Decode decodes text with DefaultDialect.
func Decode(text string) DecodeResult {
	return defaultDecoder.Decode(text)
}

// physicalRow is one logical row plus the line it starts on.
type physicalRow struct {
	text string
	line int
}

// Decode converts text into records keyed by the header row.
//
// A leading byte order mark is ignored.
// It never fails: empty input, a header-only input and a header with no usable
// names all produce an empty result, and mismatched rows are reported in Skipped.
func (d *Decoder) Decode(text string) DecodeResult {
	res := DecodeResult{Records: []Record{}}

	rows := d.splitRows(text)
	if len(rows) == 0 {
		return res
	}

	header := d.SplitFields(strings.TrimPrefix(rows[0].text, "\ufeff"))
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if !hasName(header) {
		return res
	}
	res.Header = header

	for i, row := range rows[1:] {
		fields := d.SplitFields(row.text)
		if len(fields) != len(header) {
			res.Skipped = append(res.Skipped, SkippedRow{
				Row:    i + 2,
				Line:   row.line,
				Reason: ReasonFieldCount,
				Fields: len(fields),
				Want:   len(header),
			})
			continue
		}

		rec := make(Record, len(header))
		for j, name := range header {
			v := fields[j]
			if d.dialect.TrimSpace {
				v = strings.TrimSpace(v)
			}
			// Duplicate header names: the later column wins.
			rec[name] = v
		}
		res.Records = append(res.Records, rec)
	}

	return res
}

// SplitRows splits text into logical rows, keeping quoted newlines inside their row.
// Blank rows are omitted.
func (d *Decoder) SplitRows(text string) []string {
	rows := d.splitRows(text)
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.text
	}
	return out
}

func (d *Decoder) splitRows(text string) []physicalRow {
	var (
		rows     []physicalRow
		b        strings.Builder
		inQuotes bool
		line     = 1
		start    = 1
	)

	flush := func() {
		s := strings.TrimSuffix(b.String(), "\r")
		b.Reset()
		if strings.TrimSpace(s) != "" {
			rows = append(rows, physicalRow{text: s, line: start})
		}
	}

	for _, c := range text {
		switch {
		case c == d.dialect.Quote:
			inQuotes = !inQuotes
			b.WriteRune(c)
		case c == '\n' && !inQuotes:
			flush()
			line++
			start = line
		case c == '\n':
			b.WriteRune(c)
			line++
		default:
			b.WriteRune(c)
		}
	}

	// Last row without a trailing newline, or everything after an unterminated quote.
	flush()

	return rows
}

// SplitFields tokenizes a single logical row into raw (untrimmed) fields.
// A non-empty row always yields at least one field.
func (d *Decoder) SplitFields(row string) []string {
	var (
		fields   []string
		b        strings.Builder
		inQuotes bool
	)

	runes := []rune(row)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		if inQuotes {
			if c == d.dialect.Quote {
				if i+1 < len(runes) && runes[i+1] == d.dialect.Quote {
					b.WriteRune(c)
					i++
					continue
				}
				inQuotes = false
				continue
			}
			b.WriteRune(c)
			continue
		}

		switch c {
		case d.dialect.Quote:
			inQuotes = true
		case d.dialect.Comma:
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteRune(c)
		}
	}

	return append(fields, b.String())
}

func hasName(header []string) bool {
	for _, h := range header {
		if h != "" {
			return true
		}
	}
	return false
}
