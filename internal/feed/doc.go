// Package feed turns a fetched feed body into article records.
//
// The package is the pure core of the news widget. It has no network, storage or
// rendering dependencies and every exported function is safe for concurrent use.
//
// # Decoding
//
// Delimited text is decoded by a [Decoder] built for a [Dialect]. The decoder is a
// character-level state machine: a newline only separates rows outside a quoted
// field, so multi-line summaries survive intact.
//
//	res := feed.Decode(body)
//	for _, rec := range res.Records {
//	    fmt.Println(rec[feed.Headline])
//	}
//	for _, s := range res.Skipped {
//	    log.Printf("row %d (line %d): %s", s.Row, s.Line, s.Reason)
//	}
//
// Rows whose field count disagrees with the header are dropped and reported in
// [DecodeResult.Skipped]; decoding never fails on malformed data.
//
// Structured-list bodies are handled by [DecodeJSON] and RSS/Atom bodies by
// [DecodeRSS]. All three produce the same [Record] shape.
//
// # Timestamps
//
// [Normalizer] converts loosely formatted timestamps into a dateline such as
// "March 1, 2024 at 02:30 PM". Blank or non-string input yields [NotAvailable];
// input that cannot be parsed yields [InvalidDate]. A rendered dateline is not
// guaranteed to normalize again.
package feed
