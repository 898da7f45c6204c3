package feed

// input.go cleans a fetched body before it reaches a decoder.
//
// Published spreadsheets are frequently exported by Windows tooling and may
// start with a UTF-8 BOM or carry stray Latin-1 bytes. The readers here fix
// both on the fly:
//
//   - BOMSkippingReader: drops a leading 0xEF 0xBB 0xBF
//   - UTF8Sanitizer: replaces invalid UTF-8 bytes with '?'
//
// CleanInput chains both and enforces a size limit.

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrInputTooLarge is returned when a body exceeds the configured size limit.
var ErrInputTooLarge = errors.New("feed body too large")

// UTF8Sanitizer wraps an io.Reader and replaces invalid UTF-8 bytes with '?'.
// Multi-byte sequences split across reads are carried over to the next read.
type UTF8Sanitizer struct {
	reader  io.Reader
	pending []byte // partial rune carried into the next read
	ready   []byte // sanitized bytes not yet handed out
	err     error
}

// NewUTF8Sanitizer creates a sanitizer over r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(p) < utf8.UTFMax || len(s.ready) > 0 {
		return s.readBuffered(p)
	}
	return s.read(p)
}

// readBuffered serves reads through an internal buffer. Buffers shorter than
// utf8.UTFMax cannot hold a carried-over rune plus the bytes that complete it.
func (s *UTF8Sanitizer) readBuffered(p []byte) (int, error) {
	for len(s.ready) == 0 && s.err == nil {
		buf := make([]byte, 512)
		n, err := s.read(buf)
		s.ready, s.err = buf[:n], err
	}
	if len(s.ready) == 0 {
		return 0, s.err
	}

	n := copy(p, s.ready)
	s.ready = s.ready[n:]
	return n, nil
}

// read needs len(p) >= utf8.UTFMax so pending always fits.
func (s *UTF8Sanitizer) read(p []byte) (int, error) {
	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	return s.sanitize(p[:n], err == io.EOF), err
}

// sanitize rewrites data in place and returns the number of bytes to hand out.
// When atEOF is false a trailing partial rune is held back in pending.
func (s *UTF8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		if data[read] < utf8.RuneSelf {
			data[write] = data[read]
			write++
			read++
			continue
		}

		if !atEOF && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}

		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// BOMSkippingReader wraps an io.Reader and skips a leading UTF-8 BOM.
type BOMSkippingReader struct {
	reader  io.Reader
	checked bool
	buf     []byte
}

// NewBOMSkippingReader creates a BOM-skipping reader over r.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		var head [3]byte
		n, err := io.ReadFull(r.reader, head[:])
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
		if !(n == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF) {
			r.buf = append(r.buf, head[:n]...)
		}
	}

	if len(r.buf) > 0 {
		n := copy(p, r.buf)
		r.buf = r.buf[n:]
		return n, nil
	}

	return r.reader.Read(p)
}

// CleanInput reads r to completion through the BOM and UTF-8 filters.
// A limit of zero or less disables the size check.
func CleanInput(r io.Reader, limit int64) (string, error) {
	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}

	var b strings.Builder
	n, err := io.Copy(&b, NewUTF8Sanitizer(NewBOMSkippingReader(src)))
	if err != nil {
		return "", err
	}
	if limit > 0 && n > limit {
		return "", ErrInputTooLarge
	}
	return b.String(), nil
}
