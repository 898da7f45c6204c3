// Package fetch retrieves the published news sheet over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JonMunkholm/newsdesk/internal/feed"
)

// ErrUnexpectedStatus is returned for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// DefaultUserAgent identifies the widget to the feed host.
const DefaultUserAgent = "newsdesk/1.0 (+https://github.com/JonMunkholm/newsdesk)"

// Options configures a Client.
type Options struct {
	URL         string
	Format      Format
	Timeout     time.Duration // Per-request timeout (default: 30s)
	MaxBodySize int64         // Maximum body size in bytes, 0 for no limit
	UserAgent   string
	HTTPClient  *http.Client // Optional; a client with Timeout is built when nil
}

// Payload is one fetched feed body.
type Payload struct {
	Body        string
	Format      Format
	ContentType string
	FetchedAt   time.Time
}

// Client fetches a single feed URL.
type Client struct {
	url       string
	format    Format
	maxBody   int64
	userAgent string
	client    *http.Client
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Format == "" {
		opts.Format = FormatAuto
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Apps Script web apps answer with a redirect to googleusercontent.com
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	return &Client{
		url:       opts.URL,
		format:    opts.Format,
		maxBody:   opts.MaxBodySize,
		userAgent: opts.UserAgent,
		client:    hc,
	}
}

// URL returns the feed URL.
func (c *Client) URL() string {
	return c.url
}

// Fetch downloads the feed body and resolves its format.
func (c *Client) Fetch(ctx context.Context) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/csv, application/rss+xml, */*;q=0.5")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch feed: %w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := feed.CleanInput(resp.Body, c.maxBody)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	format := c.format
	if format == FormatAuto {
		format = Detect(contentType, []byte(body))
	}

	return &Payload{
		Body:        body,
		Format:      format,
		ContentType: contentType,
		FetchedAt:   time.Now(),
	}, nil
}

// Decode dispatches p to the decoder for its format. d is used for CSV bodies
// and may be nil for the default dialect.
func Decode(p *Payload, d *feed.Decoder) (feed.DecodeResult, error) {
	switch p.Format {
	case FormatJSON:
		return feed.DecodeJSON([]byte(p.Body))
	case FormatRSS:
		return feed.DecodeRSS([]byte(p.Body))
	case FormatCSV:
		if d == nil {
			return feed.Decode(p.Body), nil
		}
		return d.Decode(p.Body), nil
	default:
		return Decode(&Payload{Body: p.Body, Format: Detect(p.ContentType, []byte(p.Body))}, d)
	}
}
