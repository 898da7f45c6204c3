package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/newsdesk/internal/feed"
)

const sheetCSV = "Headline,Summary,URL,Published Time\nMarkets rally,Stocks up,example.com/a,2024-03-01T14:30:00Z\n"

func TestClient_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("\xef\xbb\xbf" + sheetCSV))
	}))
	defer srv.Close()

	c := NewClient(Options{URL: srv.URL, UserAgent: "test-agent"})
	p, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotUA != "test-agent" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "test-agent")
	}
	if p.Format != FormatCSV {
		t.Errorf("Format = %q, want %q", p.Format, FormatCSV)
	}
	if p.Body != sheetCSV {
		t.Errorf("Body = %q, want BOM stripped %q", p.Body, sheetCSV)
	}
	if p.FetchedAt.IsZero() {
		t.Error("FetchedAt is zero")
	}
	if c.URL() != srv.URL {
		t.Errorf("URL() = %q, want %q", c.URL(), srv.URL)
	}
}

func TestClient_FetchFixedFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sheetCSV))
	}))
	defer srv.Close()

	p, err := NewClient(Options{URL: srv.URL, Format: FormatCSV}).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if p.Format != FormatCSV {
		t.Errorf("Format = %q, want configured %q", p.Format, FormatCSV)
	}
}

func TestClient_FetchUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(Options{URL: srv.URL}).Fetch(context.Background())
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("Fetch() error = %v, want ErrUnexpectedStatus", err)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error %q does not mention status code", err)
	}
}

func TestClient_FetchBodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	_, err := NewClient(Options{URL: srv.URL, MaxBodySize: 16}).Fetch(context.Background())
	if !errors.Is(err, feed.ErrInputTooLarge) {
		t.Fatalf("Fetch() error = %v, want ErrInputTooLarge", err)
	}
}

func TestClient_FetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient(Options{URL: srv.URL, Timeout: 50 * time.Millisecond}).Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch() error = nil, want timeout")
	}
}

func TestClient_FetchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(Options{URL: "http://127.0.0.1:1"}).Fetch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    string
	}{
		{name: "csv", payload: Payload{Format: FormatCSV, Body: sheetCSV}, want: "Markets rally"},
		{name: "json", payload: Payload{Format: FormatJSON, Body: `[{"Headline":"From JSON"}]`}, want: "From JSON"},
		{
			name:    "rss",
			payload: Payload{Format: FormatRSS, Body: `<rss version="2.0"><channel><title>t</title><item><title>From RSS</title></item></channel></rss>`},
			want:    "From RSS",
		},
		{name: "auto sniffed", payload: Payload{Format: FormatAuto, Body: `{"articles":[{"Headline":"Sniffed"}]}`}, want: "Sniffed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Decode(&tt.payload, nil)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(res.Records) != 1 {
				t.Fatalf("len(Records) = %d, want 1", len(res.Records))
			}
			if got := res.Records[0].Get(feed.Headline); got != tt.want {
				t.Errorf("Headline = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecode_CustomDialect(t *testing.T) {
	d := feed.NewDecoder(feed.Dialect{Comma: ';', TrimSpace: true})

	res, err := Decode(&Payload{Format: FormatCSV, Body: "Headline;URL\nSemi;x.com\n"}, d)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(res.Records) != 1 || res.Records[0]["URL"] != "x.com" {
		t.Errorf("Records = %v, want one record with URL x.com", res.Records)
	}
}

func TestDecode_InvalidJSON(t *testing.T) {
	if _, err := Decode(&Payload{Format: FormatJSON, Body: "[{"}, nil); err == nil {
		t.Error("Decode() error = nil, want error")
	}
}
