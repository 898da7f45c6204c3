package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/newsdesk/internal/article"
)

const sheet = "Headline,Summary,URL,Published Time,Tickers\n" +
	"Older story,Old,example.com/old,2024-03-01T09:00:00Z,\n" +
	"Newer story,New,example.com/new,2024-03-01T14:30:00Z,AAPL\n" +
	"broken row\n"

func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestDecode_JSONRecords(t *testing.T) {
	out, errOut, err := run(t, sheet, "decode")
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}

	var records []map[string]string
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0]["Headline"] != "Older story" {
		t.Errorf("records[0] headline = %q, want input order", records[0]["Headline"])
	}
	if !strings.Contains(errOut, "skipped row 4 (line 4): 1 fields, want 5") {
		t.Errorf("stderr = %q, want skipped row report", errOut)
	}
}

func TestDecode_ArticlesYAML(t *testing.T) {
	out, _, err := run(t, sheet, "decode", "--articles", "-o", "yaml")
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}

	var got []article.Article
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	if len(got) != 2 {
		t.Fatalf("len(articles) = %d, want 2", len(got))
	}
	if got[0].Headline != "Newer story" || !got[0].Breaking {
		t.Errorf("articles[0] = %+v, want breaking newer story", got[0])
	}
	if got[0].Dateline != "March 1, 2024 at 02:30 PM" {
		t.Errorf("Dateline = %q", got[0].Dateline)
	}
}

func TestDecode_Table(t *testing.T) {
	out, _, err := run(t, sheet, "decode", "--articles", "-o", "table")
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "DATELINE") || !strings.Contains(lines[0], "HEADLINE") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "BREAKING") {
		t.Errorf("first row = %q, want BREAKING flag", lines[1])
	}
	// Columns line up: HEADLINE starts at the same offset in every line.
	col := strings.Index(lines[0], "HEADLINE")
	if strings.Index(lines[1], "Newer story") != col || strings.Index(lines[2], "Older story") != col {
		t.Errorf("columns misaligned:\n%s", out)
	}
}

func TestDecode_FileAndDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.csv")
	if err := os.WriteFile(path, []byte("Headline;URL\nSemi;x.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "", "decode", path, "--delimiter", ";", "--format", "csv")
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if !strings.Contains(out, `"URL": "x.com"`) {
		t.Errorf("output = %s, want URL x.com", out)
	}
}

func TestDecode_JSONInput(t *testing.T) {
	out, _, err := run(t, `{"data":[{"Headline":"From JSON"}]}`, "decode", "-o", "table")
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if !strings.Contains(out, "From JSON") {
		t.Errorf("output = %q, want From JSON", out)
	}
}

func TestDecode_BadFlags(t *testing.T) {
	tests := [][]string{
		{"decode", "-o", "xml"},
		{"decode", "--format", "xlsx"},
		{"decode", "--delimiter", "||"},
		{"decode", "--articles", "--tz", "Mars/Base"},
	}
	for _, args := range tests {
		if _, _, err := run(t, sheet, args...); err == nil {
			t.Errorf("%v: error = nil, want error", args)
		}
	}
}

func TestDateline(t *testing.T) {
	out, _, err := run(t, "", "dateline", "2024-03-01T14:30:00.123Z", "", "garbage")
	if err != nil {
		t.Fatalf("dateline error = %v", err)
	}

	want := "March 1, 2024 at 02:30 PM\nN/A\nInvalid Date\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestDateline_Timezone(t *testing.T) {
	out, _, err := run(t, "", "dateline", "--tz", "UTC", "2024-03-01T14:30:00+02:00")
	if err != nil {
		t.Fatalf("dateline error = %v", err)
	}
	if strings.TrimSpace(out) != "March 1, 2024 at 12:30 PM" {
		t.Errorf("output = %q", out)
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(sheet))
	}))
	defer srv.Close()

	out, _, err := run(t, "", "fetch", "--url", srv.URL, "-o", "json")
	if err != nil {
		t.Fatalf("fetch error = %v", err)
	}

	var got []article.Article
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 2 || got[0].URL != "https://example.com/new" {
		t.Errorf("articles = %+v", got)
	}
}

func TestFetch_RequiresURL(t *testing.T) {
	if _, _, err := run(t, "", "fetch"); err == nil {
		t.Error("fetch without --url succeeded, want error")
	}
}
