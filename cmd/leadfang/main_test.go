package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ramkansal/leadfang/internal/pipeline"
	"github.com/ramkansal/leadfang/pkg/plugin"
)

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{
		"-k", "plumbers", "-l", "Austin, TX", "-n", "25",
		"-p", "brave", "-d", "2s", "-H", "X-A: 1", "-H", "X-B: 2",
		"-b", "yelp.ca, pagesjaunes.fr", "--translate", "-o", "out.md", "-v",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if f.keywords != "plumbers" || f.location != "Austin, TX" || f.maxResults != 25 {
		t.Fatalf("query = %q / %q / %d", f.keywords, f.location, f.maxResults)
	}
	if f.provider != "brave" || f.pageDelay != 2*time.Second {
		t.Fatalf("provider = %q, delay = %v", f.provider, f.pageDelay)
	}
	if len(f.headers) != 2 || len(f.block) != 2 || f.block[1] != "pagesjaunes.fr" {
		t.Fatalf("headers = %v, block = %v", f.headers, f.block)
	}
	if !f.translate || !f.verbose || f.output != "out.md" {
		t.Fatalf("unexpected flags: %+v", f)
	}
}

func TestParseFlags_BareKeywords(t *testing.T) {
	f, err := parseFlags([]string{"coffee", "roasters", "-l", "Portland"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if f.keywords != "coffee roasters" {
		t.Fatalf("keywords = %q", f.keywords)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	for _, args := range [][]string{
		{"--bogus"},
		{"-n", "ten"},
		{"-d", "soon"},
		{"-k"},
	} {
		if _, err := parseFlags(args); err == nil {
			t.Fatalf("parseFlags(%v) returned no error", args)
		}
	}
}

func TestPrepareCheck(t *testing.T) {
	f, err := parseFlags([]string{"--check", "-f", "browser"})
	if err != nil {
		t.Fatal(err)
	}
	if !f.check {
		t.Fatal("check flag not set")
	}
	cfg, err := buildConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	prepareCheck(cfg)
	if cfg.Keywords != pipeline.CheckQuery.Keywords || cfg.Location != pipeline.CheckQuery.Location {
		t.Fatalf("query = %q / %q", cfg.Keywords, cfg.Location)
	}
	if cfg.FetcherMode != pipeline.FetcherHTTP {
		t.Fatalf("fetcher = %q", cfg.FetcherMode)
	}

	// An explicit query is kept.
	f, _ = parseFlags([]string{"--check", "-k", "dentists", "-l", "Boise"})
	cfg, _ = buildConfig(f)
	prepareCheck(cfg)
	if cfg.Keywords != "dentists" || cfg.Location != "Boise" {
		t.Fatalf("query = %q / %q", cfg.Keywords, cfg.Location)
	}
}

func TestBuildConfig(t *testing.T) {
	f, err := parseFlags([]string{"-k", "bakers", "-o", "bakers.json", "-f", "BROWSER", "-t", "5"})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := buildConfig(f)
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.Format != "json" || cfg.OutputPath != "bakers.json" {
		t.Fatalf("format = %q, output = %q", cfg.Format, cfg.OutputPath)
	}
	if cfg.FetcherMode != pipeline.FetcherBrowser || cfg.Timeout != 5*time.Second {
		t.Fatalf("fetcher = %q, timeout = %v", cfg.FetcherMode, cfg.Timeout)
	}
	if cfg.MaxResults != 10 || cfg.Provider != pipeline.ProviderGoogle {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestBuildConfig_DefaultOutput(t *testing.T) {
	cfg, err := buildConfig(&flags{keywords: "bakers"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Format != "html" {
		t.Fatalf("format = %q", cfg.Format)
	}
	if !strings.HasPrefix(cfg.OutputPath, "search_results_") || !strings.HasSuffix(cfg.OutputPath, ".html") {
		t.Fatalf("output = %q", cfg.OutputPath)
	}

	cfg, err = buildConfig(&flags{keywords: "bakers", format: "md"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Format != "markdown" || !strings.HasSuffix(cfg.OutputPath, ".md") {
		t.Fatalf("format = %q, output = %q", cfg.Format, cfg.OutputPath)
	}
}

func TestBuildConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leadfang.yaml")
	content := "keywords: florists\nlocation: Leeds\nmax_results: 40\nblocklist: [yell.com]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildConfig(&flags{configFile: path, maxResults: 5, block: []string{"thomsonlocal.com"}})
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.Keywords != "florists" || cfg.Location != "Leeds" {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.MaxResults != 5 {
		t.Fatalf("max results = %d", cfg.MaxResults)
	}
	if len(cfg.Blocklist) != 2 {
		t.Fatalf("blocklist = %v", cfg.Blocklist)
	}
}

func TestFieldCountStr(t *testing.T) {
	noColor = true
	t.Cleanup(func() { noColor = false })

	rec := &plugin.CompanyRecord{CompanyName: "Acme", Email: "info@acme.com", URL: "https://acme.com"}
	if got := fieldCountStr(rec); got != "[company email]" {
		t.Fatalf("fieldCountStr = %q", got)
	}
	if got := fieldCountStr(&plugin.CompanyRecord{URL: "https://acme.com"}); got != "" {
		t.Fatalf("fieldCountStr = %q", got)
	}
}

func TestFmtDur(t *testing.T) {
	tests := map[time.Duration]string{
		250 * time.Millisecond:  "250ms",
		1500 * time.Millisecond: "1.5s",
		125 * time.Second:       "2m5s",
	}
	for d, want := range tests {
		if got := fmtDur(d); got != want {
			t.Fatalf("fmtDur(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestClr(t *testing.T) {
	if got := clr("red", "x"); got != "\033[31mx\033[0m" {
		t.Fatalf("clr = %q", got)
	}
	if got := clr("unknown", "x"); got != "x" {
		t.Fatalf("clr = %q", got)
	}
	noColor = true
	defer func() { noColor = false }()
	if got := clr("red", "x"); got != "x" {
		t.Fatalf("clr = %q", got)
	}
}
