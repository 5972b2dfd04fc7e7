package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/ramkansal/leadfang/internal/pace/pacetest"
	"github.com/ramkansal/leadfang/pkg/plugin"
)

type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*plugin.PageData, error) {
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return &plugin.PageData{URL: url, Error: "connection refused"}, errors.New("connection refused")
	}
	return &plugin.PageData{URL: url, StatusCode: 200, Body: []byte(body), Encoding: "utf-8"}, nil
}

func (f *fakeFetcher) Close() error { return nil }

type fakeTranslator struct {
	out string
	err error
}

func (f fakeTranslator) Translate(context.Context, string) (string, error) {
	return f.out, f.err
}

func newBuilder(t *testing.T, f *fakeFetcher, rec *pacetest.Recorder, opts Options) *Builder {
	opts.Fetcher = f
	opts.PageDelay = DefaultPageDelay
	opts.Wait = rec.Wait
	opts.Logger = zaptest.NewLogger(t)
	return New(opts)
}

func TestBuild_FetchFailureFallsBackToSnippet(t *testing.T) {
	f := &fakeFetcher{}
	var rec pacetest.Recorder
	b := newBuilder(t, f, &rec, Options{})

	out := b.Build(context.Background(), plugin.SearchResult{
		Title:   "Acme Co",
		Link:    "https://acme.com",
		Snippet: "Contact us at info@acme.com",
	})

	want := plugin.CompanyRecord{CompanyName: "Acme Co", Email: "info@acme.com", URL: "https://acme.com"}
	if out.Record != want {
		t.Fatalf("record = %+v, want %+v", out.Record, want)
	}
	if out.Err == nil {
		t.Fatal("fetch error not reported")
	}
	if len(f.calls) != 1 {
		t.Fatalf("fetches = %d, want 1", len(f.calls))
	}
	if len(rec.Delays) != 1 || rec.Delays[0] != time.Second {
		t.Fatalf("delays = %v, want one 1s delay", rec.Delays)
	}
}

func TestBuild_SnippetNonBreakingSpaces(t *testing.T) {
	var rec pacetest.Recorder
	b := newBuilder(t, &fakeFetcher{}, &rec, Options{})

	out := b.Build(context.Background(), plugin.SearchResult{
		Title:   "Main St Diner",
		Link:    "https://diner.example",
		Snippet: "Visit 12\u00a0Main\u00a0Street. Call\u00a0(512)\u00a0555\u00a01234",
	})

	if out.Record.Phone != "(512) 555 1234" {
		t.Fatalf("phone = %q", out.Record.Phone)
	}
	if out.Record.Address != "12 Main Street" {
		t.Fatalf("address = %q", out.Record.Address)
	}
}

const acmePage = `<html>
<head>
<title>Acme Widgets</title>
<script type="application/ld+json">{"@type": "Organization", "name": "Acme Widgets Inc", "email": "sales@acme.com", "telephone": "+1 555 000 1111",
  "address": {"streetAddress": "1 Loop Rd", "addressLocality": "Austin", "addressRegion": "TX"}}</script>
</head>
<body>
<h1>Welcome</h1>
<p>Write to info@acme.com</p>
</body>
</html>`

func TestBuild_PagePrecedence(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://acme.com": acmePage}}
	var rec pacetest.Recorder
	b := newBuilder(t, f, &rec, Options{})

	out := b.Build(context.Background(), plugin.SearchResult{
		Title:   "Acme - Home",
		Link:    "https://acme.com",
		Snippet: "Email hello@acme.com or call (512) 555-0000",
	})
	if out.Err != nil {
		t.Fatalf("unexpected error: %v", out.Err)
	}

	want := plugin.CompanyRecord{
		// page title beats the structured name and the result title
		CompanyName: "Acme Widgets",
		// page text beats structured data and the snippet
		Email: "info@acme.com",
		// the page text has no phone, so structured data supplies it
		Phone:   "+1 555 000 1111",
		Address: "1 Loop Rd, Austin, TX",
		URL:     "https://acme.com",
	}
	if out.Record != want {
		t.Fatalf("record = %+v, want %+v", out.Record, want)
	}
	if out.Page == nil || out.Page.StatusCode != 200 {
		t.Fatalf("page not attached: %+v", out.Page)
	}
	if len(rec.Delays) != 1 {
		t.Fatalf("delays = %v", rec.Delays)
	}
}

func TestBuild_SnippetFillsGaps(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://beta.io": `<html><body><p>Beta builds things.</p></body></html>`,
	}}
	var rec pacetest.Recorder
	b := newBuilder(t, f, &rec, Options{})

	out := b.Build(context.Background(), plugin.SearchResult{
		Title:   "Beta Inc",
		Link:    "https://beta.io",
		Snippet: "Beta at 45 Oak Avenue. Call 555-123-4567",
	})

	want := plugin.CompanyRecord{
		CompanyName: "Beta Inc",
		Phone:       "555-123-4567",
		Address:     "45 Oak Avenue",
		URL:         "https://beta.io",
	}
	if out.Record != want {
		t.Fatalf("record = %+v, want %+v", out.Record, want)
	}
}

func TestBuild_Translation(t *testing.T) {
	page := `<html><head><title>株式会社アクメ</title></head><body></body></html>`

	t.Run("translated", func(t *testing.T) {
		f := &fakeFetcher{pages: map[string]string{"https://acme.jp": page}}
		var rec pacetest.Recorder
		b := newBuilder(t, f, &rec, Options{Translator: fakeTranslator{out: "Acme Corporation"}})

		out := b.Build(context.Background(), plugin.SearchResult{Title: "t", Link: "https://acme.jp"})
		if out.Record.CompanyName != "Acme Corporation" {
			t.Fatalf("name = %q", out.Record.CompanyName)
		}
	})

	t.Run("failure keeps original", func(t *testing.T) {
		f := &fakeFetcher{pages: map[string]string{"https://acme.jp": page}}
		var rec pacetest.Recorder
		b := newBuilder(t, f, &rec, Options{Translator: fakeTranslator{err: errors.New("offline")}})

		out := b.Build(context.Background(), plugin.SearchResult{Title: "t", Link: "https://acme.jp"})
		if out.Record.CompanyName != "株式会社アクメ" {
			t.Fatalf("name = %q", out.Record.CompanyName)
		}
	})

	t.Run("snippet values untouched", func(t *testing.T) {
		f := &fakeFetcher{}
		var rec pacetest.Recorder
		b := newBuilder(t, f, &rec, Options{Translator: fakeTranslator{out: "translated"}})

		out := b.Build(context.Background(), plugin.SearchResult{Title: "Café Lumière", Link: "https://cafe.fr"})
		if out.Record.CompanyName != "Café Lumière" {
			t.Fatalf("name = %q", out.Record.CompanyName)
		}
	})
}

func TestBuild_RepairJSONLD(t *testing.T) {
	page := `<html><body><script type="application/ld+json">{"@type": "Organization", "telephone": "555-000-1111",}</script></body></html>`
	f := &fakeFetcher{pages: map[string]string{"https://acme.com": page}}

	var rec pacetest.Recorder
	strict := newBuilder(t, f, &rec, Options{})
	if got := strict.Build(context.Background(), plugin.SearchResult{Link: "https://acme.com"}).Record.Phone; got != "" {
		t.Fatalf("strict phone = %q", got)
	}

	lenient := newBuilder(t, f, &rec, Options{RepairJSONLD: true})
	if got := lenient.Build(context.Background(), plugin.SearchResult{Link: "https://acme.com"}).Record.Phone; got != "555-000-1111" {
		t.Fatalf("repaired phone = %q", got)
	}
}

func TestBuild_Canceled(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://acme.com": acmePage}}
	var rec pacetest.Recorder
	b := newBuilder(t, f, &rec, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := b.Build(ctx, plugin.SearchResult{Title: "Acme", Link: "https://acme.com"})
	if !errors.Is(out.Err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", out.Err)
	}
	if out.Record.URL != "https://acme.com" || out.Record.CompanyName != "Acme" {
		t.Fatalf("record = %+v", out.Record)
	}
}
