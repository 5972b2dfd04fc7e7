package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap/zaptest"

	"github.com/ramkansal/leadfang/internal/pace/pacetest"
	"github.com/ramkansal/leadfang/pkg/plugin"
)

func googleItems(start, n int) []map[string]string {
	items := make([]map[string]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, map[string]string{
			"title":   fmt.Sprintf("Result %d", start+i),
			"link":    fmt.Sprintf("https://example%d.com", start+i),
			"snippet": "snippet",
		})
	}
	return items
}

func testOptions(t *testing.T, baseURL string, rec *pacetest.Recorder) Options {
	return Options{
		BaseURL:   baseURL,
		PageDelay: DefaultPageDelay,
		Wait:      rec.Wait,
		Timeout:   5 * time.Second,
		Logger:    zaptest.NewLogger(t),
	}
}

func TestGoogle_Paginates(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		q := r.URL.Query()
		if q.Get("key") != "k" || q.Get("cx") != "cx" {
			t.Errorf("missing credentials: %v", q)
		}
		if q.Get("q") != "plumbers Austin TX" {
			t.Errorf("q = %q", q.Get("q"))
		}
		start, _ := strconv.Atoi(q.Get("start"))
		num, _ := strconv.Atoi(q.Get("num"))
		switch start {
		case 1:
			if num != 10 {
				t.Errorf("first page num = %d", num)
			}
		case 11:
			if num != 5 {
				t.Errorf("second page num = %d", num)
			}
		default:
			t.Errorf("unexpected start %d", start)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": googleItems(start, num)})
	}))
	defer srv.Close()

	var rec pacetest.Recorder
	g := NewGoogle("k", "cx", testOptions(t, srv.URL, &rec))

	got, err := g.Search(context.Background(), plugin.SearchQuery{Keywords: "plumbers", Location: "Austin TX", MaxResults: 15})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 15 {
		t.Fatalf("got %d results, want 15", len(got))
	}
	if got[0].Link != "https://example1.com" || got[14].Link != "https://example15.com" {
		t.Fatalf("unexpected order: first %q last %q", got[0].Link, got[14].Link)
	}
	if requests.Load() != 2 {
		t.Fatalf("requests = %d, want 2", requests.Load())
	}
	if len(rec.Delays) != 2 || rec.Delays[0] != DefaultPageDelay {
		t.Fatalf("delays = %v", rec.Delays)
	}
}

func TestGoogle_ProviderErrorKeepsPartialResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") == "1" {
			_ = json.NewEncoder(w).Encode(map[string]any{"items": googleItems(1, 10)})
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "Quota exceeded"}}`))
	}))
	defer srv.Close()

	var rec pacetest.Recorder
	g := NewGoogle("k", "cx", testOptions(t, srv.URL, &rec))

	got, err := g.Search(context.Background(), plugin.SearchQuery{Keywords: "bakery", MaxResults: 30})
	if !eris.Is(err, ErrProvider) {
		t.Fatalf("err = %v, want ErrProvider", err)
	}
	if len(got) != 10 {
		t.Fatalf("got %d results, want the 10 gathered before the error", len(got))
	}
}

func TestGoogle_StopsOnEmptyPage(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Query().Get("start") == "1" {
			_ = json.NewEncoder(w).Encode(map[string]any{"items": googleItems(1, 10)})
			return
		}
		_, _ = w.Write([]byte(`{"searchInformation": {"totalResults": "10"}}`))
	}))
	defer srv.Close()

	var rec pacetest.Recorder
	g := NewGoogle("k", "cx", testOptions(t, srv.URL, &rec))

	got, err := g.Search(context.Background(), plugin.SearchQuery{Keywords: "bakery", MaxResults: 40})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 10 || requests.Load() != 2 {
		t.Fatalf("got %d results after %d requests", len(got), requests.Load())
	}
}

func TestGoogle_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	var rec pacetest.Recorder
	g := NewGoogle("k", "cx", testOptions(t, srv.URL, &rec))

	got, err := g.Search(context.Background(), plugin.SearchQuery{Keywords: "bakery", MaxResults: 5})
	if !eris.Is(err, ErrProvider) {
		t.Fatalf("err = %v, want ErrProvider", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d results", len(got))
	}
}

func TestGoogle_ZeroMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	var rec pacetest.Recorder
	g := NewGoogle("k", "cx", testOptions(t, srv.URL, &rec))
	got, err := g.Search(context.Background(), plugin.SearchQuery{Keywords: "x"})
	if err != nil || got != nil {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestBrave_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "brave-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"type": "ErrorResponse", "error": {"code": "SUBSCRIPTION_TOKEN_INVALID", "detail": "bad token"}}`))
			return
		}
		q := r.URL.Query()
		if q.Get("offset") != "0" || q.Get("count") != "3" {
			t.Errorf("offset=%q count=%q", q.Get("offset"), q.Get("count"))
		}
		_, _ = w.Write([]byte(`{"web": {"results": [
			{"title": "Acme <strong>Plumbing</strong>", "url": "https://acme.com", "description": "Call <strong>555-123-4567</strong>"},
			{"title": "Beta", "url": "https://beta.io", "description": "plain"},
			{"title": "Joe&#x27;s Plumbing &amp; Heating", "url": "https://joes.com", "description": "Pipes &amp; boilers"}
		]}}`))
	}))
	defer srv.Close()

	var rec pacetest.Recorder
	b := NewBrave("brave-key", testOptions(t, srv.URL, &rec))

	got, err := b.Search(context.Background(), plugin.SearchQuery{Keywords: "plumbing", MaxResults: 3})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []plugin.SearchResult{
		{Title: "Acme Plumbing", Link: "https://acme.com", Snippet: "Call 555-123-4567"},
		{Title: "Beta", Link: "https://beta.io", Snippet: "plain"},
		{Title: "Joe's Plumbing & Heating", Link: "https://joes.com", Snippet: "Pipes & boilers"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBrave_InvalidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type": "ErrorResponse", "error": {"code": "SUBSCRIPTION_TOKEN_INVALID", "detail": "bad token"}}`))
	}))
	defer srv.Close()

	var rec pacetest.Recorder
	b := NewBrave("wrong", testOptions(t, srv.URL, &rec))
	if _, err := b.Search(context.Background(), plugin.SearchQuery{Keywords: "x", MaxResults: 5}); !eris.Is(err, ErrProvider) {
		t.Fatalf("err = %v, want ErrProvider", err)
	}
}

func TestPaginate_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fetch := func(ctx context.Context, query string, index, count int) ([]plugin.SearchResult, error) {
		calls++
		cancel()
		return []plugin.SearchResult{{Link: "https://a.com"}}, nil
	}

	var rec pacetest.Recorder
	opts := Options{Wait: rec.Wait}.withDefaults()
	got, err := paginate(ctx, opts, plugin.SearchQuery{Keywords: "x", MaxResults: 5}, 1, fetch)
	if err == nil {
		t.Fatal("expected an interruption error")
	}
	if calls != 1 || len(got) != 1 {
		t.Fatalf("calls=%d results=%d", calls, len(got))
	}
}
