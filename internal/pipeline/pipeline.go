// Package pipeline runs one search: it pages through the provider, builds
// a record per result, then filters and deduplicates the records.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ramkansal/leadfang/internal/domain"
	"github.com/ramkansal/leadfang/internal/fetcher"
	"github.com/ramkansal/leadfang/internal/pace"
	"github.com/ramkansal/leadfang/internal/record"
	"github.com/ramkansal/leadfang/internal/search"
	"github.com/ramkansal/leadfang/internal/translate"
	"github.com/ramkansal/leadfang/pkg/plugin"
)

// Pipeline is the per-run engine. It is built once per run and holds no
// state across runs.
type Pipeline struct {
	config     *Config
	searcher   plugin.Searcher
	fetcher    plugin.Fetcher
	translator translate.Translator
	builder    *record.Builder
	blocklist  *domain.Blocklist
	wait       pace.Func
	onEvent    func(plugin.Event)
	log        *zap.Logger

	stats     plugin.RunStats
	startTime time.Time
}

// Option overrides a component New would otherwise build from the config.
type Option func(*Pipeline)

func WithSearcher(s plugin.Searcher) Option { return func(p *Pipeline) { p.searcher = s } }

func WithFetcher(f plugin.Fetcher) Option { return func(p *Pipeline) { p.fetcher = f } }

func WithTranslator(t translate.Translator) Option { return func(p *Pipeline) { p.translator = t } }

// WithWait replaces the courtesy-delay implementation.
func WithWait(w pace.Func) Option { return func(p *Pipeline) { p.wait = w } }

// WithEventHandler receives progress events synchronously, in order.
func WithEventHandler(h func(plugin.Event)) Option { return func(p *Pipeline) { p.onEvent = h } }

// New wires the pipeline. Components not supplied through options are
// built from cfg, which must already be valid.
func New(ctx context.Context, cfg *Config, log *zap.Logger, opts ...Option) (*Pipeline, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pipeline{
		config:  cfg,
		wait:    pace.Wait,
		onEvent: func(plugin.Event) {},
		log:     log,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.searcher == nil {
		p.searcher = p.newSearcher()
	}
	if p.fetcher == nil {
		f, err := p.newFetcher()
		if err != nil {
			return nil, eris.Wrap(err, "init fetcher")
		}
		p.fetcher = f
	}
	if p.translator == nil && cfg.Translate {
		t, err := translate.NewGemini(ctx, translate.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		})
		if err != nil {
			return nil, eris.Wrap(err, "init translator")
		}
		p.translator = t
	}

	p.builder = record.New(record.Options{
		Fetcher:      p.fetcher,
		Translator:   p.translator,
		RepairJSONLD: cfg.RepairJSONLD,
		PageDelay:    cfg.PageDelay,
		Wait:         p.wait,
		Logger:       log.Named("record"),
	})
	p.blocklist = domain.NewBlocklist(cfg.Blocklist...)
	log.Debug("pipeline ready",
		zap.String("searcher", p.searcher.Name()),
		zap.String("fetcher", p.fetcher.Name()),
		zap.Bool("translate", p.translator != nil),
		zap.Int("blocklist", len(p.blocklist.Entries())),
	)

	return p, nil
}

func (p *Pipeline) newSearcher() plugin.Searcher {
	opts := search.Options{
		UserAgent: p.config.UserAgent,
		Timeout:   p.config.Timeout,
		PageDelay: p.config.SearchDelay,
		Wait:      p.wait,
		Logger:    p.log.Named("search"),
	}
	if p.config.Provider == ProviderBrave {
		return search.NewBrave(p.config.BraveAPIKey, opts)
	}
	return search.NewGoogle(p.config.GoogleAPIKey, p.config.GoogleEngineID, opts)
}

func (p *Pipeline) newFetcher() (plugin.Fetcher, error) {
	if p.config.FetcherMode == FetcherBrowser {
		bf, err := fetcher.NewBrowserFetcher(fetcher.BrowserFetcherConfig{
			Timeout:     p.config.BrowserTimeout,
			PageTimeout: p.config.PageTimeout,
			UserAgent:   p.config.UserAgent,
		})
		if err == nil {
			return bf, nil
		}
		p.log.Warn("browser fetcher unavailable, falling back to http", zap.Error(err))
		p.emit(plugin.Event{
			Type:    plugin.EventPageError,
			Error:   err,
			Message: fmt.Sprintf("Browser fetcher unavailable: %v (falling back to HTTP)", err),
		})
	}
	hf, err := fetcher.NewHTTPFetcher(fetcher.HTTPFetcherConfig{
		UserAgent:       p.config.UserAgent,
		Timeout:         p.config.Timeout,
		MaxResponseSize: p.config.MaxResponseSize,
		Proxy:           p.config.Proxy,
		CustomHeaders:   p.config.CustomHeaders,
	})
	if err != nil {
		return nil, err
	}
	return hf, nil
}

// Result is the outcome of one run.
type Result struct {
	Report *plugin.Report
	Stats  plugin.RunStats
	// SearchErr is the provider error that cut pagination short, if any.
	SearchErr error
}

// Run executes the pipeline. Search and page failures never abort the run;
// a canceled ctx stops it early and Run returns the partial result together
// with ctx.Err().
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.startTime = time.Now()
	p.stats = plugin.RunStats{}
	res := &Result{}

	query := plugin.SearchQuery{
		Keywords:   p.config.Keywords,
		Location:   p.config.Location,
		MaxResults: p.config.MaxResults,
	}

	p.emit(plugin.Event{
		Type:    plugin.EventSearchStarted,
		Message: fmt.Sprintf("Searching %s for %q", p.searcher.Name(), query.String()),
	})

	hits, err := p.searcher.Search(ctx, query)
	p.stats.SearchResults = len(hits)
	if err != nil {
		res.SearchErr = err
		p.stats.SearchError = err.Error()
		p.log.Warn("search stopped early", zap.Int("results", len(hits)), zap.Error(err))
		p.emit(plugin.Event{
			Type:    plugin.EventSearchError,
			Error:   err,
			Total:   len(hits),
			Message: fmt.Sprintf("Search stopped early: %v", err),
		})
	}
	p.emit(plugin.Event{
		Type:    plugin.EventSearchDone,
		Total:   len(hits),
		Message: fmt.Sprintf("Found %d results", len(hits)),
	})

	records := make([]plugin.CompanyRecord, 0, len(hits))
	for i, hit := range hits {
		if ctx.Err() != nil {
			break
		}
		records = append(records, p.processResult(ctx, i, len(hits), hit))
	}

	kept := p.blocklist.Filter(records)
	unique := domain.Dedupe(kept)
	p.stats.Blocked = len(records) - len(kept)
	p.stats.Duplicates = len(kept) - len(unique)
	p.stats.Records = len(unique)
	p.emit(plugin.Event{
		Type:    plugin.EventFiltered,
		Total:   len(records),
		Message: fmt.Sprintf("Filtered %d records: %d blocked, %d duplicates, %d kept", len(records), p.stats.Blocked, p.stats.Duplicates, len(unique)),
	})

	p.stats.Elapsed = time.Since(p.startTime)
	res.Stats = p.stats
	res.Report = &plugin.Report{
		Keywords:    p.config.Keywords,
		Location:    p.config.Location,
		GeneratedAt: time.Now(),
		Records:     unique,
	}

	stats := p.stats
	p.emit(plugin.Event{
		Type:    plugin.EventRunFinished,
		Stats:   &stats,
		Message: fmt.Sprintf("Run complete. %d records from %d results.", len(unique), len(hits)),
	})

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// CheckQuery is the query used by Check when no keywords are configured.
var CheckQuery = plugin.SearchQuery{Keywords: "restaurants", Location: "San Francisco", MaxResults: 3}

// Check requests a single result page from the search provider to confirm
// that the credentials work. No pages are fetched. An empty answer is an
// error.
func (p *Pipeline) Check(ctx context.Context) ([]plugin.SearchResult, error) {
	q := CheckQuery
	if p.config.Keywords != "" {
		q.Keywords = p.config.Keywords
		q.Location = p.config.Location
	}

	hits, err := p.searcher.Search(ctx, q)
	if err != nil {
		return hits, eris.Wrapf(err, "%s check failed", p.searcher.Name())
	}
	if len(hits) == 0 {
		return nil, eris.Errorf("%s returned no results for %q", p.searcher.Name(), q.String())
	}
	p.log.Debug("search check passed", zap.String("query", q.String()), zap.Int("results", len(hits)))
	return hits, nil
}

// processResult builds and cleans the record for one search hit.
func (p *Pipeline) processResult(ctx context.Context, i, total int, hit plugin.SearchResult) plugin.CompanyRecord {
	p.emit(plugin.Event{
		Type:  plugin.EventPageStarted,
		URL:   hit.Link,
		Index: i + 1,
		Total: total,
	})

	out := p.builder.Build(ctx, hit)
	rec := domain.Clean(out.Record)

	if out.Err != nil {
		p.stats.PagesErrored++
		p.emit(plugin.Event{
			Type:    plugin.EventPageError,
			URL:     hit.Link,
			Index:   i + 1,
			Total:   total,
			Record:  &rec,
			Page:    out.Page,
			Error:   out.Err,
			Message: fmt.Sprintf("Error fetching %s: %v", hit.Link, out.Err),
		})
		return rec
	}

	p.stats.PagesFetched++
	p.emit(plugin.Event{
		Type:   plugin.EventPageDone,
		URL:    hit.Link,
		Index:  i + 1,
		Total:  total,
		Record: &rec,
		Page:   out.Page,
	})
	return rec
}

func (p *Pipeline) emit(event plugin.Event) {
	p.onEvent(event)
}

// Close releases the fetcher.
func (p *Pipeline) Close() error {
	if p.fetcher != nil {
		return p.fetcher.Close()
	}
	return nil
}
