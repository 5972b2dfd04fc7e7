// Package record builds one CompanyRecord per search result from the
// result's page and, as a fallback, from the result itself.
package record

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ramkansal/leadfang/internal/extractor"
	"github.com/ramkansal/leadfang/internal/pace"
	"github.com/ramkansal/leadfang/internal/translate"
	"github.com/ramkansal/leadfang/pkg/plugin"
)

// DefaultPageDelay follows every page fetch, successful or not.
const DefaultPageDelay = time.Second

// Options configures a Builder. Fetcher is required.
type Options struct {
	Fetcher plugin.Fetcher
	// Translator, when set, translates non-ASCII page names and addresses.
	Translator translate.Translator
	// RepairJSONLD retries malformed JSON-LD blocks through a repairer.
	RepairJSONLD bool
	// PageDelay follows every fetch. Zero disables it.
	PageDelay time.Duration
	Wait      pace.Func
	Logger    *zap.Logger
}

// Builder turns search results into company records.
type Builder struct {
	fetcher    plugin.Fetcher
	extractors *extractor.Registry
	structured *extractor.StructuredParser
	translator translate.Translator
	delay      time.Duration
	wait       pace.Func
	log        *zap.Logger
}

func New(opts Options) *Builder {
	if opts.Wait == nil {
		opts.Wait = pace.Wait
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Builder{
		fetcher:    opts.Fetcher,
		extractors: extractor.NewRegistry(),
		structured: extractor.NewStructuredParser(opts.RepairJSONLD),
		translator: opts.Translator,
		delay:      opts.PageDelay,
		wait:       opts.Wait,
		log:        opts.Logger,
	}
}

// Outcome is the result of building one record.
type Outcome struct {
	Record plugin.CompanyRecord
	// Page is the fetch result, nil when the fetcher returned none.
	Page *plugin.PageData
	// Err is the fetch or parse failure. The record is still usable.
	Err error
}

// Build performs exactly one fetch of result.Link followed by the courtesy
// delay, then fills the record from, in order: the page text, the page's
// structured data and the search result. A field keeps the first non-empty
// value it is offered.
func (b *Builder) Build(ctx context.Context, result plugin.SearchResult) Outcome {
	log := b.log.With(zap.String("url", result.Link))
	out := Outcome{Record: plugin.CompanyRecord{URL: result.Link}}

	page, err := b.scrape(ctx, result.Link, &out)
	if err != nil {
		out.Err = err
		log.Debug("page unavailable, using search result only", zap.Error(err))
	}

	rec := &out.Record
	if page != nil {
		fill(rec, b.pageRecord(page))
		rec.CompanyName = translate.ToEnglish(ctx, b.translator, log, rec.CompanyName)
		rec.Address = translate.ToEnglish(ctx, b.translator, log, rec.Address)
	}
	if rec.Missing() {
		fill(rec, b.snippetSource(result))
	}

	return out
}

func (b *Builder) scrape(ctx context.Context, link string, out *Outcome) (*extractor.Page, error) {
	data, err := b.fetcher.Fetch(ctx, link)
	out.Page = data

	if waitErr := b.wait(ctx, b.delay); waitErr != nil && err == nil {
		err = waitErr
	}
	if err != nil {
		return nil, err
	}
	return extractor.ParsePage(data)
}

// pageRecord is the page text record with its gaps filled from the page's
// structured data.
func (b *Builder) pageRecord(page *extractor.Page) plugin.CompanyRecord {
	text := b.extractors.Extract(page.Text).Record()
	text.CompanyName = page.Name()
	return b.structured.Merge(text, page.Blocks)
}

func (b *Builder) snippetSource(result plugin.SearchResult) plugin.CompanyRecord {
	snippet := b.extractors.Extract(result.Snippet).Record()
	snippet.CompanyName = result.Title
	return snippet
}

func fill(rec *plugin.CompanyRecord, sources ...plugin.CompanyRecord) {
	for _, src := range sources {
		rec.Fill(src)
	}
}
