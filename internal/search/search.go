// Package search pages through web search APIs and returns the hits in
// provider order.
package search

import (
	"context"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ramkansal/leadfang/internal/pace"
	"github.com/ramkansal/leadfang/pkg/plugin"
)

// ErrProvider marks an error reported by the search provider itself, as
// opposed to a transport failure.
var ErrProvider = eris.New("search provider error")

// DefaultPageDelay follows each page request.
const DefaultPageDelay = 500 * time.Millisecond

// Options configures the shared transport and pagination of a provider.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// PageDelay follows each page request. Zero disables it.
	PageDelay time.Duration
	// Wait implements PageDelay; defaults to pace.Wait.
	Wait pace.Func
	// BaseURL overrides the provider endpoint.
	BaseURL string
	Logger  *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Wait == nil {
		o.Wait = pace.Wait
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	return o
}

// pageFunc fetches the index-th page of up to count results.
type pageFunc func(ctx context.Context, query string, index, count int) ([]plugin.SearchResult, error)

// paginate requests pages of at most pageSize until MaxResults hits are
// gathered, a page comes back empty or a request fails. On failure the hits
// gathered so far are returned with the error.
func paginate(ctx context.Context, opts Options, q plugin.SearchQuery, pageSize int, fetch pageFunc) ([]plugin.SearchResult, error) {
	limit := q.MaxResults
	if limit <= 0 {
		return nil, nil
	}
	query := q.String()
	pages := (limit + pageSize - 1) / pageSize

	var results []plugin.SearchResult
	for i := 0; i < pages && len(results) < limit; i++ {
		count := min(pageSize, limit-len(results))

		hits, err := fetch(ctx, query, i, count)
		if err != nil {
			return results, err
		}
		if len(hits) == 0 {
			opts.Logger.Debug("empty result page, stopping", zap.Int("page", i))
			break
		}
		if len(hits) > limit-len(results) {
			hits = hits[:limit-len(results)]
		}
		results = append(results, hits...)
		opts.Logger.Debug("result page received",
			zap.Int("page", i),
			zap.Int("hits", len(hits)),
			zap.Int("total", len(results)),
		)

		if err := opts.Wait(ctx, opts.PageDelay); err != nil {
			return results, eris.Wrap(err, "search interrupted")
		}
	}
	return results, nil
}

// apiClient issues JSON API requests through Colly.
type apiClient struct {
	collector *colly.Collector
}

func newAPIClient(opts Options) *apiClient {
	c := colly.NewCollector(colly.AllowURLRevisit())
	c.IgnoreRobotsTxt = true
	// error bodies carry the provider's message
	c.ParseHTTPErrorResponse = true
	c.SetRequestTimeout(opts.Timeout)
	if opts.UserAgent != "" {
		c.UserAgent = opts.UserAgent
	}
	return &apiClient{collector: c}
}

// get returns the status code and body of a GET request.
func (a *apiClient) get(ctx context.Context, rawURL string, header http.Header) (int, []byte, error) {
	c := a.collector.Clone()
	c.Context = ctx

	var (
		status int
		body   []byte
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	if header == nil {
		header = http.Header{}
	}
	header.Set("Accept", "application/json")

	err := c.Request(http.MethodGet, rawURL, nil, nil, header)
	c.Wait()
	if err != nil {
		return status, body, eris.Wrap(err, "search request")
	}
	return status, body, nil
}
