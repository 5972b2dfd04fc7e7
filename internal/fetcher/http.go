package fetcher

import (
	"context"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html/charset"

	"github.com/ramkansal/leadfang/pkg/plugin"
)

// HTTPFetcher uses Colly for plain HTTP page fetching.
type HTTPFetcher struct {
	collector *colly.Collector
}

// HTTPFetcherConfig holds configuration for the HTTP fetcher.
type HTTPFetcherConfig struct {
	UserAgent       string
	Timeout         time.Duration
	MaxResponseSize int
	Proxy           string
	CustomHeaders   []string
}

// NewHTTPFetcher creates a new Colly-based HTTP fetcher. It fails when the
// proxy URL does not parse.
func NewHTTPFetcher(cfg HTTPFetcherConfig) (*HTTPFetcher, error) {
	opts := []colly.CollectorOption{
		colly.Async(false),
		// search results may repeat a URL and each one gets its own record
		colly.AllowURLRevisit(),
	}
	if headers := parseHeaders(cfg.CustomHeaders); len(headers) > 0 {
		// clones drop OnRequest callbacks but keep collector headers
		opts = append(opts, colly.Headers(headers))
	}

	c := colly.NewCollector(opts...)
	c.IgnoreRobotsTxt = true

	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}
	if cfg.Proxy != "" {
		if err := c.SetProxy(cfg.Proxy); err != nil {
			return nil, eris.Wrapf(err, "invalid proxy %q", cfg.Proxy)
		}
	}
	if cfg.MaxResponseSize > 0 {
		c.MaxBodySize = cfg.MaxResponseSize
	}

	return &HTTPFetcher{collector: c}, nil
}

func (f *HTTPFetcher) Name() string { return "http" }

// Fetch performs one GET. Transport failures and non-2xx statuses are
// returned as errors alongside the partially filled PageData.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (*plugin.PageData, error) {
	start := time.Now()

	page := &plugin.PageData{
		URL:         targetURL,
		FinalURL:    targetURL,
		FetcherUsed: f.Name(),
		FetchedAt:   start,
	}

	// Clone the collector for this individual fetch so callbacks do not pile up
	c := f.collector.Clone()
	c.Context = ctx

	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		page.Body = r.Body
		page.FinalURL = r.Request.URL.String()
		page.ContentType = r.Headers.Get("Content-Type")
		page.Headers = r.Headers.Clone()
		page.Encoding = detectEncoding(r.Body, page.ContentType)
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			page.StatusCode = r.StatusCode
			if r.Request != nil {
				page.FinalURL = r.Request.URL.String()
			}
		}
	})

	err := c.Visit(targetURL)
	c.Wait()
	page.FetchDuration = time.Since(start)

	if err == nil {
		err = fetchErr
	}
	if err != nil {
		page.Error = err.Error()
		return page, eris.Wrapf(err, "fetch %s", targetURL)
	}
	return page, nil
}

func (f *HTTPFetcher) Close() error {
	return nil
}

// detectEncoding names the encoding of body. Colly already transcodes
// bodies whose Content-Type declares a charset, so those are UTF-8 here.
func detectEncoding(body []byte, contentType string) string {
	if strings.Contains(strings.ToLower(contentType), "charset") {
		return "utf-8"
	}
	_, name, _ := charset.DetermineEncoding(body, contentType)
	return name
}

// parseHeaders turns "Name: value" lines into a header map. Malformed
// lines are skipped.
func parseHeaders(lines []string) map[string]string {
	headers := make(map[string]string, len(lines))
	for _, h := range lines {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}
