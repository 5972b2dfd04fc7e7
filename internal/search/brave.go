package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ramkansal/leadfang/pkg/plugin"
)

const (
	braveEndpoint = "https://api.search.brave.com/res/v1/web/search"
	bravePageSize = 20
)

// Brave queries the Brave Search web endpoint.
type Brave struct {
	apiKey   string
	endpoint string
	opts     Options
	client   *apiClient
}

func NewBrave(apiKey string, opts Options) *Brave {
	opts = opts.withDefaults()
	endpoint := opts.BaseURL
	if endpoint == "" {
		endpoint = braveEndpoint
	}
	opts.Logger = opts.Logger.With(zap.String("provider", "brave"))
	return &Brave{
		apiKey:   apiKey,
		endpoint: endpoint,
		opts:     opts,
		client:   newAPIClient(opts),
	}
}

func (b *Brave) Name() string { return "brave" }

func (b *Brave) Search(ctx context.Context, q plugin.SearchQuery) ([]plugin.SearchResult, error) {
	return paginate(ctx, b.opts, q, bravePageSize, b.page)
}

type braveResponse struct {
	Web *struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
	Error *struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"error"`
}

func (b *Brave) page(ctx context.Context, query string, index, count int) ([]plugin.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	// offset counts pages, not results
	params.Set("offset", strconv.Itoa(index))

	header := http.Header{}
	header.Set("X-Subscription-Token", b.apiKey)

	status, body, err := b.client.get(ctx, b.endpoint+"?"+params.Encode(), header)
	if err != nil {
		return nil, err
	}

	var resp braveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrapf(ErrProvider, "malformed brave response (status %d)", status)
	}
	if resp.Error != nil {
		return nil, eris.Wrapf(ErrProvider, "brave: %s (%s)", resp.Error.Detail, resp.Error.Code)
	}
	if status >= http.StatusMultipleChoices {
		return nil, eris.Wrapf(ErrProvider, "brave returned status %d", status)
	}
	if resp.Web == nil {
		return nil, nil
	}

	results := make([]plugin.SearchResult, 0, len(resp.Web.Results))
	for _, r := range resp.Web.Results {
		results = append(results, plugin.SearchResult{
			Title:   plainText(r.Title),
			Link:    r.URL,
			Snippet: plainText(r.Description),
		})
	}
	return results, nil
}

// plainText strips the highlight markup Brave puts in titles and snippets
// and decodes HTML entities.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
