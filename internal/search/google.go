package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ramkansal/leadfang/pkg/plugin"
)

const (
	googleEndpoint = "https://www.googleapis.com/customsearch/v1"
	googlePageSize = 10
)

// Google queries the Custom Search JSON API.
type Google struct {
	apiKey   string
	engineID string
	endpoint string
	opts     Options
	client   *apiClient
}

func NewGoogle(apiKey, engineID string, opts Options) *Google {
	opts = opts.withDefaults()
	endpoint := opts.BaseURL
	if endpoint == "" {
		endpoint = googleEndpoint
	}
	opts.Logger = opts.Logger.With(zap.String("provider", "google"))
	return &Google{
		apiKey:   apiKey,
		engineID: engineID,
		endpoint: endpoint,
		opts:     opts,
		client:   newAPIClient(opts),
	}
}

func (g *Google) Name() string { return "google" }

func (g *Google) Search(ctx context.Context, q plugin.SearchQuery) ([]plugin.SearchResult, error) {
	return paginate(ctx, g.opts, q, googlePageSize, g.page)
}

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *Google) page(ctx context.Context, query string, index, count int) ([]plugin.SearchResult, error) {
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(count))
	params.Set("start", strconv.Itoa(index*googlePageSize+1))

	status, body, err := g.client.get(ctx, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp googleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrapf(ErrProvider, "malformed google response (status %d)", status)
	}
	if resp.Error != nil {
		return nil, eris.Wrapf(ErrProvider, "google: %s (code %d)", resp.Error.Message, resp.Error.Code)
	}
	if status >= http.StatusMultipleChoices {
		return nil, eris.Wrapf(ErrProvider, "google returned status %d", status)
	}

	results := make([]plugin.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, plugin.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}
