// Package plugin defines the public types and interfaces for leadfang.
// External tools can import this package to write custom searchers,
// fetchers, or report writers without forking the project.
package plugin

import (
	"context"
	"io"
	"net/http"
	"time"
)

// ---------- Core Data Types ----------

// SearchResult is a single hit returned by a search provider.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchQuery describes what to look for.
type SearchQuery struct {
	Keywords   string
	Location   string
	MaxResults int
}

// String returns the query text sent to the provider.
func (q SearchQuery) String() string {
	if q.Location == "" {
		return q.Keywords
	}
	return q.Keywords + " " + q.Location
}

// PageData represents a fetched web page before parsing.
type PageData struct {
	URL           string        `json:"url"`
	FinalURL      string        `json:"final_url"`
	StatusCode    int           `json:"status_code"`
	Headers       http.Header   `json:"-"`
	Body          []byte        `json:"-"`
	Encoding      string        `json:"encoding"`
	ContentType   string        `json:"content_type"`
	FetchedAt     time.Time     `json:"fetched_at"`
	FetchDuration time.Duration `json:"fetch_duration"`
	FetcherUsed   string        `json:"fetcher_used"`
	Error         string        `json:"error,omitempty"`
}

// CompanyRecord is the unit of output. Empty strings mean "absent".
type CompanyRecord struct {
	CompanyName string `json:"company_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	URL         string `json:"url"`
}

// Fill copies each non-empty contact field of src into r where r's field
// is still empty. A field, once set, is never replaced. URL is not touched.
func (r *CompanyRecord) Fill(src CompanyRecord) {
	setOnce(&r.CompanyName, src.CompanyName)
	setOnce(&r.Email, src.Email)
	setOnce(&r.Phone, src.Phone)
	setOnce(&r.Address, src.Address)
}

// Missing reports whether any contact field is still empty.
func (r *CompanyRecord) Missing() bool {
	return r.CompanyName == "" || r.Email == "" || r.Phone == "" || r.Address == ""
}

func setOnce(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

// Report is everything a ReportWriter needs to render one run.
type Report struct {
	Keywords    string          `json:"keywords"`
	Location    string          `json:"location"`
	GeneratedAt time.Time       `json:"generated_at"`
	Records     []CompanyRecord `json:"records"`
}

// ---------- Event Types ----------

// Event represents a progress event emitted by the pipeline.
type Event struct {
	Type    EventType
	URL     string
	Index   int
	Total   int
	Record  *CompanyRecord
	Page    *PageData
	Error   error
	Stats   *RunStats
	Message string
}

// EventType identifies the kind of event.
type EventType int

const (
	EventSearchStarted EventType = iota
	EventSearchDone
	EventSearchError
	EventPageStarted
	EventPageDone
	EventPageError
	EventFiltered
	EventRunFinished
)

// RunStats holds statistics for one pipeline run.
type RunStats struct {
	SearchResults int           `json:"search_results"`
	PagesFetched  int           `json:"pages_fetched"`
	PagesErrored  int           `json:"pages_errored"`
	Blocked       int           `json:"blocked"`
	Duplicates    int           `json:"duplicates"`
	Records       int           `json:"records"`
	SearchError   string        `json:"search_error,omitempty"`
	Elapsed       time.Duration `json:"elapsed"`
}

// ---------- Plugin Interfaces ----------

// Searcher turns a query into an ordered list of search results.
type Searcher interface {
	// Name returns a human-readable identifier for this provider.
	Name() string

	// Search pages through the provider until MaxResults hits are gathered.
	// On a provider error it returns the results gathered so far together
	// with the error.
	Search(ctx context.Context, q SearchQuery) ([]SearchResult, error)
}

// Fetcher defines how pages are retrieved.
type Fetcher interface {
	// Name returns a human-readable identifier for this fetcher.
	Name() string

	// Fetch retrieves the page at the given URL.
	Fetch(ctx context.Context, url string) (*PageData, error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// ReportWriter renders the final record list.
type ReportWriter interface {
	// Name returns a human-readable identifier for this writer.
	Name() string

	// Write renders the report to w.
	Write(w io.Writer, report *Report) error
}
