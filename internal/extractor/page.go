package extractor

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"

	"github.com/ramkansal/leadfang/pkg/plugin"
)

// Page is the parsed view of a fetched HTML document.
type Page struct {
	// Title is the trimmed <title> text, empty when the tag is absent.
	Title string
	// Heading is the trimmed text of the first <h1>.
	Heading string
	// Text is the visible text with script and style content removed,
	// NFKC-normalized and whitespace-collapsed.
	Text string
	// Blocks are the raw application/ld+json payloads in document order.
	Blocks []string
}

// Name returns the best page-derived company name: the title, else the
// first heading.
func (p *Page) Name() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Heading
}

// ParsePage decodes the page body using its detected encoding and builds
// the text view.
func ParsePage(page *plugin.PageData) (*Page, error) {
	if page == nil || len(page.Body) == 0 {
		return nil, eris.New("empty page body")
	}

	doc, err := goquery.NewDocumentFromReader(decodeBody(page))
	if err != nil {
		return nil, eris.Wrapf(err, "parse html from %s", page.URL)
	}

	p := &Page{
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		Heading: strings.TrimSpace(doc.Find("h1").First().Text()),
	}

	// JSON-LD structured data, collected before scripts are dropped
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if raw := strings.TrimSpace(s.Text()); raw != "" {
			p.Blocks = append(p.Blocks, raw)
		}
	})

	doc.Find("script, style").Remove()
	p.Text = NormalizeText(doc.Text())

	return p, nil
}

func decodeBody(page *plugin.PageData) io.Reader {
	raw := bytes.NewReader(page.Body)
	if page.Encoding == "" {
		return raw
	}
	r, err := charset.NewReaderLabel(page.Encoding, raw)
	if err != nil {
		// unknown label: hand the bytes over undecoded
		return bytes.NewReader(page.Body)
	}
	return r
}

// NormalizeText applies NFKC and collapses every whitespace run, non-breaking
// spaces included, to one ASCII space.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}
