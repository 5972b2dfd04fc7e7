package domain

import (
	"strings"

	"github.com/samber/lo"

	"github.com/ramkansal/leadfang/pkg/plugin"
)

// Built-in blocklist groups.
var (
	SocialDomains = []string{
		"facebook.com", "twitter.com", "linkedin.com", "instagram.com",
		"youtube.com", "pinterest.com", "tiktok.com", "reddit.com",
	}
	DirectoryDomains = []string{
		"yelp.com", "yellowpages.com", "tripadvisor.com", "foursquare.com",
		"manta.com", "bbb.org", "angieslist.com", "thumbtack.com",
		"mapquest.com", "whitepages.com",
	}
	GeneralDomains = []string{
		"wikipedia.org", "medium.com", "amazon.com", "ebay.com", "etsy.com",
		"craigslist.org", "indeed.com", "glassdoor.com",
	}
)

// Blocklist rejects records whose domain is a social network, a business
// directory or a marketplace rather than a company site.
type Blocklist struct {
	entries []string
}

// NewBlocklist returns the built-in blocklist plus any extra entries.
// Extra entries are normalized the same way record URLs are.
func NewBlocklist(extra ...string) *Blocklist {
	entries := make([]string, 0, len(SocialDomains)+len(DirectoryDomains)+len(GeneralDomains)+len(extra))
	entries = append(entries, SocialDomains...)
	entries = append(entries, DirectoryDomains...)
	entries = append(entries, GeneralDomains...)
	for _, e := range extra {
		e = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e)), "www.")
		if e != "" {
			entries = append(entries, e)
		}
	}
	return &Blocklist{entries: lo.Uniq(entries)}
}

// Entries returns the active entries in insertion order.
func (b *Blocklist) Entries() []string {
	return append([]string(nil), b.entries...)
}

// Blocked reports whether the key equals, or is a subdomain of, any entry.
func (b *Blocklist) Blocked(k Key) bool {
	return lo.SomeBy(b.entries, k.Matches)
}

// Accept keeps a record unless its URL is empty or blocked. Contact data
// is not required.
func (b *Blocklist) Accept(rec plugin.CompanyRecord) bool {
	if strings.TrimSpace(rec.URL) == "" {
		return false
	}
	return !b.Blocked(Normalize(rec.URL))
}

// Filter returns the accepted records in order.
func (b *Blocklist) Filter(records []plugin.CompanyRecord) []plugin.CompanyRecord {
	return lo.Filter(records, func(rec plugin.CompanyRecord, _ int) bool {
		return b.Accept(rec)
	})
}
