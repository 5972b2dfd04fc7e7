package domain

import (
	"github.com/samber/lo"

	"github.com/ramkansal/leadfang/pkg/plugin"
)

// Dedupe keeps the first record seen for each domain key and preserves
// order. Later duplicates are dropped, not merged.
func Dedupe(records []plugin.CompanyRecord) []plugin.CompanyRecord {
	return lo.UniqBy(records, func(rec plugin.CompanyRecord) Key {
		return Normalize(rec.URL)
	})
}
