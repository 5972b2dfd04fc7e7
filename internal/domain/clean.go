package domain

import (
	"strings"

	"github.com/ramkansal/leadfang/pkg/plugin"
)

var nullMarkers = map[string]struct{}{
	"none": {},
	"null": {},
	"n/a":  {},
}

// Clean clears every field that only holds a null marker such as "N/A".
func Clean(rec plugin.CompanyRecord) plugin.CompanyRecord {
	for _, f := range []*string{&rec.CompanyName, &rec.Email, &rec.Phone, &rec.Address, &rec.URL} {
		if _, ok := nullMarkers[strings.ToLower(strings.TrimSpace(*f))]; ok {
			*f = ""
		}
	}
	return rec
}
