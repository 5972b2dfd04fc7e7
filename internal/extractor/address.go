package extractor

import (
	"regexp"
	"strings"
)

const streetTypes = `(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Court|Ct|Place|Pl)`

// AddressExtractor extracts a street address from free text.
type AddressExtractor struct {
	patterns []*regexp.Regexp
}

func NewAddressExtractor() *AddressExtractor {
	return &AddressExtractor{
		patterns: []*regexp.Regexp{
			// 123 Main Street, Springfield, IL 62704
			regexp.MustCompile(`(?i)\d+\s+[A-Za-z0-9\s,]+` + streetTypes + `[\s,]+[A-Za-z\s,]+(?:[A-Z]{2})?\s+\d{5}`),
			// 45 Oak Avenue
			regexp.MustCompile(`(?i)\d+\s+[A-Za-z0-9\s,]+` + streetTypes),
		},
	}
}

// Extract tries the postal-code pattern first and only falls back to the
// bare street pattern when it finds nothing.
func (e *AddressExtractor) Extract(text string) string {
	for _, pattern := range e.patterns {
		if match := pattern.FindString(text); match != "" {
			return strings.TrimSpace(match)
		}
	}
	return ""
}
