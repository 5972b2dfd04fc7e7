package extractor

import (
	"regexp"
	"strings"
)

// PhonesExtractor extracts a phone number from free text.
type PhonesExtractor struct {
	patterns []*regexp.Regexp
}

func NewPhonesExtractor() *PhonesExtractor {
	return &PhonesExtractor{
		patterns: []*regexp.Regexp{
			// North American: +1 (234) 567-8900, 234.567.8900
			regexp.MustCompile(`\+?1?[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
			// Generic international: +44 20 7946 0958
			regexp.MustCompile(`\+?\d{1,3}[-.\s]?\d{1,4}[-.\s]?\d{1,4}[-.\s]?\d{1,9}`),
		},
	}
}

// Extract returns the first match of the first pattern class that fires.
func (e *PhonesExtractor) Extract(text string) string {
	for _, pattern := range e.patterns {
		if match := pattern.FindString(text); match != "" {
			return strings.TrimSpace(match)
		}
	}
	return ""
}
