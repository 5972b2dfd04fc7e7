package extractor

import (
	"regexp"
	"strings"
)

// EmailsExtractor picks the best email address out of free text.
type EmailsExtractor struct {
	pattern      *regexp.Regexp
	placeholders map[string]bool
}

func NewEmailsExtractor() *EmailsExtractor {
	return &EmailsExtractor{
		pattern: regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`),
		// Documentation and template domains that show up in page boilerplate.
		placeholders: map[string]bool{
			"example.com": true,
			"test.com":    true,
			"domain.com":  true,
		},
	}
}

// Extract returns the first address not on a placeholder domain. When every
// match is a placeholder the very first match is returned instead.
func (e *EmailsExtractor) Extract(text string) string {
	matches := e.pattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return ""
	}
	for _, match := range matches {
		if !e.isPlaceholder(match) {
			return match
		}
	}
	return matches[0]
}

func (e *EmailsExtractor) isPlaceholder(email string) bool {
	at := strings.LastIndex(email, "@")
	if at == -1 {
		return false
	}
	return e.placeholders[strings.ToLower(email[at+1:])]
}
