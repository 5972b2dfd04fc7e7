// Package translate turns non-English company names and addresses into
// English before they reach the report.
package translate

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Translator translates free text into English.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// IsASCII reports whether every non-space rune of s is ASCII.
func IsASCII(s string) bool {
	for _, r := range s {
		if r == ' ' {
			continue
		}
		if r >= 0x80 {
			return false
		}
	}
	return true
}

// ToEnglish translates text when it contains non-ASCII characters. A nil
// translator, ASCII input or a failed translation return text unchanged.
func ToEnglish(ctx context.Context, t Translator, log *zap.Logger, text string) string {
	if t == nil || text == "" || IsASCII(text) {
		return text
	}
	out, err := t.Translate(ctx, text)
	if err != nil {
		log.Debug("translation failed, keeping original", zap.String("text", text), zap.Error(err))
		return text
	}
	if out = strings.TrimSpace(out); out == "" {
		return text
	}
	return out
}
