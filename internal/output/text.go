package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/samber/lo"

	"github.com/ramkansal/leadfang/pkg/plugin"
)

// TextWriter writes the records as plain text, mirroring the terminal
// output without ANSI color codes.
type TextWriter struct{}

// NewTextWriter creates a new plain-text output writer.
func NewTextWriter() *TextWriter { return &TextWriter{} }

func (w *TextWriter) Name() string { return "text" }

func (w *TextWriter) Write(out io.Writer, report *plugin.Report) error {
	var b strings.Builder

	// Banner
	b.WriteString("\n  LEADFANG\n")
	b.WriteString("  Company contact finder\n")
	b.WriteString("  " + strings.Repeat("-", 58) + "\n\n")

	// Query info
	b.WriteString(fmt.Sprintf("  Keywords: %s\n", report.Keywords))
	b.WriteString(fmt.Sprintf("  Location: %s\n", report.Location))
	b.WriteString(fmt.Sprintf("  Generated: %s\n\n", report.GeneratedAt.Format(time.RFC1123)))

	for i, rec := range report.Records {
		b.WriteString(fmt.Sprintf("  [%d] %s\n", i+1, orNA(rec.CompanyName)))
		for _, field := range []struct{ name, value string }{
			{"website", rec.URL},
			{"email", rec.Email},
			{"phone", rec.Phone},
			{"address", rec.Address},
		} {
			b.WriteString(fmt.Sprintf("      +-- %s: %s\n", field.name, orNA(field.value)))
		}
	}

	// Summary
	b.WriteString("\n  " + strings.Repeat("-", 50) + "\n")
	b.WriteString(fmt.Sprintf("  Records: %d\n", len(report.Records)))
	b.WriteString(fmt.Sprintf("    with email: %d, with phone: %d, with address: %d\n\n",
		lo.CountBy(report.Records, func(r plugin.CompanyRecord) bool { return r.Email != "" }),
		lo.CountBy(report.Records, func(r plugin.CompanyRecord) bool { return r.Phone != "" }),
		lo.CountBy(report.Records, func(r plugin.CompanyRecord) bool { return r.Address != "" }),
	))

	if _, err := io.WriteString(out, b.String()); err != nil {
		return eris.Wrap(err, "write text report")
	}
	return nil
}

// ---------- helpers ----------

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
