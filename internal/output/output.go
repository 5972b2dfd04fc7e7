// Package output renders the final record list into report files.
package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ramkansal/leadfang/pkg/plugin"
)

// Formats lists the supported report formats.
var Formats = []string{"html", "markdown", "text", "json"}

// New returns the writer for a format name.
func New(format string) (plugin.ReportWriter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "html":
		return NewHTMLWriter(), nil
	case "markdown", "md":
		return NewMarkdownWriter(), nil
	case "text", "txt":
		return NewTextWriter(), nil
	case "json":
		return NewJSONWriter(), nil
	default:
		return nil, eris.Errorf("unknown report format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// FormatForPath guesses the format from a file extension. Unknown
// extensions get html.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "markdown"
	case ".txt":
		return "text"
	case ".json":
		return "json"
	default:
		return "html"
	}
}

// WriteFile renders the report in memory and writes it to path, so a
// failed render leaves no partial file behind.
func WriteFile(path string, w plugin.ReportWriter, report *plugin.Report) error {
	var buf bytes.Buffer
	if err := w.Write(&buf, report); err != nil {
		return eris.Wrapf(err, "render %s report", w.Name())
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return eris.Wrapf(err, "write report %s", path)
	}
	return nil
}
