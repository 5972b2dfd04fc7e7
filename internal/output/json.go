package output

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/ramkansal/leadfang/pkg/plugin"
)

// JSONWriter writes the record array.
type JSONWriter struct{}

func NewJSONWriter() *JSONWriter { return &JSONWriter{} }

func (w *JSONWriter) Name() string { return "json" }

func (w *JSONWriter) Write(out io.Writer, report *plugin.Report) error {
	records := report.Records
	if records == nil {
		records = []plugin.CompanyRecord{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return eris.Wrap(err, "encode json report")
	}
	return nil
}
