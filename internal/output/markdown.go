package output

import (
	"bytes"
	"io"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/rotisserie/eris"

	"github.com/ramkansal/leadfang/pkg/plugin"
)

// MarkdownWriter renders the HTML report and converts it to Markdown, so
// both formats share one layout and one escaping pass.
type MarkdownWriter struct {
	html *HTMLWriter
	conv *converter.Converter
}

func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{
		html: NewHTMLWriter(),
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

func (w *MarkdownWriter) Name() string { return "markdown" }

func (w *MarkdownWriter) Write(out io.Writer, report *plugin.Report) error {
	var buf bytes.Buffer
	if err := w.html.Write(&buf, report); err != nil {
		return err
	}
	md, err := w.conv.ConvertString(buf.String())
	if err != nil {
		return eris.Wrap(err, "convert report to markdown")
	}
	if _, err := io.WriteString(out, md+"\n"); err != nil {
		return eris.Wrap(err, "write markdown report")
	}
	return nil
}
