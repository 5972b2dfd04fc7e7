package output

import (
	"html/template"
	"io"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ramkansal/leadfang/pkg/plugin"
)

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Company Search Results - {{.Keywords}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
  .container { max-width: 1400px; margin: 0 auto; background: #fff; padding: 30px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,.1); }
  h1 { color: #333; border-bottom: 3px solid #4CAF50; padding-bottom: 10px; }
  .search-info { background: #e8f5e9; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
  .search-info p { margin: 5px 0; }
  table { width: 100%; border-collapse: collapse; }
  th { background: #4CAF50; color: #fff; padding: 12px; text-align: left; }
  td { padding: 10px 12px; border-bottom: 1px solid #ddd; }
  tr:hover { background: #f5f5f5; }
  .company-name { font-weight: bold; color: #2c3e50; }
  .url { color: #3498db; word-break: break-all; }
  .missing { color: #999; font-style: italic; }
  .stats { margin-top: 20px; color: #666; font-size: 14px; }
</style>
</head>
<body>
<div class="container">
  <h1>Company Search Results</h1>
  <div class="search-info">
    <p><strong>Keywords:</strong> {{.Keywords}}</p>
    <p><strong>Location:</strong> {{.Location}}</p>
    <p><strong>Total Results:</strong> {{.Total}}</p>
  </div>
  <table>
    <thead>
      <tr>
        <th>Company</th>
        <th>Website</th>
        <th>Email</th>
        <th>Phone</th>
        <th>Address</th>
      </tr>
    </thead>
    <tbody>
{{- range .Records}}
      <tr>
        <td class="company-name">{{template "value" .CompanyName}}</td>
        <td>{{with .URL}}<a href="{{.}}" target="_blank" rel="noopener" class="url">{{.}}</a>{{else}}{{template "value" ""}}{{end}}</td>
        <td>{{template "value" .Email}}</td>
        <td>{{template "value" .Phone}}</td>
        <td>{{template "value" .Address}}</td>
      </tr>
{{- end}}
    </tbody>
  </table>
  <div class="stats">
    <p><strong>Generated:</strong> {{.Generated}}</p>
  </div>
</div>
</body>
</html>
{{define "value"}}{{if .}}{{.}}{{else}}<span class="missing">N/A</span>{{end}}{{end}}`

var reportTemplate = template.Must(template.New("report").Parse(reportHTML))

type htmlView struct {
	Keywords  string
	Location  string
	Total     int
	Generated string
	Records   []plugin.CompanyRecord
}

// HTMLWriter renders a standalone HTML table. Every scraped or
// user-supplied string goes through html/template escaping.
type HTMLWriter struct{}

func NewHTMLWriter() *HTMLWriter { return &HTMLWriter{} }

func (w *HTMLWriter) Name() string { return "html" }

func (w *HTMLWriter) Write(out io.Writer, report *plugin.Report) error {
	generated := report.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	view := htmlView{
		Keywords:  report.Keywords,
		Location:  report.Location,
		Total:     len(report.Records),
		Generated: generated.Format("2006-01-02 15:04:05"),
		Records:   report.Records,
	}
	if err := reportTemplate.Execute(out, view); err != nil {
		return eris.Wrap(err, "execute html template")
	}
	return nil
}
