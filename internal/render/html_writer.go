package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/nao1215/suruext/internal/model"
)

var summariesTmpl = template.Must(template.New("summaries").Parse(`<table class="suru-table">
<thead>
<tr><th>Target</th><th>Headword</th><th>SURU id</th><th>Words</th><th>Found</th><th>SURU lexemes</th><th>Status</th></tr>
</thead>
<tbody>
{{range . -}}
<tr><td>{{.Target}}</td><td>{{.Headword}}</td><td>{{.SuruID}}</td><td>{{.Words}}</td><td>{{.WordsFound}}</td><td>{{.SuruLexemes}}</td><td>{{.Status}}</td></tr>
{{end -}}
</tbody>
</table>
`))

// HTMLWriter writes the rendered fragment, or the whole augmented page
// when the report carries one.
type HTMLWriter struct {
	baseWriter
	renderer *HTMLRenderer
}

// NewHTMLWriter returns an HTMLWriter. renderer is used for reports that
// failed before their fragment was rendered.
func NewHTMLWriter(output io.Writer, renderer *HTMLRenderer) *HTMLWriter {
	if renderer == nil {
		renderer = NewHTMLRenderer(DefaultLinks())
	}
	return &HTMLWriter{baseWriter: newBaseWriter(output), renderer: renderer}
}

// Write outputs the augmented page, else the fragment, else an error
// fragment.
func (w *HTMLWriter) Write(report *model.AugmentReport) (int, error) {
	switch {
	case report.AugmentedPage != "":
		return io.WriteString(w.output, report.AugmentedPage)
	case report.Fragment != "":
		return io.WriteString(w.output, report.Fragment+"\n")
	case report.Error != "":
		return io.WriteString(w.output, w.renderer.ErrorFragment(report.Error)+"\n")
	default:
		fragment, err := w.renderer.Fragment(report)
		if err != nil {
			return 0, err
		}
		return io.WriteString(w.output, fragment+"\n")
	}
}

// WriteSummaries outputs a summary table.
func (w *HTMLWriter) WriteSummaries(summaries []*model.Summary) (int, error) {
	var buf bytes.Buffer
	if err := summariesTmpl.Execute(&buf, summaries); err != nil {
		return 0, fmt.Errorf("failed to render summaries: %w", err)
	}
	return w.output.Write(buf.Bytes())
}
