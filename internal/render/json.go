package render

import (
	"encoding/json"
	"io"

	"github.com/nao1215/suruext/internal/model"
)

// JSONWriter outputs reports as JSON for other tools.
type JSONWriter struct {
	baseWriter

	version      string
	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion stamps the suruext version into every report.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter returns a JSONWriter writing to output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport wraps a report with its summary.
type JSONReport struct {
	Version string               `json:"version,omitempty"`
	Report  *model.AugmentReport `json:"report"`
	Summary *model.Summary       `json:"summary"`
}

// Write outputs report wrapped in a JSONReport.
func (w *JSONWriter) Write(report *model.AugmentReport) (int, error) {
	return w.writeJSON(&JSONReport{
		Version: w.version,
		Report:  report,
		Summary: model.NewSummary(report),
	})
}

// WriteSummaries outputs summaries as a JSON array.
func (w *JSONWriter) WriteSummaries(summaries []*model.Summary) (int, error) {
	if summaries == nil {
		summaries = []*model.Summary{}
	}
	return w.writeJSON(summaries)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
