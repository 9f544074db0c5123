package render

import (
	"io"

	"github.com/nao1215/suruext/internal/model"
)

// Writer writes augmentation results in one output format.
type Writer interface {
	// Write outputs one report and returns the bytes written.
	Write(report *model.AugmentReport) (int, error)

	// WriteSummaries outputs a listing of summaries, as used by the history
	// command and batch runs.
	WriteSummaries(summaries []*model.Summary) (int, error)
}

// MultiWriter writes to several Writers in turn and stops at the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter returns a Writer fanning out to writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write writes report to every writer.
func (m *MultiWriter) Write(report *model.AugmentReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummaries writes summaries to every writer.
func (m *MultiWriter) WriteSummaries(summaries []*model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummaries(summaries)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusText is the human form of a summary status.
func statusText(s *model.Summary) string {
	switch s.Status {
	case model.StatusFailed:
		return "failed"
	case model.StatusNoData:
		return "no Wikidata lexemes"
	default:
		return "ok"
	}
}
