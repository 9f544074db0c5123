package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/rodaine/table"

	"github.com/nao1215/suruext/internal/model"
)

// TextWriter outputs aligned plain-text tables for the terminal.
type TextWriter struct {
	baseWriter
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose adds glosses and sitelink counts to the tables.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter returns a TextWriter writing to output.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one report.
func (w *TextWriter) Write(report *model.AugmentReport) (int, error) {
	var buf bytes.Buffer
	s := model.NewSummary(report)

	title := report.Target
	if report.Headword != "" {
		title = report.Headword + "  " + report.Target
	}
	fmt.Fprintln(&buf, title)
	fmt.Fprintln(&buf, strings.Repeat("=", min(len(title), 80)))
	if report.SuruID != "" {
		fmt.Fprintf(&buf, "SURU id: %s\n", report.SuruID)
	}
	fmt.Fprintf(&buf, "Status:  %s (%d of %d words found)\n", statusText(s), s.WordsFound, s.Words)
	if report.Error != "" {
		fmt.Fprintf(&buf, "Error:   %s\n", report.Error)
	}

	if report.SuruID != "" {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "SURU LEXEMES")
		switch {
		case report.SuruLookupFailed:
			fmt.Fprintln(&buf, "  Error fetching data from Wikidata")
		case len(report.SuruLexemes) == 0:
			fmt.Fprintf(&buf, "  No lexemes with suru_id %s\n", report.SuruID)
		default:
			w.writeSuruTable(&buf, report)
		}
	}

	if len(report.Translations) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "TRANSLATIONS")
		w.writeTranslationTable(&buf, report)
	}

	return w.output.Write(buf.Bytes())
}

func (w *TextWriter) writeSuruTable(buf *bytes.Buffer, report *model.AugmentReport) {
	headers := []any{"Lemma", "Lexeme", "Sense", "Item", "Label", "Lemma (SV)"}
	if w.verbose {
		headers = append(headers, "Gloss (SV)", "Sitelinks")
	}
	tbl := table.New(headers...).WithWriter(buf)
	for _, b := range report.SuruLexemes {
		row := []any{
			b.Lemma,
			model.EntityID(b.Lexeme),
			model.EntityID(b.Sense),
			model.EntityID(b.Item),
			b.ItemLabel,
			strings.TrimSpace(b.LemmaSV + " " + model.EntityID(b.LexemeSV)),
		}
		if w.verbose {
			row = append(row, b.GlossSV, sitelinkCount(report.SitelinksFor(b.Item)))
		}
		tbl.AddRow(row...)
	}
	tbl.Print()
}

func (w *TextWriter) writeTranslationTable(buf *bytes.Buffer, report *model.AugmentReport) {
	headers := []any{"Word", "Lexeme", "Sense", "Item", "Label"}
	if w.verbose {
		headers = append(headers, "Gloss (FI)", "Sitelinks")
	}
	tbl := table.New(headers...).WithWriter(buf)
	for _, t := range report.Translations {
		if !t.Found() {
			note := "not found"
			if t.Error != "" {
				note = "lookup failed"
			}
			row := []any{t.Word.Label(), note, "", "", ""}
			if w.verbose {
				row = append(row, "", "")
			}
			tbl.AddRow(row...)
			continue
		}
		for i, s := range t.Senses {
			word := ""
			if i == 0 {
				word = t.Word.Label()
			}
			row := []any{word, model.EntityID(s.Lexeme), model.EntityID(s.Sense), model.EntityID(s.Item), s.ItemSV}
			if w.verbose {
				row = append(row, s.GlossFI, sitelinkCount(report.SitelinksFor(s.Item)))
			}
			tbl.AddRow(row...)
		}
	}
	tbl.Print()
}

// WriteSummaries outputs one line per summary.
func (w *TextWriter) WriteSummaries(summaries []*model.Summary) (int, error) {
	var buf bytes.Buffer
	if len(summaries) == 0 {
		fmt.Fprintln(&buf, "No augmentations recorded.")
		return w.output.Write(buf.Bytes())
	}
	tbl := table.New("Target", "Headword", "SURU id", "Words", "Found", "SURU lexemes", "Status").WithWriter(&buf)
	for _, s := range summaries {
		tbl.AddRow(s.Target, s.Headword, s.SuruID, s.Words, s.WordsFound, s.SuruLexemes, statusText(s))
	}
	tbl.Print()
	return w.output.Write(buf.Bytes())
}

func sitelinkCount(s *model.Sitelinks) string {
	if s.Empty() {
		return ""
	}
	n := s.OtherCount
	for _, l := range []*model.Sitelink{s.SV, s.FI, s.EN} {
		if l != nil {
			n++
		}
	}
	return fmt.Sprintf("%d", n)
}
