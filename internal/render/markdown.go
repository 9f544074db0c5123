package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/suruext/internal/model"
)

// MarkdownWriter outputs reports as GitHub flavoured Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter returns a MarkdownWriter writing to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs one report.
func (w *MarkdownWriter) Write(report *model.AugmentReport) (int, error) {
	md := markdown.NewMarkdown(w.output)
	summary := model.NewSummary(report)

	w.writeHeader(md, report, summary)
	w.writeSuruLexemes(md, report)
	w.writeTranslations(md, report, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AugmentReport, s *model.Summary) {
	title := "SURU augmentation"
	if report.Headword != "" {
		title += ": " + report.Headword
	}
	md.H1(title)
	md.PlainText("")

	suruID := "-"
	if report.SuruID != "" {
		suruID = "`" + report.SuruID + "`"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", report.Target},
			{"Date", report.DateAugmented.Format("2006-01-02 15:04:05 MST")},
			{"SURU id", suruID},
			{"Translation words", strconv.Itoa(s.Words)},
			{"Words with lexemes", strconv.Itoa(s.WordsFound)},
			{"Status", statusText(s)},
		},
	})
	md.PlainText("")

	switch {
	case report.Error != "":
		md.Cautionf("Augmentation failed: %s", report.Error)
	case report.SuruLookupFailed:
		md.Warning("The lookup by SURU id failed; SURU lexemes are missing from this report.")
	case s.FailedLookups > 0:
		md.Warningf("%d translation lookup(s) failed and are shown as not found.", s.FailedLookups)
	case s.Status == model.StatusNoData:
		md.Note("No Wikidata lexemes were found for this page.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeSuruLexemes(md *markdown.Markdown, report *model.AugmentReport) {
	if report.SuruID == "" {
		return
	}
	md.H2("Lexemes with this SURU id")
	md.PlainText("")

	if len(report.SuruLexemes) == 0 {
		if !report.SuruLookupFailed {
			md.PlainTextf("No lexemes with suru_id `%s`.", report.SuruID)
			md.PlainText("")
		}
		return
	}

	rows := make([][]string, 0, len(report.SuruLexemes))
	for _, b := range report.SuruLexemes {
		item := "-"
		if b.HasItem() {
			item = b.ItemLabel + " " + mdLink(model.EntityID(b.Item), b.Item) + mdSitelinks(report.SitelinksFor(b.Item))
		}
		rows = append(rows, []string{
			b.Lemma + " " + mdLink(model.EntityID(b.Lexeme), b.Lexeme),
			orDash(mdLink(model.EntityID(b.Sense), b.Sense)),
			item,
			orDash(strings.TrimSpace(b.LemmaSV + " " + mdLink(model.EntityID(b.LexemeSV), b.LexemeSV))),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Lemma", "Sense", "P5137", "Lemma (SV)"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeTranslations(md *markdown.Markdown, report *model.AugmentReport, s *model.Summary) {
	if len(report.Words) == 0 {
		return
	}
	md.H2("Translations")
	md.PlainText("")

	var rows [][]string
	for _, t := range report.Translations {
		if !t.Found() {
			rows = append(rows, []string{t.Word.Label(), "not found", "-"})
			continue
		}
		for i, sense := range t.Senses {
			word := ""
			if i == 0 {
				word = t.Word.Label() + " " + mdLink(model.EntityID(sense.Lexeme), sense.Lexeme)
			}
			item := "-"
			if sense.HasItem() {
				item = sense.ItemSV + " " + mdLink(model.EntityID(sense.Item), sense.Item) + mdSitelinks(report.SitelinksFor(sense.Item))
			}
			rows = append(rows, []string{word, orDash(mdLink(model.EntityID(sense.Sense), sense.Sense)), item})
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Translation word", "Sense", "P5137"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeCoverage(md, s)
}

// writeCoverage draws a pie chart of translation words with and without
// lexemes.
func (w *MarkdownWriter) writeCoverage(md *markdown.Markdown, s *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Translation words with Swedish lexemes"),
		piechart.WithShowData(true),
	)
	if s.WordsFound > 0 {
		chart.LabelAndIntValue("Found", uint64(s.WordsFound))
	}
	if missing := s.Words - s.WordsFound - s.FailedLookups; missing > 0 {
		chart.LabelAndIntValue("Not found", uint64(missing))
	}
	if s.FailedLookups > 0 {
		chart.LabelAndIntValue("Lookup failed", uint64(s.FailedLookups))
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Generated by suruext from Wikidata lexemes*")
}

// WriteSummaries outputs a table with one row per summary.
func (w *MarkdownWriter) WriteSummaries(summaries []*model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("SURU augmentation history")
	md.PlainText("")

	if len(summaries) == 0 {
		md.PlainText("No augmentations recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Target,
			orDash(s.Headword),
			orDash(s.SuruID),
			strconv.Itoa(s.Words),
			strconv.Itoa(s.WordsFound),
			strconv.Itoa(s.SuruLexemes),
			statusText(s),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Target", "Headword", "SURU id", "Words", "Found", "SURU lexemes", "Status"},
		Rows:   rows,
	})
	return len(md.String()), md.Build()
}

func mdLink(text, url string) string {
	if url == "" {
		return ""
	}
	return fmt.Sprintf("[%s](%s)", text, url)
}

func mdSitelinks(s *model.Sitelinks) string {
	if s.Empty() {
		return ""
	}
	var parts []string
	for _, l := range []struct {
		code string
		link *model.Sitelink
	}{{"sv", s.SV}, {"fi", s.FI}, {"en", s.EN}} {
		if l.link != nil {
			parts = append(parts, mdLink(l.code, l.link.URL))
		}
	}
	if s.OtherCount > 0 {
		parts = append(parts, "+"+strconv.Itoa(s.OtherCount))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
