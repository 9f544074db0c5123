package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/nao1215/suruext/internal/model"
)

const fragmentTemplate = `
{{- define "copy" -}}
<span class="suru-copy-icon" data-qcode="{{.}}" title="Copy Q-code to clipboard">📋</span>
{{- end -}}

{{- define "sitelinks" -}}
{{range $i, $l := .Langs}}{{if $i}}, {{end}}<a href="{{$l.URL}}" target="_blank" class="suru-link">{{$l.Text}}</a>{{end -}}
{{if .Other}} <span class="suru-other-langs">+{{.Other}}</span>{{end}}
{{- end -}}

{{- define "item" -}}
<a href="{{.URL}}" target="_blank" class="suru-link">{{.Label}}</a> ({{.QCode}}{{template "copy" .QCode}}
{{- if .Selectable}} <input type="radio" name="p5137_selection" class="suru-radio" data-qcode="{{.QCode}}" data-translation="{{.Translation}}" title="Select for flask creation">{{end}}
{{- with .Sitelinks}}, {{template "sitelinks" .}}{{end}})
{{- end -}}

{{- define "suru" -}}
{{if .SuruFailed -}}
<div class="suru-error">Error fetching data from Wikidata</div>
{{- else if not .Suru -}}
<div class="suru-error">No lexemes with suru_id {{template "copy" .SuruID}}. <a href="{{.Links.SearchLexemes .Headword}}" target="_blank" class="suru-link">Search lexemes</a> | <a href="{{.Links.SearchItems .Headword}}" target="_blank" class="suru-link">Search objects</a> | <a href="{{.Links.NewLexeme .Headword}}" target="_blank" class="suru-link">Create on Wikidata</a> | <a href="{{.Links.Creator .Headword .SuruID}}" target="_blank" class="suru-link" id="flask-create-link">Create with flask</a></div>
{{- else -}}
<div class="suru-table-container">
<table class="suru-table">
<thead>
<tr><th>Lemma</th><th>Sense</th><th>P5137</th><th>Lemma (SV)</th></tr>
</thead>
<tbody>
{{range .Suru -}}
<tr>
<td><a href="{{.Lexeme}}" target="_blank" class="suru-link">{{.Lemma}} ({{.LCode}})</a></td>
<td>{{if .Sense}}<a href="{{.Sense}}" target="_blank" class="suru-link">{{.SCode}}</a>{{end}}</td>
<td>{{with .Item}}{{template "item" .}}{{end}}</td>
<td>{{if .LexemeSV}}<a href="{{.LexemeSV}}" target="_blank" class="suru-link">{{.LemmaSV}} ({{.LCodeSV}})</a>{{end}}</td>
</tr>
{{end -}}
</tbody>
</table>
</div>
{{- end}}
{{- end -}}

{{- define "translations" -}}
<div class="suru-table-container">
<table class="suru-table">
<thead>
<tr><th>Translation word (and lexeme if found)</th><th>Sense</th><th>P5137</th></tr>
</thead>
<tbody>
{{range .Words -}}
{{- $w := . -}}
{{- if .Rows -}}
{{range .Rows -}}
<tr>
<td>{{if .First}}{{$w.Label}} <a href="{{.Lexeme}}" target="_blank" class="suru-link">({{.LCode}})</a>{{else if .NewLexeme}}<a href="{{.Lexeme}}" target="_blank" class="suru-link">({{.LCode}})</a>{{else}}&nbsp;{{end}}</td>
<td>{{if .Sense}}<a href="{{.Sense}}" target="_blank" class="suru-link">{{.SCode}}</a>{{end}}</td>
<td>{{with .Item}}{{template "item" .}}{{end}}</td>
</tr>
{{end -}}
{{- else -}}
<tr>
<td>{{.Label}} <a href="{{.Links.NewSwedishNoun .Word}}" target="_blank" class="suru-link">(create</a>, <a href="{{.Links.SearchLexemes .Word}}" target="_blank" class="suru-link">search</a>, <a href="{{.Links.Svenska .Word}}" target="_blank" class="suru-link">svenska.se)</a></td>
<td></td>
<td></td>
</tr>
{{end -}}
{{- end -}}
</tbody>
</table>
</div>
{{- end -}}

{{- define "fragment" -}}
<div class="suru-content">
{{- if .ShowSuru}}{{template "suru" .}}{{end}}
{{- if .Words}}{{template "translations" .}}{{end -}}
</div>
{{- end -}}

{{- define "error" -}}
<div class="suru-content"><div class="suru-error">{{.}}</div></div>
{{- end -}}
`

var fragmentTmpl = template.Must(template.New("render").Parse(fragmentTemplate))

type linkView struct {
	Text string
	URL  string
}

type sitelinksView struct {
	Langs []linkView
	Other int
}

type itemView struct {
	URL   string
	Label string
	QCode string
	// Selectable items get the p5137_selection radio, whatever Translation
	// holds.
	Selectable  bool
	Translation string
	Sitelinks   *sitelinksView
}

type suruRow struct {
	Lexeme, Lemma, LCode string
	Sense, SCode         string
	Item                 *itemView
	LexemeSV, LemmaSV    string
	LCodeSV              string
}

type senseRow struct {
	First bool
	// NewLexeme marks the first row of a lexeme other than the first one.
	NewLexeme     bool
	Lexeme, LCode string
	Sense, SCode  string
	Item          *itemView
}

type wordView struct {
	Word  string
	Label string
	Rows  []senseRow
	Links Links
}

type fragmentView struct {
	ShowSuru   bool
	SuruFailed bool
	SuruID     string
	Headword   string
	Suru       []suruRow
	Words      []wordView
	Links      Links
}

// HTMLRenderer renders the augmentation fragment.
type HTMLRenderer struct {
	links Links
}

// NewHTMLRenderer returns a renderer whose helper links use links.
func NewHTMLRenderer(links Links) *HTMLRenderer {
	return &HTMLRenderer{links: links}
}

// Fragment renders the suru-content container for report. The SURU section
// is present only when the report has a SURU id; the translation table only
// when words were scraped.
func (r *HTMLRenderer) Fragment(report *model.AugmentReport) (string, error) {
	var buf bytes.Buffer
	if err := fragmentTmpl.ExecuteTemplate(&buf, "fragment", r.view(report)); err != nil {
		return "", fmt.Errorf("failed to render fragment: %w", err)
	}
	return buf.String(), nil
}

// ErrorFragment renders the container holding only an initialisation error.
func (r *HTMLRenderer) ErrorFragment(message string) string {
	var buf bytes.Buffer
	if err := fragmentTmpl.ExecuteTemplate(&buf, "error", "Error initializing widget: "+message); err != nil {
		return `<div class="suru-content"><div class="suru-error">Error initializing widget</div></div>`
	}
	return buf.String()
}

func (r *HTMLRenderer) view(report *model.AugmentReport) fragmentView {
	v := fragmentView{
		ShowSuru:   report.SuruID != "",
		SuruFailed: report.SuruLookupFailed,
		SuruID:     report.SuruID,
		Headword:   report.Headword,
		Links:      r.links,
	}

	for _, b := range report.SuruLexemes {
		row := suruRow{
			Lexeme:   b.Lexeme,
			Lemma:    b.Lemma,
			LCode:    model.EntityID(b.Lexeme),
			Sense:    b.Sense,
			SCode:    model.EntityID(b.Sense),
			LexemeSV: b.LexemeSV,
			LemmaSV:  b.LemmaSV,
			LCodeSV:  model.EntityID(b.LexemeSV),
		}
		if b.HasItem() {
			row.Item = newItemView(b.Item, b.ItemLabel, report.SitelinksFor(b.Item))
		}
		v.Suru = append(v.Suru, row)
	}

	for i, w := range report.Words {
		wv := wordView{Word: w.Word, Label: w.Label(), Links: r.links}
		if i < len(report.Translations) {
			for j, s := range report.Translations[i].Senses {
				row := senseRow{
					First:  j == 0,
					Lexeme: s.Lexeme,
					LCode:  model.EntityID(s.Lexeme),
					Sense:  s.Sense,
					SCode:  model.EntityID(s.Sense),
				}
				if j > 0 && s.Lexeme != "" && s.Lexeme != report.Translations[i].Senses[j-1].Lexeme {
					row.NewLexeme = true
				}
				if s.HasItem() {
					row.Item = newItemView(s.Item, s.ItemSV, report.SitelinksFor(s.Item))
					row.Item.Selectable = true
					row.Item.Translation = model.CleanTranslation(w.Word)
				}
				wv.Rows = append(wv.Rows, row)
			}
		}
		v.Words = append(v.Words, wv)
	}
	return v
}

func newItemView(item, label string, links *model.Sitelinks) *itemView {
	iv := &itemView{
		URL:   item,
		Label: label,
		QCode: model.EntityID(item),
	}
	if links.Empty() {
		return iv
	}

	sv := &sitelinksView{Other: links.OtherCount}
	for _, l := range []struct {
		code string
		link *model.Sitelink
	}{{"sv", links.SV}, {"fi", links.FI}, {"en", links.EN}} {
		if l.link != nil {
			sv.Langs = append(sv.Langs, linkView{Text: l.code, URL: l.link.URL})
		}
	}
	iv.Sitelinks = sv
	return iv
}
