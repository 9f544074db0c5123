package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/suruext/internal/model"
)

const entity = "http://www.wikidata.org/entity/"

// createTestReport returns a report for the page of "koira" with one SURU
// lexeme, one translation with two senses and one without lexemes.
func createTestReport() *model.AugmentReport {
	r := model.NewAugmentReport("https://example.org/?suru_id=SURU_abc")
	r.Headword = "koira"
	r.SuruID = "abc"
	r.Words = []model.TranslationWord{
		{Word: "hund", GroupID: "1"},
		{Word: "vovve"},
	}
	r.SuruLexemes = []model.LexemeBinding{{
		Lexeme:    entity + "L1",
		Lemma:     "koira",
		Sense:     entity + "L1-S1",
		Item:      entity + "Q144",
		ItemLabel: "hund",
		LexemeSV:  entity + "L2",
		LemmaSV:   "hund",
	}}
	r.Translations = []model.TranslationResult{
		{Word: r.Words[0], Senses: []model.SwedishSense{
			{Lexeme: entity + "L2", Lemma: "hund", Sense: entity + "L2-S1", Item: entity + "Q144", ItemSV: "hund"},
			{Lexeme: entity + "L2", Lemma: "hund", Sense: entity + "L2-S2"},
		}},
		{Word: r.Words[1], Senses: []model.SwedishSense{}},
	}
	r.Sitelinks["Q144"] = &model.Sitelinks{
		SV:         &model.Sitelink{Title: "Hund", URL: "https://sv.wikipedia.org/wiki/Hund"},
		EN:         &model.Sitelink{Title: "Dog", URL: "https://en.wikipedia.org/wiki/Dog"},
		OtherCount: 3,
	}
	return r
}

func render(t *testing.T, r *model.AugmentReport) string {
	t.Helper()
	out, err := NewHTMLRenderer(DefaultLinks()).Fragment(r)
	if err != nil {
		t.Fatalf("Fragment() error = %v", err)
	}
	return out
}

func TestHTMLRendererFragment(t *testing.T) {
	t.Parallel()

	out := render(t, createTestReport())

	t.Run("content is wrapped in the suru container", func(t *testing.T) {
		t.Parallel()
		if !strings.HasPrefix(out, `<div class="suru-content">`) || !strings.HasSuffix(out, `</div>`) {
			t.Errorf("unexpected container:\n%s", out)
		}
	})

	t.Run("suru table shows lemma sense item and swedish lemma", func(t *testing.T) {
		t.Parallel()
		for _, want := range []string{
			`<th>Lemma</th><th>Sense</th><th>P5137</th><th>Lemma (SV)</th>`,
			`<a href="http://www.wikidata.org/entity/L1" target="_blank" class="suru-link">koira (L1)</a>`,
			`<a href="http://www.wikidata.org/entity/L1-S1" target="_blank" class="suru-link">L1-S1</a>`,
			`<a href="http://www.wikidata.org/entity/L2" target="_blank" class="suru-link">hund (L2)</a>`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("fragment lacks %s\n%s", want, out)
			}
		}
	})

	t.Run("item cell carries copy icon and sitelinks", func(t *testing.T) {
		t.Parallel()
		want := `<a href="http://www.wikidata.org/entity/Q144" target="_blank" class="suru-link">hund</a> (Q144` +
			`<span class="suru-copy-icon" data-qcode="Q144" title="Copy Q-code to clipboard">📋</span>, ` +
			`<a href="https://sv.wikipedia.org/wiki/Hund" target="_blank" class="suru-link">sv</a>, ` +
			`<a href="https://en.wikipedia.org/wiki/Dog" target="_blank" class="suru-link">en</a>` +
			` <span class="suru-other-langs">+3</span>)`
		if !strings.Contains(out, want) {
			t.Errorf("fragment lacks item cell %s\n%s", want, out)
		}
	})

	t.Run("first sense row shows the word and later rows are blank", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(out, `<td>1. hund <a href="http://www.wikidata.org/entity/L2" target="_blank" class="suru-link">(L2)</a></td>`) {
			t.Errorf("first row missing:\n%s", out)
		}
		if strings.Count(out, "<td>&nbsp;</td>") != 1 {
			t.Errorf("expected one continuation row:\n%s", out)
		}
	})

	t.Run("translation item has a selection radio", func(t *testing.T) {
		t.Parallel()
		want := `<input type="radio" name="p5137_selection" class="suru-radio" data-qcode="Q144" data-translation="hund" title="Select for flask creation">`
		if !strings.Contains(out, want) {
			t.Errorf("radio missing:\n%s", out)
		}
		if strings.Count(out, `class="suru-radio"`) != 1 {
			t.Errorf("radio must only appear in the translation table:\n%s", out)
		}
	})

	t.Run("word without lexemes gets helper links", func(t *testing.T) {
		t.Parallel()
		for _, want := range []string{
			`<td>vovve <a href="https://www.wikidata.org/wiki/Special:NewLexeme?lemma=vovve&amp;language=sv&amp;lexicalCategory=Q1084" target="_blank" class="suru-link">(create</a>`,
			`ns146=1" target="_blank" class="suru-link">search</a>`,
			`<a href="https://svenska.se/tre/?sok=vovve&amp;pz=1" target="_blank" class="suru-link">svenska.se)</a></td>`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("fragment lacks %s\n%s", want, out)
			}
		}
	})

	t.Run("fragment is well formed", func(t *testing.T) {
		t.Parallel()
		nodes, err := html.ParseFragment(strings.NewReader(out), &html.Node{
			Type:     html.ElementNode,
			Data:     "body",
			DataAtom: atom.Body,
		})
		if err != nil || len(nodes) == 0 {
			t.Fatalf("ParseFragment() = %v, %v", nodes, err)
		}
		var buf bytes.Buffer
		if err := html.Render(&buf, nodes[0]); err != nil {
			t.Fatal(err)
		}
		if strings.Count(buf.String(), "<table") != 2 {
			t.Errorf("expected two tables after reparse:\n%s", buf.String())
		}
	})
}

func TestHTMLRendererSuruSection(t *testing.T) {
	t.Parallel()

	t.Run("no suru id hides the section", func(t *testing.T) {
		t.Parallel()
		r := createTestReport()
		r.SuruID = ""
		out := render(t, r)
		if strings.Contains(out, "Lemma (SV)") || strings.Contains(out, "suru-error") {
			t.Errorf("suru section rendered without id:\n%s", out)
		}
	})

	t.Run("failed lookup shows the fetch error", func(t *testing.T) {
		t.Parallel()
		r := createTestReport()
		r.SuruLexemes = nil
		r.SuruLookupFailed = true
		out := render(t, r)
		if !strings.Contains(out, `<div class="suru-error">Error fetching data from Wikidata</div>`) {
			t.Errorf("fetch error missing:\n%s", out)
		}
	})

	t.Run("no lexemes offers search and creation links", func(t *testing.T) {
		t.Parallel()
		r := createTestReport()
		r.SuruLexemes = nil
		out := render(t, r)
		for _, want := range []string{
			`No lexemes with suru_id <span class="suru-copy-icon" data-qcode="abc"`,
			`search=koira&amp;title=Special%3ASearch&amp;profile=advanced&amp;fulltext=1&amp;ns146=1`,
			`search=koira&amp;ns0=1`,
			`Special:NewLexeme?lemma=koira" target="_blank" class="suru-link">Create on Wikidata</a>`,
			`id="flask-create-link">Create with flask</a>`,
			`http://localhost:5001/add?category=noun&amp;lang=fi&amp;lemma=koira&amp;suru_id=abc`,
			`</a> | <a`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("fragment lacks %s\n%s", want, out)
			}
		}
	})
}

func TestHTMLRendererOmitsEmptyTranslationTable(t *testing.T) {
	t.Parallel()

	r := createTestReport()
	r.Words = nil
	r.Translations = nil
	out := render(t, r)
	if strings.Contains(out, "Translation word (and lexeme if found)") {
		t.Errorf("translation table rendered without words:\n%s", out)
	}
}

func TestHTMLRendererHomonymLexemes(t *testing.T) {
	t.Parallel()

	r := model.NewAugmentReport("x")
	r.Words = []model.TranslationWord{{Word: "fil"}}
	senses := []model.SwedishSense{
		{Lexeme: entity + "L12", Sense: entity + "L12-S2"},
		{Lexeme: entity + "L5", Sense: entity + "L5-S1"},
		{Lexeme: entity + "L12", Sense: entity + "L12-S1"},
		{Lexeme: entity + "L5", Sense: entity + "L5-S2"},
	}
	model.SortSenses(senses)
	r.Translations = []model.TranslationResult{{Word: r.Words[0], Senses: senses}}

	out := render(t, r)

	order := []string{"L5-S1", "L5-S2", "L12-S1", "L12-S2"}
	last := -1
	for _, code := range order {
		i := strings.Index(out, `class="suru-link">`+code+`</a>`)
		if i < last {
			t.Errorf("sense %s out of order:\n%s", code, out)
		}
		last = i
	}
	if !strings.Contains(out, `<td><a href="http://www.wikidata.org/entity/L12" target="_blank" class="suru-link">(L12)</a></td>`) {
		t.Errorf("second lexeme has no link of its own:\n%s", out)
	}
	if strings.Count(out, "<td>&nbsp;</td>") != 2 {
		t.Errorf("expected two continuation rows:\n%s", out)
	}
}

func TestHTMLRendererRadioWithoutCleanTranslation(t *testing.T) {
	t.Parallel()

	r := model.NewAugmentReport("x")
	r.Words = []model.TranslationWord{{Word: "1."}}
	r.Translations = []model.TranslationResult{{Word: r.Words[0], Senses: []model.SwedishSense{
		{Lexeme: entity + "L2", Sense: entity + "L2-S1", Item: entity + "Q144", ItemSV: "hund"},
	}}}

	out := render(t, r)
	want := `<input type="radio" name="p5137_selection" class="suru-radio" data-qcode="Q144" data-translation="" title="Select for flask creation">`
	if !strings.Contains(out, want) {
		t.Errorf("radio missing for empty translation:\n%s", out)
	}
}

func TestHTMLRendererEscapesValues(t *testing.T) {
	t.Parallel()

	r := model.NewAugmentReport("x")
	r.Words = []model.TranslationWord{{Word: `<script>alert(1)</script>`}}
	r.Translations = []model.TranslationResult{{Word: r.Words[0]}}
	r.SuruID = `"><img src=x>`
	r.SuruLexemes = []model.LexemeBinding{{Lexeme: "javascript:alert(1)", Lemma: "<b>x</b>"}}

	out := render(t, r)
	for _, bad := range []string{"<script>", "<b>x</b>", `href="javascript:`, `"><img`} {
		if strings.Contains(out, bad) {
			t.Errorf("unescaped %q in:\n%s", bad, out)
		}
	}
}

func TestHTMLRendererErrorFragment(t *testing.T) {
	t.Parallel()

	got := NewHTMLRenderer(DefaultLinks()).ErrorFragment("page has <no> body")
	want := `<div class="suru-content"><div class="suru-error">Error initializing widget: page has &lt;no&gt; body</div></div>`
	if got != want {
		t.Errorf("ErrorFragment() = %s, want %s", got, want)
	}
}

func TestLinks(t *testing.T) {
	t.Parallel()

	l := Links{WikidataURL: "https://test.wikidata.org/", CreatorURL: "http://127.0.0.1:9000/add"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "lexeme search escapes like encodeURIComponent",
			got:  l.SearchLexemes("sa & co"),
			want: "https://test.wikidata.org/w/index.php?search=sa%20%26%20co&title=Special%3ASearch&profile=advanced&fulltext=1&ns146=1",
		},
		{name: "item search", got: l.SearchItems("äiti"), want: "https://test.wikidata.org/w/index.php?search=%C3%A4iti&ns0=1"},
		{name: "swedish noun creation", got: l.NewSwedishNoun("hund"), want: "https://test.wikidata.org/wiki/Special:NewLexeme?lemma=hund&language=sv&lexicalCategory=Q1084"},
		{name: "svenska search", got: l.Svenska("hund"), want: "https://svenska.se/tre/?sok=hund&pz=1"},
		{name: "creator link", got: l.Creator("koira", "abc"), want: "http://127.0.0.1:9000/add?category=noun&lang=fi&lemma=koira&suru_id=abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestHTMLWriter(t *testing.T) {
	t.Parallel()

	t.Run("augmented page wins over the fragment", func(t *testing.T) {
		t.Parallel()
		r := createTestReport()
		r.Fragment = "<div>fragment</div>"
		r.AugmentedPage = "<html>page</html>"
		var buf bytes.Buffer
		if _, err := NewHTMLWriter(&buf, nil).Write(r); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "<html>page</html>" {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("failed report renders the initialisation error", func(t *testing.T) {
		t.Parallel()
		r := model.NewAugmentReport("x")
		r.Error = "fetch failed"
		var buf bytes.Buffer
		if _, err := NewHTMLWriter(&buf, nil).Write(r); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "Error initializing widget: fetch failed") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("summaries become a table", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewHTMLWriter(&buf, nil).WriteSummaries([]*model.Summary{model.NewSummary(createTestReport())}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "<td>koira</td>") {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf, WithPrettyPrint(), WithVersion("1.2.3")).Write(createTestReport()); err != nil {
		t.Fatal(err)
	}

	var got JSONReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if got.Version != "1.2.3" || got.Report.Headword != "koira" {
		t.Errorf("unexpected report: %+v", got)
	}
	if got.Summary.WordsFound != 1 || got.Summary.Words != 2 {
		t.Errorf("unexpected summary: %+v", got.Summary)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented output")
	}

	t.Run("nil summaries are an empty array", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteSummaries(nil); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "[]\n" {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"# SURU augmentation: koira",
		"## Lexemes with this SURU id",
		"[L1](http://www.wikidata.org/entity/L1)",
		"## Translations",
		"[sv](https://sv.wikipedia.org/wiki/Hund)",
		"+3",
		"not found",
		"```mermaid",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown lacks %q\n%s", want, out)
		}
	}

	t.Run("history lists every summary", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		s := model.NewSummary(createTestReport())
		if _, err := NewMarkdownWriter(&buf).WriteSummaries([]*model.Summary{s, s}); err != nil {
			t.Fatal(err)
		}
		if strings.Count(buf.String(), "https://example.org/?suru_id=SURU_abc") != 2 {
			t.Errorf("expected two rows:\n%s", buf.String())
		}
	})
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("tables list lexemes and translations", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		for _, want := range []string{"SURU id: abc", "SURU LEXEMES", "TRANSLATIONS", "L2-S2", "Q144", "not found", "1 of 2 words found"} {
			if !strings.Contains(out, want) {
				t.Errorf("text lacks %q\n%s", want, out)
			}
		}
	})

	t.Run("failed suru lookup is reported", func(t *testing.T) {
		t.Parallel()
		r := createTestReport()
		r.SuruLexemes = nil
		r.SuruLookupFailed = true
		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf).Write(r); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "Error fetching data from Wikidata") {
			t.Errorf("output = %s", buf.String())
		}
	})

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf).WriteSummaries(nil); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "No augmentations recorded.") {
			t.Errorf("output = %s", buf.String())
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	n, err := NewMultiWriter(NewJSONWriter(&a), NewTextWriter(&b)).Write(createTestReport())
	if err != nil {
		t.Fatal(err)
	}
	if n != a.Len()+b.Len() || a.Len() == 0 || b.Len() == 0 {
		t.Errorf("n = %d, a = %d, b = %d", n, a.Len(), b.Len())
	}
}
