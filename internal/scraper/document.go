package scraper

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/k3a/html2text"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/suruext/internal/model"
)

// Selectors of the SURU entry page markup.
const (
	selectorTranslation  = "span.vastine"
	selectorSenseGroup   = "div.merkitysryhma"
	selectorHeadword     = "h1.hakusana"
	selectorInsertAfter  = "hr.display-para"
	selectorFallbackHead = "h1"

	suruIDParam = "suru_id"
)

// Document is a parsed dictionary page. It is not modified after Parse.
type Document struct {
	url string
	raw []byte
	doc *goquery.Document
}

// Parse reads an HTML page. pageURL is kept for SuruID and may be "".
func Parse(r io.Reader, pageURL string) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Document{
		url: pageURL,
		raw: raw,
		doc: goquery.NewDocumentFromNode(root),
	}, nil
}

// URL returns the page URL given to Parse.
func (d *Document) URL() string {
	return d.url
}

// Title returns the trimmed <title> text.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// Headword returns the trimmed text of the first h1.hakusana, or "".
func (d *Document) Headword() string {
	return normalize(d.doc.Find(selectorHeadword).First().Text())
}

// TranslationWords returns the translation equivalents in page order.
// A single trailing ";" and every "|" are removed, empty words are
// skipped and only the first occurrence of a word is kept.
func (d *Document) TranslationWords() []model.TranslationWord {
	words := []model.TranslationWord{}
	seen := make(map[string]bool)

	d.doc.Find(selectorTranslation).Each(func(_ int, s *goquery.Selection) {
		text := cleanWord(s.Text())
		if text == "" || seen[text] {
			return
		}
		seen[text] = true

		words = append(words, model.TranslationWord{
			Word:    text,
			GroupID: s.Closest(selectorSenseGroup).AttrOr("id", ""),
		})
	})
	return words
}

// cleanWord applies the translation word clean-up rules.
func cleanWord(text string) string {
	text = normalize(text)
	text = strings.TrimSuffix(text, ";")
	return strings.ReplaceAll(text, "|", "")
}

// normalize trims and composes text so that "å" typed two ways compares
// equal.
func normalize(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// SuruID returns the SURU id of the page URL, see SuruIDFromURL.
func (d *Document) SuruID() string {
	return SuruIDFromURL(d.url)
}

// SuruIDFromURL returns the suru_id query parameter without its "SURU_"
// prefix, or "" when the URL has none.
func SuruIDFromURL(pageURL string) string {
	if pageURL == "" {
		return ""
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return model.StripSuruPrefix(strings.TrimSpace(u.Query().Get(suruIDParam)))
}

// Snapshot returns the page as plain text.
func (d *Document) Snapshot() string {
	return strings.TrimSpace(html2text.HTML2Text(string(d.raw)))
}

// HasInsertionPoint reports whether the page has the hr.display-para the
// fragment normally follows.
func (d *Document) HasInsertionPoint() bool {
	return d.doc.Find(selectorInsertAfter).Length() > 0
}

// Inject returns the page with fragment inserted right after the first
// hr.display-para, or after the first h1 when there is none, or at the end
// of body as a last resort.
func (d *Document) Inject(fragment string) (string, error) {
	root, err := html.Parse(bytes.NewReader(d.raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	switch {
	case doc.Find(selectorInsertAfter).Length() > 0:
		doc.Find(selectorInsertAfter).First().AfterHtml(fragment)
	case doc.Find(selectorFallbackHead).Length() > 0:
		doc.Find(selectorFallbackHead).First().AfterHtml(fragment)
	default:
		doc.Find("body").AppendHtml(fragment)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return buf.String(), nil
}
