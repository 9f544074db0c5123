package render

import (
	"net/url"
	"strings"

	"github.com/nao1215/suruext/internal/config"
	"github.com/nao1215/suruext/internal/model"
)

// SvenskaURL is the search page of svenska.se.
const SvenskaURL = "https://svenska.se/tre/"

// Links builds the helper links shown next to lexemes that were not found.
type Links struct {
	// WikidataURL is the wiki base, without trailing slash.
	WikidataURL string
	// CreatorURL is the /add endpoint of the lexeme creator.
	CreatorURL string
}

// DefaultLinks points at www.wikidata.org and the local creator.
func DefaultLinks() Links {
	return Links{
		WikidataURL: config.DefaultWikidataURL,
		CreatorURL:  config.DefaultCreatorURL,
	}
}

func (l Links) wiki() string {
	if l.WikidataURL == "" {
		return config.DefaultWikidataURL
	}
	return strings.TrimSuffix(l.WikidataURL, "/")
}

// escape encodes a query value the way browsers' encodeURIComponent does.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// SearchLexemes is a full-text search restricted to the Lexeme namespace.
func (l Links) SearchLexemes(q string) string {
	return l.wiki() + "/w/index.php?search=" + escape(q) +
		"&title=Special%3ASearch&profile=advanced&fulltext=1&ns146=1"
}

// SearchItems is a search restricted to items.
func (l Links) SearchItems(q string) string {
	return l.wiki() + "/w/index.php?search=" + escape(q) + "&ns0=1"
}

// NewLexeme opens Special:NewLexeme with the lemma filled in.
func (l Links) NewLexeme(lemma string) string {
	return l.wiki() + "/wiki/Special:NewLexeme?lemma=" + escape(lemma)
}

// NewSwedishNoun is NewLexeme with Swedish and noun preselected.
func (l Links) NewSwedishNoun(lemma string) string {
	return l.NewLexeme(lemma) + "&language=sv&lexicalCategory=" + model.LexicalCategories["noun"]
}

// Svenska searches svenska.se.
func (l Links) Svenska(q string) string {
	return SvenskaURL + "?sok=" + escape(q) + "&pz=1"
}

// Creator links to the lexeme creator for a Finnish noun with a SURU id.
func (l Links) Creator(lemma, suruID string) string {
	base := l.CreatorURL
	if base == "" {
		base = config.DefaultCreatorURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("lang", "fi")
	q.Set("lemma", lemma)
	q.Set("category", "noun")
	q.Set("suru_id", suruID)
	u.RawQuery = q.Encode()
	return u.String()
}
