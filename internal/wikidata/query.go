package wikidata

import (
	"fmt"
	"strings"

	"github.com/nao1215/suruext/internal/model"
)

// suruQueryTemplate selects Finnish lexemes carrying a SURU id together
// with their senses, the items of those senses and the Swedish lexemes
// whose senses point at the same items.
const suruQueryTemplate = `SELECT DISTINCT ?lexeme ?lemma ?suru_id ?sense ?gloss_sv ?item ?itemLabel ?itemDescription ?lexeme_sv ?lemma_sv ?gloss_sv_fi ?sense_sv
WHERE {
  ?lexeme dct:language wd:%[1]s ;
          wikibase:lemma ?lemma ;
          wdt:%[2]s ?suru_id ;
          wdt:%[2]s "%[3]s" .
  OPTIONAL { ?lexeme ontolex:sense ?sense . }
  OPTIONAL {
    ?sense skos:definition ?gloss_sv .
    FILTER(LANG(?gloss_sv) = "sv")
  }
  OPTIONAL {
    ?sense wdt:%[4]s ?item .
    OPTIONAL {
      ?item rdfs:label ?itemLabel .
      FILTER(LANG(?itemLabel) = "sv")
    }
    OPTIONAL {
      ?item schema:description ?itemDescription .
      FILTER(LANG(?itemDescription) = "sv")
    }
  }
  OPTIONAL {
    ?sense wdt:%[4]s ?item .
    ?sense_sv wdt:%[4]s ?item .
    ?lexeme_sv ontolex:sense ?sense_sv ;
               dct:language wd:%[5]s ;
               wikibase:lemma ?lemma_sv .
    OPTIONAL {
      ?sense_sv skos:definition ?gloss_sv_fi .
      FILTER(LANG(?gloss_sv_fi) = "fi")
    }
  }
}`

// translationQueryTemplate selects Swedish nouns with a given lemma and
// their senses.
const translationQueryTemplate = `SELECT DISTINCT ?lexeme ?lemma ?sense ?gloss_fi ?item ?item_sv WHERE {
  ?lexeme dct:language wd:%[1]s ;
          wikibase:lemma ?lemma ;
          wikibase:lexicalCategory wd:%[2]s .
  FILTER(?lemma = "%[3]s"@sv)
  OPTIONAL {
    ?lexeme ontolex:sense ?sense .
    OPTIONAL {
      ?sense skos:definition ?gloss_fi .
      FILTER(LANG(?gloss_fi) = "fi")
    }
    OPTIONAL {
      ?sense wdt:%[4]s ?item .
      ?item rdfs:label ?item_sv .
      FILTER(LANG(?item_sv) = "sv")
    }
  }
}`

// lexemeLookupTemplate finds a lexeme by lemma, language and category.
const lexemeLookupTemplate = `SELECT ?lexeme WHERE {
  ?lexeme dct:language wd:%[1]s ;
          wikibase:lexicalCategory wd:%[2]s ;
          wikibase:lemma "%[3]s"@%[4]s .
}
LIMIT 1`

// SuruQuery builds the lookup by SURU id.
func SuruQuery(suruID string) string {
	return fmt.Sprintf(suruQueryTemplate,
		model.Languages["fi"],
		model.PropertySuruID,
		EscapeLiteral(suruID),
		model.PropertyItemForSense,
		model.Languages["sv"],
	)
}

// TranslationQuery builds the lookup of Swedish nouns by lemma.
func TranslationQuery(word string) string {
	return fmt.Sprintf(translationQueryTemplate,
		model.Languages["sv"],
		model.LexicalCategories["noun"],
		EscapeLiteral(word),
		model.PropertyItemForSense,
	)
}

// LexemeLookupQuery builds the lookup of an existing lexeme. languageItem
// and categoryItem are Q ids; lang is the lemma language code.
func LexemeLookupQuery(lemma, lang, languageItem, categoryItem string) string {
	return fmt.Sprintf(lexemeLookupTemplate,
		languageItem,
		categoryItem,
		EscapeLiteral(lemma),
		lang,
	)
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeLiteral escapes s for use inside a double-quoted SPARQL string.
func EscapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}
