// Package lexeme creates Finnish lexemes on Wikidata for SURU entries.
//
// Creator.Add reuses an existing lexeme with the same lemma, language and
// lexical category when the query service knows one, attaches the SURU id
// (P12682) and, for lexemes without senses, adds a sense with a Swedish
// gloss pointing at an item (P5137).
package lexeme
