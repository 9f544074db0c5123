// Package matcher links the rows of a SURU word sheet to Wikidata.
//
// For every headword it looks for a Finnish lexeme of the same word class,
// the item of that lexeme's first sense, a Finnish item with the headword
// as label and Swedish items for each translation, and writes the matches
// back as extra columns.
package matcher
