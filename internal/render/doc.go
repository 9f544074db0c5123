// Package render turns augmentation reports into output.
//
// HTMLRenderer builds the fragment that is shown on the dictionary page:
// the table of lexemes carrying the page's SURU id and the table of
// Swedish lexemes found for each translation word. Every value coming from
// the page or from Wikidata is escaped by html/template.
//
// The report writers serialise a whole run:
//   - HTMLWriter: the fragment, or the page with the fragment injected
//   - JSONWriter: the report and its summary
//   - MarkdownWriter: tables for sharing
//   - TextWriter: aligned tables for the terminal
package render
