// Package suruxml reads the SURU dictionary XML export.
//
// Every DictionaryEntry becomes an Entry holding its SURU id, headword and
// the Swedish translations grouped per translation block and per sense
// group. Entries can be flattened to an XLSX sheet for the matcher.
package suruxml
