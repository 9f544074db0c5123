// Package main provides the entry point for the suruext CLI.
//
// suruext augments SURU dictionary entry pages with Wikidata lexeme data:
// the Finnish lexemes carrying the entry's SURU id and the Swedish
// lexemes of every translation on the page.
//
// Usage:
//
//	suruext augment <page-url-or-file>...
//	suruext serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
