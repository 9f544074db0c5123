// Package model defines the data shared by the scraper, the Wikidata
// clients, the renderer and the history store.
//
// The central type is AugmentReport, which collects everything one run
// learns about a dictionary page: the scraped translation words, the
// Finnish lexemes carrying the page's SURU id, the Swedish lexemes found
// for each translation word and the sitelinks of the items they point to.
// All types serialise to JSON for report output and database storage.
package model
