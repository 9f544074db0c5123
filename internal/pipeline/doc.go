// Package pipeline runs the augmentation of a dictionary page as a sequence
// of steps over one model.AugmentReport.
//
// The default pipeline fetches the page, scrapes the headword, the SURU id
// and the translation words, looks up lexemes by SURU id, looks up Swedish
// lexemes for every translation word in parallel, fetches the sitelinks of
// every item shown, and renders the HTML fragment.
//
// A failed lookup does not stop the pipeline: it is recorded in the report
// and rendered as "not found" or as a fetch error. Only a page that cannot
// be fetched or parsed fails the run.
//
// BatchProcessor augments several pages concurrently, one pipeline each.
package pipeline
