// Package scraper loads SURU dictionary pages and reads what the augmenter
// needs from them: the headword, the Swedish translation equivalents with
// their sense groups, and the SURU id carried in the page URL. It also puts
// a rendered fragment back into the page.
//
// Pages are parsed with golang.org/x/net/html and queried with goquery CSS
// selectors.
package scraper
