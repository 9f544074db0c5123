// Package wikidata talks to the three Wikidata services suruext uses:
//
//   - the SPARQL query service, for the lexeme lookups by SURU id and by
//     Swedish translation word (SPARQLClient, Client)
//   - Special:EntityData, for the Wikipedia sitelinks of items
//     (EntityClient)
//   - the MediaWiki action API, for entity search and lexeme editing
//     (ActionClient)
//
// All clients are built on go-resty over the *http.Client from
// internal/httpclient, so they share its User-Agent, proxy and cookie jar.
package wikidata
