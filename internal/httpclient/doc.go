// Package httpclient builds the *http.Client shared by the page fetcher and
// the Wikidata clients.
//
// The client carries a cookie jar (the action API keeps its login session
// in cookies), caps redirects, stamps every request with the configured
// User-Agent and adds the per-host cookie and headers from the .suruext
// file. Traffic can optionally go through a SOCKS5 proxy.
package httpclient
