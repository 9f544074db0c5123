// Package log provides the slog setup used by suruext.
//
// Every logger is built on SecureHandler, which masks attribute values that
// carry Wikidata credentials before they reach the output:
//   - bot passwords and login names used by the lexeme creator
//   - login and CSRF tokens returned by the MediaWiki action API
//   - cookies and authorization headers configured for dictionary sites
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("csrf token obtained", "token", tok) // token=***REDACTED***
//
// Components derive child loggers with log.Component:
//
//	sparqlLog := log.Component(logger, "sparql")
package log
