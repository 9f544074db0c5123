package config

import "errors"

// Validation errors returned by Config.Validate and Config.ValidateService.
var (
	// ErrNoTarget is returned when no page URL or file was given.
	ErrNoTarget = errors.New("no target specified: provide a dictionary page URL or an HTML file")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidConcurrency is returned for a negative lookup concurrency.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be non-negative (0 means unlimited)")

	// ErrSuruIDWithManyTargets is returned when --suru-id is given for more
	// than one page.
	ErrSuruIDWithManyTargets = errors.New("--suru-id applies to a single target")

	// ErrConflictingReportFormats is returned when more than one of --json,
	// --markdown and --text is set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose one of --json, --markdown, --text")

	// ErrInjectNeedsHTML is returned when --inject is combined with a
	// non-HTML format.
	ErrInjectNeedsHTML = errors.New("--inject only applies to HTML output")

	// ErrInvalidMaxBodySize is returned for a negative body size.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidEndpoint is returned when an endpoint is not an http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid endpoint: must be an absolute http or https URL")

	// ErrInvalidProxyAddress is returned when the proxy is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: must be host:port")

	// ErrMissingCredentials is returned when an editing operation runs
	// without a bot login in the environment.
	ErrMissingCredentials = errors.New("missing Wikidata credentials: set " + EnvUsername + " and " + EnvPassword)
)
