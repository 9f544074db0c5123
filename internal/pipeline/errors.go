package pipeline

import "errors"

var (
	// ErrNoPage is returned by steps that need the fetched page when the
	// fetch step did not run.
	ErrNoPage = errors.New("no page fetched")

	// ErrNotHTML is returned when the fetched page is not an HTML document.
	ErrNotHTML = errors.New("page is not HTML")
)
