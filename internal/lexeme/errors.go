package lexeme

import "errors"

var (
	// ErrMissingParameter is returned when lang, lemma or category is empty.
	ErrMissingParameter = errors.New("missing required parameters: lang, lemma, category")

	// ErrUnknownCategory is returned for a lexical category without an item.
	ErrUnknownCategory = errors.New("unknown lexical category")

	// ErrUnknownLanguage is returned for a language code without an item.
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrInvalidItem is returned when the sense item is not a Q id.
	ErrInvalidItem = errors.New("invalid item id")
)
