// Package server is the local HTTP service started by "suruext serve".
//
// It backs the "create lexeme" link rendered next to a SURU entry and can
// augment a page on request:
//
//	GET /                 usage document
//	GET /add?lang&lemma&category[&suru_id&sv_gloss&betydelse_objekt]
//	GET /augment?url[&suru_id]
//
// Answers of / and /add are JSON; /augment answers with the HTML fragment.
package server
