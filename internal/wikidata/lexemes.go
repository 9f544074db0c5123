package wikidata

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/suruext/internal/model"
)

// Querier runs SPARQL SELECT queries. *SPARQLClient implements it.
type Querier interface {
	Select(ctx context.Context, query string) (*SPARQLResult, error)
}

// Client runs the two lexeme lookups the augmenter needs.
type Client struct {
	sparql Querier
	logger *slog.Logger
}

// NewClient returns a Client over q.
func NewClient(q Querier, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{sparql: q, logger: logger}
}

// LexemesBySuruID returns every row of the lookup by SURU id in endpoint
// order.
func (c *Client) LexemesBySuruID(ctx context.Context, suruID string) ([]model.LexemeBinding, error) {
	res, err := c.sparql.Select(ctx, SuruQuery(suruID))
	if err != nil {
		return nil, err
	}

	rows := res.Bindings()
	out := make([]model.LexemeBinding, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.LexemeBinding{
			Lexeme:          value(row, "lexeme"),
			Lemma:           value(row, "lemma"),
			SuruID:          value(row, "suru_id"),
			Sense:           value(row, "sense"),
			GlossSV:         value(row, "gloss_sv"),
			Item:            value(row, "item"),
			ItemLabel:       value(row, "itemLabel"),
			ItemDescription: value(row, "itemDescription"),
			LexemeSV:        value(row, "lexeme_sv"),
			LemmaSV:         value(row, "lemma_sv"),
			GlossSVFI:       value(row, "gloss_sv_fi"),
			SenseSV:         value(row, "sense_sv"),
		})
	}
	return out, nil
}

// SwedishLexemes returns the senses of Swedish nouns whose lemma is word,
// ordered by sense number.
func (c *Client) SwedishLexemes(ctx context.Context, word string) ([]model.SwedishSense, error) {
	res, err := c.sparql.Select(ctx, TranslationQuery(word))
	if err != nil {
		return nil, err
	}

	rows := res.Bindings()
	out := make([]model.SwedishSense, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.SwedishSense{
			Lexeme:  value(row, "lexeme"),
			Lemma:   value(row, "lemma"),
			Sense:   value(row, "sense"),
			GlossFI: value(row, "gloss_fi"),
			Item:    value(row, "item"),
			ItemSV:  value(row, "item_sv"),
		})
	}
	model.SortSenses(out)
	return out, nil
}

// LookupTranslations runs SwedishLexemes for every word concurrently and
// returns one result per word in input order. limit caps the lookups in
// flight; 0 means no cap. A failed lookup is recorded in its result and
// does not stop the others.
func (c *Client) LookupTranslations(ctx context.Context, words []model.TranslationWord, limit int) []model.TranslationResult {
	results := make([]model.TranslationResult, len(words))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, w := range words {
		g.Go(func() error {
			senses, err := c.SwedishLexemes(gctx, w.Word)
			results[i] = model.TranslationResult{Word: w, Senses: senses}
			if err != nil {
				c.logger.Warn("translation lookup failed", "word", w.Word, "error", err)
				results[i].Senses = []model.SwedishSense{}
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	return results
}

// SitelinkFetcher fetches sitelinks of one item. *EntityClient implements
// it.
type SitelinkFetcher interface {
	Sitelinks(ctx context.Context, qid string) (*model.Sitelinks, error)
}

// FetchSitelinks fetches sitelinks for every id concurrently. Items that
// fail or have none are left out of the map.
func FetchSitelinks(ctx context.Context, f SitelinkFetcher, ids []string, limit int, logger *slog.Logger) map[string]*model.Sitelinks {
	if logger == nil {
		logger = slog.Default()
	}

	out := make(map[string]*model.Sitelinks, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, id := range ids {
		g.Go(func() error {
			links, err := f.Sitelinks(gctx, id)
			if err != nil {
				logger.Warn("sitelinks lookup failed", "item", id, "error", err)
				return nil
			}
			if links == nil {
				return nil
			}
			mu.Lock()
			out[id] = links
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	return out
}
