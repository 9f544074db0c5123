package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/suruext/internal/model"
	"github.com/nao1215/suruext/internal/sheet"
	"github.com/nao1215/suruext/internal/wikidata"
)

// Input columns.
const (
	ColumnHeadword     = "headword"
	ColumnWordClass    = "Sanaluokka"
	ColumnTranslations = "translations"
)

// Output columns.
const (
	ColumnLexemeValue = "Lfi_value"
	ColumnLexemeURL   = "Lfi_url"
	ColumnSenseItem   = "p5137"
	ColumnObject      = "object"
	ColumnSVObjects   = "sv_objects"
)

// ErrMissingColumn is returned when the sheet lacks the headword column.
var ErrMissingColumn = errors.New("missing column")

// DefaultConcurrency is the number of rows matched at once.
const DefaultConcurrency = 4

// Searcher is the part of the action API the matcher uses.
// *wikidata.ActionClient implements it.
type Searcher interface {
	SearchEntities(ctx context.Context, p wikidata.SearchParams) ([]wikidata.SearchResult, error)
	GetEntity(ctx context.Context, id string) (*wikidata.Entity, error)
}

// LexemeMatch is a lexeme whose label, language and category matched.
type LexemeMatch struct {
	Word     string
	Lang     string
	Category string
	URL      string
	// SenseItem is the first P5137 item of the first sense, if any.
	SenseItem string
}

// ItemMatch is the first item found for a search.
type ItemMatch struct {
	QCode string
	Title string
}

// String renders the match as "Q;title", or "" when nothing was found.
func (m ItemMatch) String() string {
	if m.QCode == "" {
		return ""
	}
	return m.QCode + ";" + m.Title
}

// RowMatch holds the matches of one sheet row.
type RowMatch struct {
	Lexeme    *LexemeMatch
	Object    ItemMatch
	SVObjects []ItemMatch
}

// Result summarises MatchTable.
type Result struct {
	Rows    int
	Lexemes int
	Objects int
	Failed  int
}

// Matcher runs the searches.
type Matcher struct {
	search      Searcher
	logger      *slog.Logger
	concurrency int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithConcurrency sets the number of rows matched at once.
func WithConcurrency(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// New returns a Matcher searching through s.
func New(s Searcher, opts ...Option) *Matcher {
	m := &Matcher{search: s, logger: slog.Default(), concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lexeme returns the first lexeme search hit whose label is query in lang
// and whose category, as described in userLang, is category. It returns
// nil when none matches.
func (m *Matcher) Lexeme(ctx context.Context, query, category, lang, userLang string) (*LexemeMatch, error) {
	hits, err := m.search.SearchEntities(ctx, wikidata.SearchParams{
		Search:   query,
		Language: lang,
		UserLang: userLang,
		Type:     wikidata.SearchTypeLexeme,
	})
	if err != nil {
		return nil, err
	}

	for _, hit := range hits {
		label := hit.DisplayLabel()
		if label.Value != query || label.Language != lang || descriptionCategory(hit.DisplayDescription()) != category {
			continue
		}
		match := &LexemeMatch{
			Word:     label.Value,
			Lang:     label.Language,
			Category: category,
			URL:      hit.ConceptURI,
		}
		entity, err := m.search.GetEntity(ctx, hit.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", hit.ID, err)
		}
		if len(entity.Senses) > 0 {
			if items := entity.Senses[0].ItemIDs(model.PropertyItemForSense); len(items) > 0 {
				match.SenseItem = items[0]
			}
		}
		return match, nil
	}
	return nil, nil
}

// descriptionCategory returns the part after "<language>, " of a lexeme
// description.
func descriptionCategory(desc string) string {
	if _, cat, ok := strings.Cut(desc, ", "); ok {
		return cat
	}
	return ""
}

// Item returns the first item search hit, or a zero ItemMatch.
func (m *Matcher) Item(ctx context.Context, query, lang, userLang string) (ItemMatch, error) {
	hits, err := m.search.SearchEntities(ctx, wikidata.SearchParams{
		Search:   query,
		Language: lang,
		UserLang: userLang,
		Type:     wikidata.SearchTypeItem,
	})
	if err != nil {
		return ItemMatch{}, err
	}
	if len(hits) == 0 {
		return ItemMatch{}, nil
	}
	return ItemMatch{QCode: hits[0].ID, Title: hits[0].DisplayLabel().Value}, nil
}

// MatchRow matches one headword and its translations.
func (m *Matcher) MatchRow(ctx context.Context, headword, wordClass string, translations []string) (RowMatch, error) {
	var row RowMatch
	var err error

	if row.Lexeme, err = m.Lexeme(ctx, headword, wordClass, "fi", "fi"); err != nil {
		return row, err
	}
	if row.Object, err = m.Item(ctx, headword, "fi", "fi"); err != nil {
		return row, err
	}
	for _, tr := range translations {
		obj, err := m.Item(ctx, tr, "sv", "fi")
		if err != nil {
			return row, err
		}
		if obj.QCode != "" {
			row.SVObjects = append(row.SVObjects, obj)
		}
	}
	return row, nil
}

// SplitTranslations splits a "; "-joined translations cell.
func SplitTranslations(cell string) []string {
	var out []string
	for _, t := range strings.Split(cell, ";") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// MatchTable matches every row of t and fills the output columns. A failed
// row is logged and left empty; only a missing headword column or a
// cancelled ctx is returned as an error.
func (m *Matcher) MatchTable(ctx context.Context, t *sheet.Table) (Result, error) {
	hwCol := t.Column(ColumnHeadword)
	if hwCol < 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrMissingColumn, ColumnHeadword)
	}
	classCol := t.Column(ColumnWordClass)
	trCol := t.Column(ColumnTranslations)

	cols := make(map[string]int, 5)
	for _, name := range []string{ColumnLexemeValue, ColumnLexemeURL, ColumnSenseItem, ColumnObject, ColumnSVObjects} {
		cols[name] = t.EnsureColumn(name)
	}

	matches := make([]RowMatch, len(t.Rows))
	var failed, done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i := range t.Rows {
		headword := t.Get(i, hwCol)
		if headword == "" {
			continue
		}
		wordClass := t.Get(i, classCol)
		translations := SplitTranslations(t.Get(i, trCol))

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			match, err := m.MatchRow(ctx, headword, wordClass, translations)
			n := done.Add(1)
			if err != nil {
				failed.Add(1)
				m.logger.Warn("row match failed", "row", i+2, "headword", headword, "error", err)
				return nil
			}
			m.logger.Debug("row matched", "row", i+2, "headword", headword, "done", n, "total", len(t.Rows))
			matches[i] = match
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Rows: len(t.Rows), Failed: int(failed.Load())}
	for i, match := range matches {
		if match.Lexeme != nil {
			res.Lexemes++
			t.Set(i, cols[ColumnLexemeValue], match.Lexeme.Word)
			t.Set(i, cols[ColumnLexemeURL], match.Lexeme.URL)
			t.Set(i, cols[ColumnSenseItem], match.Lexeme.SenseItem)
		}
		if match.Object.QCode != "" {
			res.Objects++
		}
		t.Set(i, cols[ColumnObject], match.Object.String())

		sv := make([]string, len(match.SVObjects))
		for j, obj := range match.SVObjects {
			sv[j] = obj.String()
		}
		t.Set(i, cols[ColumnSVObjects], strings.Join(sv, " | "))
	}
	return res, nil
}

// MatchFile reads the sheet at in, matches it and writes the result to
// out.
func (m *Matcher) MatchFile(ctx context.Context, in, out string) (Result, error) {
	t, err := sheet.Read(in)
	if err != nil {
		return Result{}, err
	}
	res, err := m.MatchTable(ctx, t)
	if err != nil {
		return res, err
	}
	if err := sheet.Write(out, t); err != nil {
		return res, err
	}
	return res, nil
}
