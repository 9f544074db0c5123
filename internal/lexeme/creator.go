package lexeme

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nao1215/suruext/internal/config"
	"github.com/nao1215/suruext/internal/model"
	"github.com/nao1215/suruext/internal/wikidata"
)

// Editor is the part of the action API the creator uses.
// *wikidata.ActionClient implements it.
type Editor interface {
	Login(ctx context.Context, username, password string) error
	GetEntity(ctx context.Context, id string) (*wikidata.Entity, error)
	NewLexeme(ctx context.Context, lemma, lang, languageItem, categoryItem string) (string, error)
	CreateStringClaim(ctx context.Context, entity, property, val string) (string, error)
	CreateItemClaim(ctx context.Context, entity, property string, numericID int) (string, error)
	AddSense(ctx context.Context, lexemeID string, glosses map[string]string) (string, error)
}

// Request describes the lexeme to get or create.
type Request struct {
	Lang      string `json:"lang"`
	Lemma     string `json:"lemma"`
	Category  string `json:"category"`
	SuruID    string `json:"suru_id,omitempty"`
	SVGloss   string `json:"sv_gloss,omitempty"`
	SenseItem string `json:"betydelse_objekt,omitempty"`
}

// Validate trims the fields and checks the required ones and the
// language, category and item ids.
func (r *Request) Validate() error {
	r.Lang = strings.TrimSpace(r.Lang)
	r.Lemma = strings.TrimSpace(r.Lemma)
	r.Category = strings.TrimSpace(r.Category)
	r.SuruID = strings.TrimSpace(r.SuruID)
	r.SVGloss = strings.TrimSpace(r.SVGloss)
	r.SenseItem = strings.TrimSpace(r.SenseItem)

	if r.Lang == "" || r.Lemma == "" || r.Category == "" {
		return ErrMissingParameter
	}
	if _, ok := model.Languages[r.Lang]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLanguage, r.Lang)
	}
	if _, ok := model.LexicalCategories[r.Category]; !ok {
		return fmt.Errorf("%w for %s %s: %s", ErrUnknownCategory, r.Lang, r.Lemma, r.Category)
	}
	if r.SenseItem != "" {
		if _, ok := model.NumericID(r.SenseItem); !ok || !strings.HasPrefix(r.SenseItem, "Q") {
			return fmt.Errorf("%w: %s", ErrInvalidItem, r.SenseItem)
		}
	}
	return nil
}

// Result is the outcome of Add.
type Result struct {
	LexemeID  string `json:"lexeme_id"`
	URL       string `json:"lexeme_url"`
	Created   bool   `json:"created"`
	ClaimID   string `json:"claim_id,omitempty"`
	SenseID   string `json:"sense_id,omitempty"`
	SenseItem string `json:"sense_item,omitempty"`
}

// ClaimAdded reports whether a SURU id claim was written.
func (r *Result) ClaimAdded() bool { return r.ClaimID != "" }

// SenseAdded reports whether a sense was written.
func (r *Result) SenseAdded() bool { return r.SenseID != "" }

// Creator gets or creates lexemes. Add calls are serialised so two
// requests for the same lemma cannot both create it.
type Creator struct {
	editor      Editor
	sparql      wikidata.Querier
	creds       config.Credentials
	wikidataURL string
	logger      *slog.Logger

	mu       sync.Mutex
	loggedIn bool
}

// Option configures a Creator.
type Option func(*Creator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Creator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWikidataURL sets the site used for lexeme URLs.
func WithWikidataURL(u string) Option {
	return func(c *Creator) {
		if u != "" {
			c.wikidataURL = strings.TrimRight(u, "/")
		}
	}
}

// NewCreator returns a Creator editing through editor, looking lexemes up
// through sparql and logging in with creds on first use.
func NewCreator(editor Editor, sparql wikidata.Querier, creds config.Credentials, opts ...Option) *Creator {
	c := &Creator{
		editor:      editor,
		sparql:      sparql,
		creds:       creds,
		wikidataURL: config.DefaultWikidataURL,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LexemeURL is the wiki page of a lexeme.
func (c *Creator) LexemeURL(id string) string {
	return c.wikidataURL + "/wiki/Lexeme:" + id
}

// Add gets or creates the lexeme described by req, adds the SURU id claim
// if it is missing and, when the lexeme has no senses and both gloss and
// item are given, adds a sense for the item.
func (c *Creator) Add(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.login(ctx); err != nil {
		return nil, err
	}

	languageItem := model.Languages[req.Lang]
	categoryItem := model.LexicalCategories[req.Category]
	logger := c.logger.With("lang", req.Lang, "lemma", req.Lemma, "category", req.Category)

	id, err := c.find(ctx, req.Lemma, req.Lang, languageItem, categoryItem)
	if err != nil {
		return nil, err
	}

	res := &Result{LexemeID: id}
	var entity *wikidata.Entity
	if id == "" {
		err = c.edit(ctx, logger, "new lexeme", func() (err error) {
			id, err = c.editor.NewLexeme(ctx, req.Lemma, req.Lang, languageItem, categoryItem)
			return err
		})
		if err != nil {
			return nil, err
		}
		res.LexemeID = id
		res.Created = true
		entity = &wikidata.Entity{ID: id}
		logger.Info("created lexeme", "lexeme", id)
	} else {
		entity, err = c.editor.GetEntity(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read lexeme %s: %w", id, err)
		}
		logger.Info("found existing lexeme", "lexeme", id)
	}
	res.URL = c.LexemeURL(id)

	if req.SuruID != "" {
		suruID := model.StripSuruPrefix(req.SuruID)
		if hasStringClaim(entity, model.PropertySuruID, suruID) {
			logger.Debug("suru id already present", "lexeme", id, "suru_id", suruID)
		} else {
			var claimID string
			err := c.edit(ctx, logger, "suru id claim", func() (err error) {
				claimID, err = c.editor.CreateStringClaim(ctx, id, model.PropertySuruID, suruID)
				return err
			})
			if err != nil {
				return res, err
			}
			res.ClaimID = claimID
			logger.Info("added suru id", "lexeme", id, "suru_id", suruID)
		}
	}

	if len(entity.Senses) > 0 || req.SVGloss == "" || req.SenseItem == "" {
		logger.Debug("no sense added", "lexeme", id, "senses", len(entity.Senses))
		return res, nil
	}

	var senseID string
	err = c.edit(ctx, logger, "add sense", func() (err error) {
		senseID, err = c.editor.AddSense(ctx, id, map[string]string{"sv": req.SVGloss})
		return err
	})
	if err != nil {
		return res, err
	}
	res.SenseID = senseID

	numericID, _ := model.NumericID(req.SenseItem)
	err = c.edit(ctx, logger, "item claim", func() error {
		_, err := c.editor.CreateItemClaim(ctx, senseID, model.PropertyItemForSense, numericID)
		return err
	})
	if err != nil {
		return res, err
	}
	res.SenseItem = req.SenseItem
	logger.Info("added sense", "sense", senseID, "item", req.SenseItem)
	return res, nil
}

func (c *Creator) login(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}
	if c.creds.Empty() {
		return config.ErrMissingCredentials
	}
	if err := c.editor.Login(ctx, c.creds.Username, c.creds.Password); err != nil {
		return err
	}
	c.loggedIn = true
	return nil
}

// edit runs fn. When the session or edit token has expired it logs in
// again and runs fn once more.
func (c *Creator) edit(ctx context.Context, logger *slog.Logger, call string, fn func() error) error {
	err := fn()
	if !wikidata.IsSessionError(err) {
		return err
	}
	logger.Warn("Wikidata session expired, logging in again", "call", call, "error", err)
	c.loggedIn = false
	if err := c.login(ctx); err != nil {
		return err
	}
	return fn()
}

// find returns the id of an existing lexeme, or "".
func (c *Creator) find(ctx context.Context, lemma, lang, languageItem, categoryItem string) (string, error) {
	res, err := c.sparql.Select(ctx, wikidata.LexemeLookupQuery(lemma, lang, languageItem, categoryItem))
	if err != nil {
		return "", fmt.Errorf("failed to look up lexeme %q: %w", lemma, err)
	}
	for _, row := range res.Bindings() {
		if id := model.EntityID(row["lexeme"].Value); id != "" {
			return id, nil
		}
	}
	return "", nil
}

func hasStringClaim(entity *wikidata.Entity, property, val string) bool {
	for _, st := range entity.Claims[property] {
		if st.MainSnak.DataValue == nil {
			continue
		}
		var s string
		if err := json.Unmarshal(st.MainSnak.DataValue.Value, &s); err == nil && s == val {
			return true
		}
	}
	return false
}
