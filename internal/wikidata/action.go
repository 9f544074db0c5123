package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-resty/resty/v2"
)

// Entity search types accepted by wbsearchentities.
const (
	SearchTypeItem   = "item"
	SearchTypeLexeme = "lexeme"
)

// SearchParams are the wbsearchentities parameters.
type SearchParams struct {
	// Search is the text to look for.
	Search string
	// Language is the language searched in.
	Language string
	// UserLang is the language of labels and descriptions in the answer.
	UserLang string
	// Type is SearchTypeItem or SearchTypeLexeme.
	Type string
	// Limit caps the number of results; 0 keeps the API default.
	Limit int
}

// DisplayText is a term with its language.
type DisplayText struct {
	Value    string `json:"value"`
	Language string `json:"language"`
}

// SearchResult is one wbsearchentities hit.
type SearchResult struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	ConceptURI  string `json:"concepturi"`
	Display     struct {
		Label       *DisplayText `json:"label"`
		Description *DisplayText `json:"description"`
	} `json:"display"`
}

// DisplayLabel returns the shown label and its language, falling back to
// the plain label.
func (r SearchResult) DisplayLabel() DisplayText {
	if r.Display.Label != nil {
		return *r.Display.Label
	}
	return DisplayText{Value: r.Label}
}

// DisplayDescription returns the shown description. For lexemes this is
// "<language>, <category>" in the user language.
func (r SearchResult) DisplayDescription() string {
	if r.Display.Description != nil {
		return r.Display.Description.Value
	}
	return r.Description
}

// Snak is the main value of a statement.
type Snak struct {
	SnakType  string `json:"snaktype"`
	Property  string `json:"property"`
	DataValue *struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	} `json:"datavalue,omitempty"`
}

// ItemID returns the item id of a wikibase-entityid value, or "".
func (s Snak) ItemID() string {
	if s.DataValue == nil {
		return ""
	}
	var v struct {
		ID        string `json:"id"`
		NumericID int    `json:"numeric-id"`
	}
	if err := json.Unmarshal(s.DataValue.Value, &v); err != nil {
		return ""
	}
	if v.ID != "" {
		return v.ID
	}
	if v.NumericID > 0 {
		return "Q" + strconv.Itoa(v.NumericID)
	}
	return ""
}

// Statement is one claim.
type Statement struct {
	ID       string `json:"id"`
	MainSnak Snak   `json:"mainsnak"`
}

// Sense is a lexeme sense.
type Sense struct {
	ID      string                 `json:"id"`
	Glosses map[string]DisplayText `json:"glosses"`
	Claims  map[string][]Statement `json:"claims"`
}

// ItemIDs returns the item ids claimed for property, in claim order.
func (s Sense) ItemIDs(property string) []string {
	var ids []string
	for _, st := range s.Claims[property] {
		if id := st.MainSnak.ItemID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Entity is the subset of an entity document suruext reads.
type Entity struct {
	ID              string                 `json:"id"`
	Type            string                 `json:"type"`
	Missing         *string                `json:"missing,omitempty"`
	Lemmas          map[string]DisplayText `json:"lemmas,omitempty"`
	Labels          map[string]DisplayText `json:"labels,omitempty"`
	Language        string                 `json:"language,omitempty"`
	LexicalCategory string                 `json:"lexicalCategory,omitempty"`
	Senses          []Sense                `json:"senses,omitempty"`
	Claims          map[string][]Statement `json:"claims,omitempty"`
}

// apiResponse holds the parts of action API answers suruext reads.
type apiResponse struct {
	Error  *APIError      `json:"error,omitempty"`
	Search []SearchResult `json:"search,omitempty"`
	Query  *struct {
		Tokens map[string]string `json:"tokens"`
	} `json:"query,omitempty"`
	Login *struct {
		Result string `json:"result"`
		Reason string `json:"reason"`
	} `json:"login,omitempty"`
	Entities map[string]Entity `json:"entities,omitempty"`
	Entity   *Entity           `json:"entity,omitempty"`
	Sense    *Sense            `json:"sense,omitempty"`
	Claim    *Statement        `json:"claim,omitempty"`
	Success  int               `json:"success,omitempty"`
}

// ActionClient calls the MediaWiki action API (api.php). Editing calls
// need Login first; the session lives in the client's cookie jar.
type ActionClient struct {
	endpoint string
	http     *resty.Client
	logger   *slog.Logger

	mu   sync.Mutex
	csrf string
}

// NewActionClient returns a client for endpoint using hc. hc must carry a
// cookie jar for Login to work.
func NewActionClient(hc *http.Client, endpoint string, logger *slog.Logger) *ActionClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActionClient{
		endpoint: endpoint,
		http:     resty.NewWithClient(hc).SetHeader("Accept", "application/json"),
		logger:   logger,
	}
}

func (c *ActionClient) get(ctx context.Context, params map[string]string) (*apiResponse, error) {
	params["format"] = "json"
	res, err := c.http.R().SetContext(ctx).SetQueryParams(params).Get(c.endpoint)
	return c.decode(res, err, params["action"])
}

func (c *ActionClient) post(ctx context.Context, params map[string]string) (*apiResponse, error) {
	params["format"] = "json"
	res, err := c.http.R().SetContext(ctx).SetFormData(params).Post(c.endpoint)
	return c.decode(res, err, params["action"])
}

func (c *ActionClient) decode(res *resty.Response, err error, action string) (*apiResponse, error) {
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", action, err)
	}
	if !res.IsSuccess() {
		return nil, &StatusError{URL: c.endpoint, StatusCode: res.StatusCode(), Body: res.String()}
	}

	var out apiResponse
	if err := json.Unmarshal(res.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidResponse, action, err)
	}
	if out.Error != nil {
		return nil, out.Error
	}
	return &out, nil
}

// SearchEntities runs wbsearchentities.
func (c *ActionClient) SearchEntities(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	params := map[string]string{
		"action":   "wbsearchentities",
		"search":   p.Search,
		"language": p.Language,
		"type":     p.Type,
	}
	if p.UserLang != "" {
		params["uselang"] = p.UserLang
	}
	if p.Limit > 0 {
		params["limit"] = strconv.Itoa(p.Limit)
	}

	out, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}
	if out.Search == nil {
		return []SearchResult{}, nil
	}
	return out.Search, nil
}

// GetEntity runs wbgetentities for one id. A missing entity is
// ErrInvalidResponse.
func (c *ActionClient) GetEntity(ctx context.Context, id string) (*Entity, error) {
	out, err := c.get(ctx, map[string]string{
		"action": "wbgetentities",
		"ids":    id,
	})
	if err != nil {
		return nil, err
	}
	entity, ok := out.Entities[id]
	if !ok || entity.Missing != nil {
		return nil, fmt.Errorf("%w: entity %s not found", ErrInvalidResponse, id)
	}
	return &entity, nil
}

func (c *ActionClient) token(ctx context.Context, kind string) (string, error) {
	out, err := c.get(ctx, map[string]string{
		"action": "query",
		"meta":   "tokens",
		"type":   kind,
	})
	if err != nil {
		return "", err
	}
	if out.Query == nil || out.Query.Tokens[kind+"token"] == "" {
		return "", fmt.Errorf("%w: no %s token", ErrInvalidResponse, kind)
	}
	return out.Query.Tokens[kind+"token"], nil
}

// Login signs in with a bot password and fetches a CSRF token for the
// editing calls.
func (c *ActionClient) Login(ctx context.Context, username, password string) error {
	loginToken, err := c.token(ctx, "login")
	if err != nil {
		return fmt.Errorf("failed to get login token: %w", err)
	}

	out, err := c.post(ctx, map[string]string{
		"action":     "login",
		"lgname":     username,
		"lgpassword": password,
		"lgtoken":    loginToken,
	})
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	if out.Login == nil || out.Login.Result != "Success" {
		reason := "no login result"
		if out.Login != nil {
			reason = out.Login.Result + ": " + out.Login.Reason
		}
		return fmt.Errorf("%w: %s", ErrLoginFailed, reason)
	}

	csrf, err := c.CSRFToken(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.csrf = csrf
	c.mu.Unlock()

	c.logger.Debug("logged in to Wikidata", "endpoint", c.endpoint)
	return nil
}

// CSRFToken fetches a fresh edit token. Anonymous sessions get "+\".
func (c *ActionClient) CSRFToken(ctx context.Context) (string, error) {
	tok, err := c.token(ctx, "csrf")
	if err != nil {
		return "", fmt.Errorf("failed to get CSRF token: %w", err)
	}
	return tok, nil
}

func (c *ActionClient) editToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.csrf == "" {
		return "", ErrNotLoggedIn
	}
	return c.csrf, nil
}

func (c *ActionClient) edit(ctx context.Context, params map[string]string) (*apiResponse, error) {
	tok, err := c.editToken()
	if err != nil {
		return nil, err
	}
	params["token"] = tok
	params["bot"] = "1"
	out, err := c.post(ctx, params)
	if IsSessionError(err) {
		c.mu.Lock()
		if c.csrf == tok {
			c.csrf = ""
		}
		c.mu.Unlock()
	}
	return out, err
}

// NewLexeme creates a lexeme and returns its id.
func (c *ActionClient) NewLexeme(ctx context.Context, lemma, lang, languageItem, categoryItem string) (string, error) {
	data, err := json.Marshal(map[string]any{
		"lemmas":          map[string]DisplayText{lang: {Language: lang, Value: lemma}},
		"language":        languageItem,
		"lexicalCategory": categoryItem,
	})
	if err != nil {
		return "", err
	}

	out, err := c.edit(ctx, map[string]string{
		"action": "wbeditentity",
		"new":    "lexeme",
		"data":   string(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create lexeme %q: %w", lemma, err)
	}
	if out.Entity == nil || out.Entity.ID == "" {
		return "", fmt.Errorf("%w: wbeditentity returned no entity", ErrInvalidResponse)
	}
	return out.Entity.ID, nil
}

// CreateStringClaim adds a string-valued claim and returns the claim id.
func (c *ActionClient) CreateStringClaim(ctx context.Context, entity, property, val string) (string, error) {
	encoded, err := json.Marshal(val)
	if err != nil {
		return "", err
	}
	return c.createClaim(ctx, entity, property, string(encoded))
}

// CreateItemClaim adds an item-valued claim and returns the claim id.
func (c *ActionClient) CreateItemClaim(ctx context.Context, entity, property string, numericID int) (string, error) {
	encoded, err := json.Marshal(map[string]any{
		"entity-type": "item",
		"numeric-id":  numericID,
	})
	if err != nil {
		return "", err
	}
	return c.createClaim(ctx, entity, property, string(encoded))
}

func (c *ActionClient) createClaim(ctx context.Context, entity, property, encodedValue string) (string, error) {
	out, err := c.edit(ctx, map[string]string{
		"action":   "wbcreateclaim",
		"entity":   entity,
		"property": property,
		"snaktype": "value",
		"value":    encodedValue,
	})
	if err != nil {
		return "", fmt.Errorf("failed to add %s to %s: %w", property, entity, err)
	}
	if out.Success != 1 || out.Claim == nil {
		return "", fmt.Errorf("%w: wbcreateclaim did not succeed", ErrInvalidResponse)
	}
	return out.Claim.ID, nil
}

// AddSense adds a sense with the given glosses (language code to text) and
// returns the new sense id.
func (c *ActionClient) AddSense(ctx context.Context, lexemeID string, glosses map[string]string) (string, error) {
	g := make(map[string]DisplayText, len(glosses))
	for lang, text := range glosses {
		g[lang] = DisplayText{Language: lang, Value: text}
	}
	data, err := json.Marshal(map[string]any{"glosses": g})
	if err != nil {
		return "", err
	}

	out, err := c.edit(ctx, map[string]string{
		"action":   "wbladdsense",
		"lexemeId": lexemeID,
		"data":     string(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to add sense to %s: %w", lexemeID, err)
	}
	if out.Sense == nil || out.Sense.ID == "" {
		return "", fmt.Errorf("%w: wbladdsense returned no sense", ErrInvalidResponse)
	}
	return out.Sense.ID, nil
}
