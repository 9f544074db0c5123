package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Term is one bound value in a SPARQL JSON result.
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Language string `json:"xml:lang,omitempty"`
}

// SPARQLResult is the application/sparql-results+json document.
type SPARQLResult struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results *struct {
		Bindings []map[string]Term `json:"bindings"`
	} `json:"results"`
}

// Bindings returns the result rows.
func (r *SPARQLResult) Bindings() []map[string]Term {
	if r == nil || r.Results == nil {
		return nil
	}
	return r.Results.Bindings
}

// value returns the value bound to name in row, or "".
func value(row map[string]Term, name string) string {
	return row[name].Value
}

// SPARQLClient posts queries to a SPARQL endpoint.
type SPARQLClient struct {
	endpoint string
	http     *resty.Client
	logger   *slog.Logger
}

// NewSPARQLClient returns a client for endpoint using hc.
func NewSPARQLClient(hc *http.Client, endpoint string, logger *slog.Logger) *SPARQLClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &SPARQLClient{
		endpoint: endpoint,
		http: resty.NewWithClient(hc).
			SetHeader("Accept", "application/sparql-results+json"),
		logger: logger,
	}
}

// Select runs query and returns the decoded result. A non-2xx answer is a
// *StatusError; a document without results.bindings is ErrInvalidResponse.
func (c *SPARQLClient) Select(ctx context.Context, query string) (*SPARQLResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	c.logger.Debug("sparql query", "endpoint", c.endpoint, "bytes", len(query))

	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"query":  query,
			"format": "json",
		}).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("sparql request failed: %w", err)
	}
	if !res.IsSuccess() {
		c.logger.Warn("sparql query failed", "status", res.StatusCode())
		return nil, &StatusError{URL: c.endpoint, StatusCode: res.StatusCode(), Body: res.String()}
	}

	var out SPARQLResult
	if err := json.Unmarshal(res.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if out.Results == nil || out.Results.Bindings == nil {
		return nil, fmt.Errorf("%w: missing results.bindings", ErrInvalidResponse)
	}

	c.logger.Debug("sparql result", "rows", len(out.Results.Bindings))
	return &out, nil
}
