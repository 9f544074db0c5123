package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"

	"github.com/nao1215/suruext/internal/model"
)

// sitelink keys shown individually; every other key is counted.
const (
	siteSV = "svwiki"
	siteFI = "fiwiki"
	siteEN = "enwiki"
)

type entityDocument struct {
	Entities map[string]struct {
		Sitelinks map[string]struct {
			Site  string `json:"site"`
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"sitelinks"`
	} `json:"entities"`
}

// EntityClient reads entity JSON from Special:EntityData.
type EntityClient struct {
	baseURL string
	http    *resty.Client
	group   singleflight.Group
	logger  *slog.Logger
}

// NewEntityClient returns a client for baseURL, e.g.
// "https://www.wikidata.org/wiki/Special:EntityData".
func NewEntityClient(hc *http.Client, baseURL string, logger *slog.Logger) *EntityClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &EntityClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    resty.NewWithClient(hc).SetHeader("Accept", "application/json"),
		logger:  logger,
	}
}

// Sitelinks returns the sv, fi and en Wikipedia links of qid and the number
// of other sitelinks. It returns nil, nil for an empty qid or an entity
// without sitelinks. Concurrent calls for the same qid share one request.
func (c *EntityClient) Sitelinks(ctx context.Context, qid string) (*model.Sitelinks, error) {
	qid = model.EntityID(qid)
	if qid == "" {
		return nil, nil
	}

	// The shared fetch outlives any single caller's cancellation; each
	// caller still stops waiting when its own ctx is done.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(qid, func() (any, error) {
		return c.fetchSitelinks(fetchCtx, qid)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		links, _ := r.Val.(*model.Sitelinks) //nolint:errcheck // nil when the entity has none
		return links, nil
	}
}

func (c *EntityClient) fetchSitelinks(ctx context.Context, qid string) (*model.Sitelinks, error) {
	url := c.baseURL + "/" + qid + ".json"
	c.logger.Debug("fetching entity data", "url", url)

	res, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("entity data request failed: %w", err)
	}
	if !res.IsSuccess() {
		return nil, &StatusError{URL: url, StatusCode: res.StatusCode(), Body: res.String()}
	}

	var doc entityDocument
	if err := json.Unmarshal(res.Body(), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	entity, ok := doc.Entities[qid]
	if !ok || entity.Sitelinks == nil {
		return nil, nil
	}

	out := &model.Sitelinks{}
	for key, link := range entity.Sitelinks {
		sl := &model.Sitelink{Title: link.Title, URL: link.URL}
		switch key {
		case siteSV:
			out.SV = sl
		case siteFI:
			out.FI = sl
		case siteEN:
			out.EN = sl
		default:
			out.OtherCount++
		}
	}
	return out, nil
}
