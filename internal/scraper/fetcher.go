package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/nao1215/suruext/internal/model"
)

// Fetcher loads dictionary pages over HTTP or from local files.
type Fetcher struct {
	client      *http.Client
	maxBodySize int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithMaxBodySize caps how much of a page is read.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// NewFetcher returns a Fetcher using client for remote pages. The client
// carries the User-Agent and per-site headers.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		maxBodySize: model.MaxPageSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsRemote reports whether target is fetched over HTTP.
func IsRemote(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

// Fetch loads target. http(s) URLs are requested; anything else is read
// as a file path. Non-2xx responses are errors.
func (f *Fetcher) Fetch(ctx context.Context, target string) (*model.Page, error) {
	if !IsRemote(target) {
		return f.readFile(target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "fi,sv;q=0.8,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %d", target, resp.StatusCode)
	}

	page := &model.Page{
		URL:         target,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Raw:         body,
	}
	page.ComputeHash()
	page.TruncateRaw()
	return page, nil
}

func (f *Fetcher) readFile(path string) (*model.Page, error) {
	file, err := os.Open(path) //nolint:gosec // user supplied page path
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	page := &model.Page{
		URL:         path,
		StatusCode:  http.StatusOK,
		ContentType: "text/html",
		Raw:         body,
	}
	page.ComputeHash()
	return page, nil
}
