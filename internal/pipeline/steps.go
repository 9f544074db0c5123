package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/suruext/internal/model"
	"github.com/nao1215/suruext/internal/render"
	"github.com/nao1215/suruext/internal/scraper"
	"github.com/nao1215/suruext/internal/wikidata"
)

// Step names as recorded in AugmentReport.PerformedSteps.
const (
	StepFetchPage         = "fetch_page"
	StepScrape            = "scrape"
	StepSuruLookup        = "suru_lookup"
	StepTranslationLookup = "translation_lookup"
	StepSitelinks         = "sitelinks"
	StepRender            = "render"
)

// PageFetcher loads a page. *scraper.Fetcher implements it.
type PageFetcher interface {
	Fetch(ctx context.Context, target string) (*model.Page, error)
}

// SuruLookup finds lexemes by SURU id. *wikidata.Client implements it.
type SuruLookup interface {
	LexemesBySuruID(ctx context.Context, suruID string) ([]model.LexemeBinding, error)
}

// TranslationLookup finds Swedish lexemes for translation words.
// *wikidata.Client implements it.
type TranslationLookup interface {
	LookupTranslations(ctx context.Context, words []model.TranslationWord, limit int) []model.TranslationResult
}

// FetchPageStep loads the target page.
type FetchPageStep struct {
	fetcher PageFetcher
	logger  *slog.Logger
}

// NewFetchPageStep returns a FetchPageStep.
func NewFetchPageStep(fetcher PageFetcher, logger *slog.Logger) *FetchPageStep {
	return &FetchPageStep{fetcher: fetcher, logger: orDefault(logger)}
}

// Name returns "fetch_page".
func (s *FetchPageStep) Name() string { return StepFetchPage }

// Do fetches report.Target into report.Page.
func (s *FetchPageStep) Do(ctx context.Context, report *model.AugmentReport) error {
	page, err := s.fetcher.Fetch(ctx, report.Target)
	if err != nil {
		return err
	}
	if !page.IsHTML() {
		return fmt.Errorf("%w: %s has content type %q", ErrNotHTML, report.Target, page.ContentType)
	}
	s.logger.Debug("page fetched", "target", report.Target, "bytes", len(page.Raw), "status", page.StatusCode)
	report.Page = page
	return nil
}

// ScrapeStep reads the headword, the translation words and the SURU id.
type ScrapeStep struct {
	suruID string
	logger *slog.Logger
}

// NewScrapeStep returns a ScrapeStep. A non-empty suruID replaces the one
// in the page URL.
func NewScrapeStep(suruID string, logger *slog.Logger) *ScrapeStep {
	return &ScrapeStep{suruID: model.StripSuruPrefix(suruID), logger: orDefault(logger)}
}

// Name returns "scrape".
func (s *ScrapeStep) Name() string { return StepScrape }

// Do parses report.Page.
func (s *ScrapeStep) Do(_ context.Context, report *model.AugmentReport) error {
	doc, err := parsePage(report)
	if err != nil {
		return err
	}

	report.Page.Title = doc.Title()
	report.Page.Snapshot = doc.Snapshot()
	report.Page.TruncateSnapshot()

	report.Headword = doc.Headword()
	report.Words = doc.TranslationWords()
	report.SuruID = doc.SuruID()
	if s.suruID != "" {
		report.SuruID = s.suruID
	}

	if len(report.Words) == 0 {
		s.logger.Warn("no translation words on page", "target", report.Target)
	}
	s.logger.Debug("page scraped",
		"headword", report.Headword,
		"suru_id", report.SuruID,
		"words", len(report.Words),
	)
	return nil
}

// SuruLookupStep finds the lexemes carrying the page's SURU id.
type SuruLookupStep struct {
	lookup SuruLookup
	logger *slog.Logger
}

// NewSuruLookupStep returns a SuruLookupStep.
func NewSuruLookupStep(lookup SuruLookup, logger *slog.Logger) *SuruLookupStep {
	return &SuruLookupStep{lookup: lookup, logger: orDefault(logger)}
}

// Name returns "suru_lookup".
func (s *SuruLookupStep) Name() string { return StepSuruLookup }

// Do queries by report.SuruID. Pages without a SURU id are left alone and
// a failed query sets SuruLookupFailed.
func (s *SuruLookupStep) Do(ctx context.Context, report *model.AugmentReport) error {
	if report.SuruID == "" {
		return nil
	}

	bindings, err := s.lookup.LexemesBySuruID(ctx, report.SuruID)
	if err != nil {
		s.logger.Warn("lookup by SURU id failed", "suru_id", report.SuruID, "error", err)
		report.SuruLookupFailed = true
		report.SuruLexemes = []model.LexemeBinding{}
		return nil
	}
	report.SuruLexemes = bindings
	return nil
}

// TranslationLookupStep queries Swedish lexemes for every translation word.
type TranslationLookupStep struct {
	lookup      TranslationLookup
	concurrency int
}

// NewTranslationLookupStep returns a TranslationLookupStep. concurrency 0
// runs every lookup at once.
func NewTranslationLookupStep(lookup TranslationLookup, concurrency int) *TranslationLookupStep {
	return &TranslationLookupStep{lookup: lookup, concurrency: concurrency}
}

// Name returns "translation_lookup".
func (s *TranslationLookupStep) Name() string { return StepTranslationLookup }

// Do fills report.Translations, one result per word in word order.
func (s *TranslationLookupStep) Do(ctx context.Context, report *model.AugmentReport) error {
	if len(report.Words) == 0 {
		report.Translations = []model.TranslationResult{}
		return nil
	}
	report.Translations = s.lookup.LookupTranslations(ctx, report.Words, s.concurrency)
	return nil
}

// SitelinksStep fetches the sitelinks of every item that will be shown.
type SitelinksStep struct {
	fetcher     wikidata.SitelinkFetcher
	concurrency int
	logger      *slog.Logger
}

// NewSitelinksStep returns a SitelinksStep.
func NewSitelinksStep(fetcher wikidata.SitelinkFetcher, concurrency int, logger *slog.Logger) *SitelinksStep {
	return &SitelinksStep{fetcher: fetcher, concurrency: concurrency, logger: orDefault(logger)}
}

// Name returns "sitelinks".
func (s *SitelinksStep) Name() string { return StepSitelinks }

// Do fills report.Sitelinks.
func (s *SitelinksStep) Do(ctx context.Context, report *model.AugmentReport) error {
	ids := report.ItemIDs()
	if len(ids) == 0 {
		return nil
	}
	report.Sitelinks = wikidata.FetchSitelinks(ctx, s.fetcher, ids, s.concurrency, s.logger)
	return nil
}

// RenderStep renders the fragment and, when asked, the augmented page.
type RenderStep struct {
	renderer *render.HTMLRenderer
	inject   bool
}

// NewRenderStep returns a RenderStep.
func NewRenderStep(renderer *render.HTMLRenderer, inject bool) *RenderStep {
	return &RenderStep{renderer: renderer, inject: inject}
}

// Name returns "render".
func (s *RenderStep) Name() string { return StepRender }

// Do sets report.Fragment and report.AugmentedPage.
func (s *RenderStep) Do(_ context.Context, report *model.AugmentReport) error {
	fragment, err := s.renderer.Fragment(report)
	if err != nil {
		return err
	}
	report.Fragment = fragment

	if !s.inject {
		return nil
	}
	doc, err := parsePage(report)
	if err != nil {
		return err
	}
	page, err := doc.Inject(fragment)
	if err != nil {
		return err
	}
	report.AugmentedPage = page
	return nil
}

func parsePage(report *model.AugmentReport) (*scraper.Document, error) {
	if report.Page == nil {
		return nil, ErrNoPage
	}
	return scraper.Parse(bytes.NewReader(report.Page.Raw), report.Page.URL)
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Services are the collaborators of the default pipeline.
type Services struct {
	Fetcher      PageFetcher
	Suru         SuruLookup
	Translations TranslationLookup
	Sitelinks    wikidata.SitelinkFetcher
	Renderer     *render.HTMLRenderer
}

// DefaultPipelineConfig holds the settings of DefaultPipeline.
type DefaultPipelineConfig struct {
	// SuruID replaces the SURU id of the page URL.
	SuruID string
	// Concurrency caps the lookup fan-outs; 0 is unlimited.
	Concurrency int
	// Inject also renders the page with the fragment inserted.
	Inject bool
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineSuruID sets the SURU id override.
func WithPipelineSuruID(id string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SuruID = id
	}
}

// WithPipelineConcurrency caps the lookup fan-outs.
func WithPipelineConcurrency(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Concurrency = n
	}
}

// WithPipelineInject enables page injection.
func WithPipelineInject(inject bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Inject = inject
	}
}

// DefaultPipeline returns the full augmentation pipeline.
func DefaultPipeline(svc Services, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(cfg)
	}

	renderer := svc.Renderer
	if renderer == nil {
		renderer = render.NewHTMLRenderer(render.DefaultLinks())
	}

	p.AddSteps(
		NewFetchPageStep(svc.Fetcher, p.logger),
		NewScrapeStep(cfg.SuruID, p.logger),
		NewSuruLookupStep(svc.Suru, p.logger),
		NewTranslationLookupStep(svc.Translations, cfg.Concurrency),
		NewSitelinksStep(svc.Sitelinks, cfg.Concurrency, p.logger),
		NewRenderStep(renderer, cfg.Inject),
	)
	return p
}
