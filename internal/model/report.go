package model

import "time"

// AugmentReport collects the outcome of augmenting one dictionary page.
type AugmentReport struct {
	// Target is the page URL or file path as given.
	Target string `json:"target"`

	// DateAugmented is when the run started.
	DateAugmented time.Time `json:"date_augmented"`

	// Page is the fetched page.
	Page *Page `json:"page,omitempty"`

	// Headword is the text of h1.hakusana.
	Headword string `json:"headword,omitempty"`

	// SuruID is the SURU id without its "SURU_" prefix. Empty when neither
	// the page URL nor the caller supplied one.
	SuruID string `json:"suru_id,omitempty"`

	// Words are the translation words in page order.
	Words []TranslationWord `json:"words"`

	// SuruLexemes are the rows of the lookup by SURU id.
	SuruLexemes []LexemeBinding `json:"suru_lexemes"`

	// SuruLookupFailed is set when the lookup by SURU id could not be
	// completed. SuruLexemes is then empty but does not mean "none exist".
	SuruLookupFailed bool `json:"suru_lookup_failed,omitempty"`

	// Translations holds one result per word, in the order of Words.
	Translations []TranslationResult `json:"translations"`

	// Sitelinks maps item ids (Q…) to their sitelinks. Items without
	// sitelinks are absent.
	Sitelinks map[string]*Sitelinks `json:"sitelinks,omitempty"`

	// Fragment is the rendered HTML fragment.
	Fragment string `json:"fragment,omitempty"`

	// AugmentedPage is the page with Fragment inserted, when requested.
	AugmentedPage string `json:"-"`

	// Error is set when the run failed before rendering.
	Error string `json:"error,omitempty"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`

	// PerformedSteps lists the pipeline steps that completed.
	PerformedSteps []string `json:"performed_steps,omitempty"`
}

// NewAugmentReport returns an empty report for target.
func NewAugmentReport(target string) *AugmentReport {
	return &AugmentReport{
		Target:        target,
		DateAugmented: time.Now(),
		Words:         []TranslationWord{},
		SuruLexemes:   []LexemeBinding{},
		Translations:  []TranslationResult{},
		Sitelinks:     make(map[string]*Sitelinks),
	}
}

// SitelinksFor returns the sitelinks stored for an item URI or id.
func (r *AugmentReport) SitelinksFor(item string) *Sitelinks {
	if r.Sitelinks == nil {
		return nil
	}
	return r.Sitelinks[EntityID(item)]
}

// ItemIDs returns the distinct ids of every item that will be displayed,
// in first-seen order.
func (r *AugmentReport) ItemIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(item string) {
		id := EntityID(item)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}

	for _, b := range r.SuruLexemes {
		if b.HasItem() {
			add(b.Item)
		}
	}
	for _, t := range r.Translations {
		for _, s := range t.Senses {
			if s.HasItem() {
				add(s.Item)
			}
		}
	}
	return ids
}

// AddStep records a completed pipeline step.
func (r *AugmentReport) AddStep(name string) {
	r.PerformedSteps = append(r.PerformedSteps, name)
}
