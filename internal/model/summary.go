package model

// Status values of a Summary.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
	StatusNoData = "no_data"
)

// Summary condenses a report into counts for listings and history.
type Summary struct {
	Target        string `json:"target"`
	SuruID        string `json:"suru_id,omitempty"`
	Headword      string `json:"headword,omitempty"`
	Status        string `json:"status"`
	Words         int    `json:"words"`
	WordsFound    int    `json:"words_found"`
	Senses        int    `json:"senses"`
	SuruLexemes   int    `json:"suru_lexemes"`
	Items         int    `json:"items"`
	FailedLookups int    `json:"failed_lookups"`
}

// NewSummary computes the summary of r.
func NewSummary(r *AugmentReport) *Summary {
	s := &Summary{
		Target:      r.Target,
		SuruID:      r.SuruID,
		Headword:    r.Headword,
		Words:       len(r.Words),
		SuruLexemes: countLexemes(r.SuruLexemes),
		Items:       len(r.ItemIDs()),
	}
	for _, t := range r.Translations {
		if t.Found() {
			s.WordsFound++
		}
		if t.Error != "" {
			s.FailedLookups++
		}
		s.Senses += len(t.Senses)
	}

	switch {
	case r.Error != "":
		s.Status = StatusFailed
	case s.SuruLexemes == 0 && s.WordsFound == 0:
		s.Status = StatusNoData
	default:
		s.Status = StatusOK
	}
	return s
}

// countLexemes counts distinct lexemes; the lookup yields one row per
// sense and Swedish match.
func countLexemes(bindings []LexemeBinding) int {
	seen := make(map[string]bool, len(bindings))
	for _, b := range bindings {
		seen[b.Lexeme] = true
	}
	return len(seen)
}
