package model

// TranslationWord is one Swedish translation equivalent scraped from a
// dictionary page.
type TranslationWord struct {
	// Word is the cleaned text of the span.vastine element.
	Word string `json:"word"`

	// GroupID is the id of the enclosing sense group, or "".
	GroupID string `json:"group_id,omitempty"`
}

// Label is "<group>. <word>", or just the word without a group.
func (w TranslationWord) Label() string {
	if w.GroupID == "" {
		return w.Word
	}
	return w.GroupID + ". " + w.Word
}

// LexemeBinding is one row of the lookup by SURU id: a Finnish lexeme, one
// of its senses, the item the sense denotes and a Swedish lexeme sharing
// that item. Values are entity URIs or literals; unbound ones are "".
type LexemeBinding struct {
	Lexeme          string `json:"lexeme"`
	Lemma           string `json:"lemma"`
	SuruID          string `json:"suru_id,omitempty"`
	Sense           string `json:"sense,omitempty"`
	GlossSV         string `json:"gloss_sv,omitempty"`
	Item            string `json:"item,omitempty"`
	ItemLabel       string `json:"item_label,omitempty"`
	ItemDescription string `json:"item_description,omitempty"`
	LexemeSV        string `json:"lexeme_sv,omitempty"`
	LemmaSV         string `json:"lemma_sv,omitempty"`
	GlossSVFI       string `json:"gloss_sv_fi,omitempty"`
	SenseSV         string `json:"sense_sv,omitempty"`
}

// HasItem reports whether the row has an item with a Swedish label, the
// condition for showing the item cell.
func (b LexemeBinding) HasItem() bool {
	return b.Item != "" && b.ItemLabel != ""
}

// SwedishSense is one row of the lookup by translation word: a Swedish noun
// lexeme with the word as lemma and one of its senses.
type SwedishSense struct {
	Lexeme  string `json:"lexeme"`
	Lemma   string `json:"lemma"`
	Sense   string `json:"sense,omitempty"`
	GlossFI string `json:"gloss_fi,omitempty"`
	Item    string `json:"item,omitempty"`
	ItemSV  string `json:"item_sv,omitempty"`
}

// HasItem reports whether the sense has an item with a Swedish label.
func (s SwedishSense) HasItem() bool {
	return s.Item != "" && s.ItemSV != ""
}

// TranslationResult pairs a translation word with the senses found for it.
type TranslationResult struct {
	Word   TranslationWord `json:"word"`
	Senses []SwedishSense  `json:"senses"`

	// Error is set when the lookup failed. Senses is then empty and the
	// word is shown as not found.
	Error string `json:"error,omitempty"`
}

// Found reports whether at least one lexeme was found.
func (r TranslationResult) Found() bool {
	return len(r.Senses) > 0
}

// Sitelink is one Wikipedia article of an item.
type Sitelink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Sitelinks holds the Swedish, Finnish and English Wikipedia links of an
// item and the number of other sitelinks.
type Sitelinks struct {
	SV         *Sitelink `json:"sv,omitempty"`
	FI         *Sitelink `json:"fi,omitempty"`
	EN         *Sitelink `json:"en,omitempty"`
	OtherCount int       `json:"other_count"`
}

// Empty reports whether there is nothing to show.
func (s *Sitelinks) Empty() bool {
	return s == nil || (s.SV == nil && s.FI == nil && s.EN == nil && s.OtherCount == 0)
}
