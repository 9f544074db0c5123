package model

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTranslationWordLabel(t *testing.T) {
	t.Parallel()

	if got := (TranslationWord{Word: "hund", GroupID: "2"}).Label(); got != "2. hund" {
		t.Errorf("Label() = %q", got)
	}
	if got := (TranslationWord{Word: "hund"}).Label(); got != "hund" {
		t.Errorf("Label() = %q", got)
	}
}

func sampleReport() *AugmentReport {
	r := NewAugmentReport("https://suru.example/?suru_id=SURU_1")
	r.SuruID = "1"
	r.Words = []TranslationWord{{Word: "hund"}, {Word: "vovve"}, {Word: "byracka"}}
	r.SuruLexemes = []LexemeBinding{
		{Lexeme: "http://www.wikidata.org/entity/L1", Item: "http://www.wikidata.org/entity/Q144", ItemLabel: "hund"},
		{Lexeme: "http://www.wikidata.org/entity/L1", Item: "http://www.wikidata.org/entity/Q5", ItemLabel: ""},
	}
	r.Translations = []TranslationResult{
		{Word: r.Words[0], Senses: []SwedishSense{
			{Lexeme: "L2", Item: "http://www.wikidata.org/entity/Q144", ItemSV: "hund"},
			{Lexeme: "L2", Item: "http://www.wikidata.org/entity/Q39201", ItemSV: "husdjur"},
		}},
		{Word: r.Words[1], Error: "status 500"},
		{Word: r.Words[2]},
	}
	return r
}

func TestAugmentReportItemIDs(t *testing.T) {
	t.Parallel()

	got := sampleReport().ItemIDs()
	want := []string{"Q144", "Q39201"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ItemIDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestAugmentReportSitelinksFor(t *testing.T) {
	t.Parallel()

	r := sampleReport()
	r.Sitelinks["Q144"] = &Sitelinks{OtherCount: 3}

	if got := r.SitelinksFor("http://www.wikidata.org/entity/Q144"); got == nil || got.OtherCount != 3 {
		t.Errorf("SitelinksFor(uri) = %+v", got)
	}
	if got := r.SitelinksFor("Q5"); got != nil {
		t.Errorf("SitelinksFor(Q5) = %+v, want nil", got)
	}
}

func TestNewSummary(t *testing.T) {
	t.Parallel()

	t.Run("counts words lexemes and items", func(t *testing.T) {
		t.Parallel()
		s := NewSummary(sampleReport())
		want := &Summary{
			Target:        "https://suru.example/?suru_id=SURU_1",
			SuruID:        "1",
			Status:        StatusOK,
			Words:         3,
			WordsFound:    1,
			Senses:        2,
			SuruLexemes:   1,
			Items:         2,
			FailedLookups: 1,
		}
		if diff := cmp.Diff(want, s); diff != "" {
			t.Errorf("NewSummary() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("report error marks failure", func(t *testing.T) {
		t.Parallel()
		r := sampleReport()
		r.Error = "fetch failed"
		if s := NewSummary(r); s.Status != StatusFailed {
			t.Errorf("Status = %q", s.Status)
		}
	})

	t.Run("nothing found is no data", func(t *testing.T) {
		t.Parallel()
		if s := NewSummary(NewAugmentReport("x")); s.Status != StatusNoData {
			t.Errorf("Status = %q", s.Status)
		}
	})
}

func TestPage(t *testing.T) {
	t.Parallel()

	t.Run("hash is sha256 of raw", func(t *testing.T) {
		t.Parallel()
		p := &Page{Raw: []byte("abc")}
		p.ComputeHash()
		if p.Hash != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
			t.Errorf("Hash = %s", p.Hash)
		}
		p.Raw = nil
		p.ComputeHash()
		if p.Hash != "" {
			t.Errorf("Hash of empty page = %s", p.Hash)
		}
	})

	t.Run("html detection", func(t *testing.T) {
		t.Parallel()
		for ct, want := range map[string]bool{
			"text/html; charset=utf-8": true,
			"":                         true,
			"application/json":         false,
		} {
			if got := (&Page{ContentType: ct}).IsHTML(); got != want {
				t.Errorf("IsHTML(%q) = %v", ct, got)
			}
		}
	})

	t.Run("snapshot truncation keeps utf8 valid", func(t *testing.T) {
		t.Parallel()
		p := &Page{Snapshot: strings.Repeat("ä", MaxSnapshotSize)}
		p.TruncateSnapshot()
		if len(p.Snapshot) > MaxSnapshotSize || len(p.Snapshot)%2 != 0 {
			t.Errorf("snapshot length %d", len(p.Snapshot))
		}
	})
}

func TestSitelinksEmpty(t *testing.T) {
	t.Parallel()

	var nilLinks *Sitelinks
	if !nilLinks.Empty() || !(&Sitelinks{}).Empty() {
		t.Error("empty sitelinks not reported empty")
	}
	if (&Sitelinks{OtherCount: 1}).Empty() {
		t.Error("sitelinks with other languages reported empty")
	}
}
