package suruxml

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nao1215/suruext/internal/sheet"
)

// seeAlsoStyle marks a cross reference pointer.
const seeAlsoStyle = "viittaus"

// Entry is one DictionaryEntry.
type Entry struct {
	SuruID            string `json:"suru_id"`
	Headword          string `json:"headword"`
	Subcategorisation string `json:"subcategorisation,omitempty"`
	// KS is the style of HeadwordCtn/SeeAlso; nil when there is none.
	KS *string `json:"ks,omitempty"`
	// SeeAlso is the target of a "viittaus" cross reference.
	SeeAlso string `json:"seealso,omitempty"`
	// Translations holds the translations of each TranslationBlock.
	Translations [][]string `json:"translations,omitempty"`
	// SenseGroups holds the TranslationCtn texts of each SenseGrp.
	SenseGroups [][]string `json:"sense_groups,omitempty"`
}

// AllTranslations flattens Translations.
func (e *Entry) AllTranslations() []string {
	return flatten(e.Translations)
}

// AllSenseGroups flattens SenseGroups.
func (e *Entry) AllSenseGroups() []string {
	return flatten(e.SenseGroups)
}

func flatten(groups [][]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Parse reads every DictionaryEntry of an XML document.
func Parse(r io.Reader) ([]Entry, error) {
	root, err := parseTree(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	var nodes []*node
	if root.Name == "DictionaryEntry" {
		nodes = append(nodes, root)
	}
	nodes = append(nodes, root.descendants("DictionaryEntry")...)

	entries := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		entries = append(entries, newEntry(n))
	}
	return entries, nil
}

func newEntry(n *node) Entry {
	e := Entry{SuruID: n.Attrs["id"]}

	if ctn := n.find("HeadwordCtn"); ctn != nil {
		if hw := ctn.child("Headword"); hw != nil {
			e.Headword = hw.text()
		}
		if sub := ctn.child("Subcategorisation"); sub != nil {
			e.Subcategorisation = sub.text()
		}
		if ks := ctn.child("SeeAlso"); ks != nil {
			style := ks.Attrs["style"]
			e.KS = &style
		}
	}

	if ptrs := n.findPath("SeeAlso", "Ptr"); len(ptrs) > 0 && ptrs[0].Attrs["style"] == seeAlsoStyle {
		e.SeeAlso = ptrs[0].text()
	}

	for _, block := range n.descendants("TranslationBlock") {
		if words := texts(block.findPath("TranslationCtn", "Translation")); len(words) > 0 {
			e.Translations = append(e.Translations, words)
		}
	}
	for _, grp := range n.descendants("SenseGrp") {
		if words := texts(grp.descendants("TranslationCtn")); len(words) > 0 {
			e.SenseGroups = append(e.SenseGroups, words)
		}
	}
	return e
}

func texts(nodes []*node) []string {
	var out []string
	for _, n := range nodes {
		if t := n.text(); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ParseFile reads the entries of one XML file.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path) //nolint:gosec // user supplied export path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// ParseDir reads every *.xml file of dir in name order. Files that fail to
// parse are skipped and their errors joined into the returned error.
func ParseDir(dir string) ([]Entry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var all []Entry
	var errs []error
	for _, file := range files {
		entries, err := ParseFile(file)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		all = append(all, entries...)
	}
	return all, errors.Join(errs...)
}

// Columns are the XLSX columns written by WriteXLSX.
var Columns = []string{"suru_id", "headword", "subcategorisation", "ks", "seealso", "translations", "sense_groups"}

// Table flattens entries to one row each; list columns are "; "-joined.
func Table(entries []Entry) *sheet.Table {
	t := &sheet.Table{Header: append([]string(nil), Columns...)}
	for _, e := range entries {
		ks := ""
		if e.KS != nil {
			ks = *e.KS
		}
		t.Rows = append(t.Rows, []string{
			e.SuruID,
			e.Headword,
			e.Subcategorisation,
			ks,
			e.SeeAlso,
			strings.Join(e.AllTranslations(), "; "),
			strings.Join(e.AllSenseGroups(), "; "),
		})
	}
	return t
}

// WriteXLSX writes Table(entries) to path.
func WriteXLSX(path string, entries []Entry) error {
	return sheet.Write(path, Table(entries))
}

// EntryStats counts entries carrying each optional part.
type EntryStats struct {
	Entries      int `json:"entries"`
	WithKS       int `json:"with_ks"`
	WithSeeAlso  int `json:"with_seealso"`
	WithTrans    int `json:"with_translations"`
	WithSenseGrp int `json:"with_sense_groups"`
}

// Stats counts the optional parts of entries.
func Stats(entries []Entry) EntryStats {
	s := EntryStats{Entries: len(entries)}
	for _, e := range entries {
		if e.KS != nil {
			s.WithKS++
		}
		if e.SeeAlso != "" {
			s.WithSeeAlso++
		}
		if len(e.Translations) > 0 {
			s.WithTrans++
		}
		if len(e.SenseGroups) > 0 {
			s.WithSenseGrp++
		}
	}
	return s
}
