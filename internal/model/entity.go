package model

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Wikidata identifiers used across the module.
const (
	// PropertySuruID is "SURU ID".
	PropertySuruID = "P12682"

	// PropertyItemForSense is "item for this sense".
	PropertyItemForSense = "P5137"

	// SuruIDPrefix is stripped from suru_id URL parameters.
	SuruIDPrefix = "SURU_"
)

// Languages maps language codes to their Wikidata items.
var Languages = map[string]string{
	"fi": "Q1412",
	"sv": "Q9027",
}

// LexicalCategories maps category names to their Wikidata items.
var LexicalCategories = map[string]string{
	"noun":      "Q1084",
	"adjective": "Q34698",
}

// EntityID returns the last path segment of an entity URI, e.g. "L123-S1"
// for "http://www.wikidata.org/entity/L123-S1". Bare ids are returned
// unchanged.
func EntityID(uri string) string {
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// SenseCode is the part of a sense id after the dash ("S1" for "L1-S1").
func SenseCode(uri string) string {
	id := EntityID(uri)
	if i := strings.LastIndex(id, "-"); i >= 0 {
		return id[i+1:]
	}
	return id
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

func digitsOf(s string) int {
	n, err := strconv.Atoi(nonDigits.ReplaceAllString(s, ""))
	if err != nil {
		return 0
	}
	return n
}

// SenseNumber is the number of a sense code: 2 for "L1-S2". Ids without
// digits yield 0.
func SenseNumber(uri string) int {
	return digitsOf(SenseCode(uri))
}

// LexemeNumber is the number of the lexeme part of a lexeme or sense id:
// 5 for both "L5" and "L5-S2". Ids without digits yield 0.
func LexemeNumber(uri string) int {
	id := EntityID(uri)
	if i := strings.Index(id, "-"); i >= 0 {
		id = id[:i]
	}
	return digitsOf(id)
}

// SortSenses orders senses by lexeme number, then by sense number, so the
// senses of one lexeme stay together. Equal keys keep their order.
func SortSenses(senses []SwedishSense) {
	lexeme := func(s SwedishSense) int {
		if s.Sense != "" {
			return LexemeNumber(s.Sense)
		}
		return LexemeNumber(s.Lexeme)
	}
	sort.SliceStable(senses, func(i, j int) bool {
		li, lj := lexeme(senses[i]), lexeme(senses[j])
		if li != lj {
			return li < lj
		}
		return SenseNumber(senses[i].Sense) < SenseNumber(senses[j].Sense)
	})
}

// StripSuruPrefix removes a leading "SURU_".
func StripSuruPrefix(id string) string {
	return strings.TrimPrefix(id, SuruIDPrefix)
}

var numberPrefix = regexp.MustCompile(`^\d+\.\s*`)

// CleanTranslation removes a leading "<n>. " from a translation word.
func CleanTranslation(word string) string {
	return numberPrefix.ReplaceAllString(word, "")
}

// NumericID returns the number of an item id ("Q42" gives 42).
func NumericID(id string) (int, bool) {
	id = EntityID(id)
	if len(id) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(id[1:])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
