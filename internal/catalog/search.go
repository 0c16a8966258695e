package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var searchNormalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// searchKey folds a name for case- and diacritic-insensitive search.
// Stored alongside the name on write; queries fold the term the same
// way.
func searchKey(name string) string {
	folded, _, err := transform.String(searchNormalizer, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
