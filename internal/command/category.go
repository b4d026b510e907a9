package command

import (
	"strings"
	"unicode"

	"smsledger/internal/core"
)

// MatchCategory maps free text to one of the account's known categories.
// The text is normalized (lower-cased, punctuation stripped, whitespace
// collapsed) and checked against each category in enumeration order:
// first the category's own name, then its synonyms from the table. The
// first category that appears as a substring wins, and the category's
// stored name is returned. An empty result means nothing matched; the
// caller decides the fallback, the matcher never invents a category.
func MatchCategory(text string, known []core.Category, synonyms SynonymTable) string {
	normalized := normalizeText(text)
	if normalized == "" {
		return ""
	}
	for _, c := range known {
		name := normalizeText(c.Name)
		if name == "" {
			continue
		}
		if strings.Contains(normalized, name) {
			return c.Name
		}
		for _, syn := range synonyms[name] {
			if s := normalizeText(syn); s != "" && strings.Contains(normalized, s) {
				return c.Name
			}
		}
	}
	return ""
}

// normalizeText lower-cases, replaces punctuation with spaces, and
// collapses runs of whitespace into single spaces.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
