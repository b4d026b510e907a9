package core

import "strings"

// NormalizePhone reduces a phone number to a canonical comparable form:
// digits only, with a single leading "+" preserved when present.
// "(555) 555-0123" and "555 555 0123" normalize to the same string.
// An empty result means the input held no digits.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s) + 1)
	for i, r := range s {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}

// StandardCategories is the category set seeded for accounts created
// through the SMS flow. The web application may add or remove categories
// later; the interpreter always works from the account's current list.
func StandardCategories() []string {
	return []string{
		"Housing",
		"Food",
		"Transportation",
		"Utilities",
		"Entertainment",
		"Health",
		"Savings",
		DefaultCategoryName,
	}
}
