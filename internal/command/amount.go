package command

import (
	"regexp"
	"strings"

	"smsledger/internal/core"
)

// amountCandidateRe matches dollar-prefixed or bare decimal tokens.
// Commas must be followed by digits so a sentence comma after a number is
// not swallowed, and the fractional part is left open-ended so "25.999"
// is seen as one candidate and rejected, not clipped to "25.99".
var amountCandidateRe = regexp.MustCompile(`(\$\s*)?([0-9]+(?:,[0-9]+)*(?:\.[0-9]+)?)`)

// amountContextWords qualify a bare number as a dollar amount when one of
// them is the word immediately before it ("spent 25 on gas"). A bare
// number with no context stays a number, so "table for 2" never becomes
// $2.00.
var amountContextWords = map[string]bool{
	"spent":    true,
	"spend":    true,
	"paid":     true,
	"pay":      true,
	"bought":   true,
	"cost":     true,
	"income":   true,
	"received": true,
	"earned":   true,
	"got":      true,
	"budget":   true,
	"add":      true,
}

// amountUnitWords qualify a bare number when one of them follows it
// ("25 bucks").
var amountUnitWords = map[string]bool{
	"dollar":  true,
	"dollars": true,
	"buck":    true,
	"bucks":   true,
	"usd":     true,
}

// ExtractAmount scans text for a monetary amount and returns it together
// with the text left over once the amount token is removed (whitespace
// collapsed). Recognized forms are "$25", "$25.50", "$1,200" and bare
// numbers adjacent to a context word ("spent 25", "25 bucks").
//
// When several amount-like tokens appear, the leftmost recognized one
// wins. If that token is malformed (more than two decimals, overflow)
// the whole extraction reports no match rather than falling through to a
// later token or a truncated value. Absence is signaled by ok=false,
// never by an error.
func ExtractAmount(text string) (core.Money, string, bool) {
	matches := amountCandidateRe.FindAllStringSubmatchIndex(text, -1)
	for _, m := range matches {
		start, end := m[0], m[1]
		hasDollar := m[2] >= 0
		numStart, numEnd := m[4], m[5]

		if insideWord(text, start, end) {
			continue
		}
		if !hasDollar && !hasAmountContext(text, numStart, numEnd) {
			continue
		}
		cents, err := core.ParseAmountToCents(text[numStart:numEnd])
		if err != nil {
			return core.Money{}, "", false
		}
		remainder := strings.Join(strings.Fields(text[:start]+" "+text[end:]), " ")
		return core.Money{Cents: cents}, remainder, true
	}
	return core.Money{}, "", false
}

// insideWord reports whether the candidate span is glued to surrounding
// letters, as in "v2.5" or "25th". Those are not amounts.
func insideWord(text string, start, end int) bool {
	if start > 0 && isAlnum(text[start-1]) {
		return true
	}
	if end < len(text) && isLetter(text[end]) {
		return true
	}
	return false
}

func hasAmountContext(text string, start, end int) bool {
	if amountContextWords[wordBefore(text, start)] {
		return true
	}
	return amountUnitWords[wordAfter(text, end)]
}

// wordBefore returns the normalized word immediately preceding pos.
func wordBefore(text string, pos int) string {
	i := pos
	for i > 0 && isSpace(text[i-1]) {
		i--
	}
	j := i
	for j > 0 && !isSpace(text[j-1]) {
		j--
	}
	return normalizeWord(text[j:i])
}

// wordAfter returns the normalized word immediately following pos.
func wordAfter(text string, pos int) string {
	i := pos
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	j := i
	for j < len(text) && !isSpace(text[j]) {
		j++
	}
	return normalizeWord(text[i:j])
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.Trim(w, ".,!?:;()'\""))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9')
}
