// Package core provides the domain types shared by the interpreter,
// dispatcher, and storage layers, plus money parsing utilities.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmountToCents converts a decimal dollar string to cents.
//
// It accepts integer ("25") and one- or two-decimal ("25.5", "25.50")
// forms, with optional well-formed thousands separators ("1,200.50").
// Amounts with more than two fractional digits are rejected outright,
// never rounded: "25.999" is an error. Signs are not accepted and the
// result must be positive.
//
// Examples:
//
//	ParseAmountToCents("25")       -> 2500, nil
//	ParseAmountToCents("25.50")    -> 2550, nil
//	ParseAmountToCents("1,200.50") -> 120050, nil
//	ParseAmountToCents("25.999")   -> 0, ErrInvalidAmount
func ParseAmountToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	// Split into integer and fractional part
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	intPart, ok := stripThousands(intPart)
	if !ok {
		return 0, ErrInvalidAmount
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	// At most two fractional digits, digits only
	if len(fracPart) > 2 {
		return 0, ErrInvalidAmount
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	switch len(fracPart) {
	case 1:
		fracCents = int64(fracPart[0]-'0') * 10
	case 2:
		fracCents = int64(fracPart[0]-'0')*10 + int64(fracPart[1]-'0')
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// stripThousands removes comma separators from an integer part, accepting
// them only when every group after the first has exactly three digits.
// "1,200" is fine, "12,34" is not. A part with no commas passes through.
func stripThousands(s string) (string, bool) {
	if !strings.Contains(s, ",") {
		return s, true
	}
	groups := strings.Split(s, ",")
	if len(groups[0]) < 1 || len(groups[0]) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

// Dollars returns the dollar value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}
