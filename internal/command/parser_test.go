package command

import (
	"strings"
	"testing"

	"smsledger/internal/core"
)

func TestParse(t *testing.T) {
	p := NewParser(nil)
	known := testCategories()

	cases := []struct {
		name string
		in   string
		want ParsedCommand
	}{
		{
			name: "expense with category synonym",
			in:   "Spent $25 on groceries",
			want: ParsedCommand{
				Kind:        KindRecordTransaction,
				TxType:      core.Expense,
				Amount:      core.Money{Cents: 2500},
				Category:    "Food",
				Description: "Spent on groceries",
			},
		},
		{
			name: "income keeps description",
			in:   "Income $500 freelance work",
			want: ParsedCommand{
				Kind:        KindRecordTransaction,
				TxType:      core.Income,
				Amount:      core.Money{Cents: 50000},
				Category:    "",
				Description: "Income freelance work",
			},
		},
		{
			name: "expense without category falls through",
			in:   "$30 lunch",
			want: ParsedCommand{
				Kind:        KindRecordTransaction,
				TxType:      core.Expense,
				Amount:      core.Money{Cents: 3000},
				Category:    "",
				Description: "lunch",
			},
		},
		{
			name: "amount only, empty description",
			in:   "$30",
			want: ParsedCommand{
				Kind:        KindRecordTransaction,
				TxType:      core.Expense,
				Amount:      core.Money{Cents: 3000},
				Category:    "",
				Description: "",
			},
		},
		{
			name: "leftmost amount wins",
			in:   "Spent $25 and $10 on books",
			want: ParsedCommand{
				Kind:        KindRecordTransaction,
				TxType:      core.Expense,
				Amount:      core.Money{Cents: 2500},
				Category:    "",
				Description: "Spent and $10 on books",
			},
		},
		{
			name: "help lower",
			in:   "help",
			want: ParsedCommand{Kind: KindHelp},
		},
		{
			name: "help upper",
			in:   "HELP",
			want: ParsedCommand{Kind: KindHelp},
		},
		{
			name: "budget with category",
			in:   "budget groceries",
			want: ParsedCommand{Kind: KindBudgetQuery, Category: "Food"},
		},
		{
			name: "budget all categories",
			in:   "budget",
			want: ParsedCommand{Kind: KindBudgetQuery, Category: ""},
		},
		{
			name: "gibberish",
			in:   "asdkjh",
			want: ParsedCommand{Kind: KindUnrecognized, Reason: NoIntentMatched},
		},
		{
			name: "income phrasing without amount",
			in:   "income from freelance",
			want: ParsedCommand{Kind: KindUnrecognized, Reason: NoAmountFound},
		},
		{
			name: "three decimals never truncated",
			in:   "spent 25.999 on stuff",
			want: ParsedCommand{Kind: KindUnrecognized, Reason: NoIntentMatched},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.Parse(tc.in, known)
			if got != tc.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseIncomeDescriptionContains(t *testing.T) {
	p := NewParser(nil)
	got := p.Parse("Income $500 freelance work", testCategories())
	if got.Kind != KindRecordTransaction || got.TxType != core.Income {
		t.Fatalf("unexpected command: %+v", got)
	}
	if !strings.Contains(got.Description, "freelance work") {
		t.Fatalf("description %q should contain %q", got.Description, "freelance work")
	}
}

// Lowering can grow a rune's UTF-8 encoding (Ⱥ U+023A is two bytes,
// its lowercase ⱥ U+2C65 is three), so a budget query prefixed with
// such runes must still parse instead of slicing past the end of the
// original text.
func TestParseBudgetQueryMultiByteCase(t *testing.T) {
	p := NewParser(nil)
	known := testCategories()

	got := p.Parse("ȺȺȺȺȺȺ budget groceries", known)
	want := ParsedCommand{Kind: KindBudgetQuery, Category: "Food"}
	if got != want {
		t.Fatalf("Parse = %+v, want %+v", got, want)
	}

	got = p.Parse("ȺȺȺȺȺȺ budget", known)
	want = ParsedCommand{Kind: KindBudgetQuery, Category: ""}
	if got != want {
		t.Fatalf("Parse = %+v, want %+v", got, want)
	}
}

// Parsing is pure: the same message parses identically every time and
// the known-category slice is never mutated.
func TestParseIsPure(t *testing.T) {
	p := NewParser(nil)
	known := testCategories()
	first := p.Parse("Spent $25 on groceries", known)
	second := p.Parse("Spent $25 on groceries", known)
	if first != second {
		t.Fatalf("parse not deterministic: %+v vs %+v", first, second)
	}
	if known[1].Name != "Food" {
		t.Fatalf("known categories mutated: %+v", known)
	}
}
