package command

import "testing"

func TestExtractAmount(t *testing.T) {
	cases := []struct {
		in        string
		cents     int64
		remainder string
		ok        bool
	}{
		{"$25", 2500, "", true},
		{"$25.50 lunch", 2550, "lunch", true},
		{"$ 30 lunch", 3000, "lunch", true},
		{"Spent $25 on groceries", 2500, "Spent on groceries", true},
		{"$1,200.50 rent", 120050, "rent", true},
		{"spent 25 on gas", 2500, "spent on gas", true},
		{"paid 12.50 for parking", 1250, "paid for parking", true},
		{"25 bucks for pizza", 2500, "bucks for pizza", true},
		{"got 20 from mom", 2000, "got from mom", true},
		{"spent 25, then went home", 2500, "spent , then went home", true},

		// leftmost recognized amount wins
		{"Spent $25 and $10 on books", 2500, "Spent and $10 on books", true},

		// bare numbers without context are not amounts
		{"table for 2", 0, "", false},
		{"meet at 7 tomorrow", 0, "", false},

		// numbers glued to words are not amounts
		{"upgrade to v2.5 cost $30", 3000, "upgrade to v2.5 cost", true},
		{"the 25th of May", 0, "", false},

		// malformed leftmost candidate rejects the extraction outright
		{"$25.999", 0, "", false},
		{"spent 25.999 on stuff", 0, "", false},
		{"$25.999 and $10", 0, "", false},

		{"$0", 0, "", false},
		{"no numbers here", 0, "", false},
		{"", 0, "", false},
	}
	for _, tc := range cases {
		amount, remainder, ok := ExtractAmount(tc.in)
		if ok != tc.ok {
			t.Fatalf("%q: ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if !tc.ok {
			continue
		}
		if amount.Cents != tc.cents {
			t.Fatalf("%q: cents = %d, want %d", tc.in, amount.Cents, tc.cents)
		}
		if remainder != tc.remainder {
			t.Fatalf("%q: remainder = %q, want %q", tc.in, remainder, tc.remainder)
		}
	}
}
