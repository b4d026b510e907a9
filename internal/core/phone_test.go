package core

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"+15555550123", "+15555550123"},
		{"(555) 555-0123", "5555550123"},
		{"555 555 0123", "5555550123"},
		{" +1 555-555-0123 ", "+15555550123"},
		{"+", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.out {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
