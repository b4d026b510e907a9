// Package reply renders the terse SMS-safe strings the dispatcher sends
// back. Every function is pure and every result fits MaxLen; when a
// reply would run over, the trailing free-text detail is cut, never the
// confirmed amount or category.
package reply

import (
	"fmt"
	"strconv"
	"strings"

	"smsledger/internal/core"
)

// MaxLen is the reply length cap in runes, four concatenated GSM
// segments. Well under what transports accept, comfortably above what a
// confirmation needs.
const MaxLen = 640

// FormatUSD renders money as "$1,234.56": leading dollar sign, comma
// thousands grouping, always exactly two decimals.
func FormatUSD(m core.Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	digits := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	b.WriteString(sign)
	b.WriteByte('$')
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	fmt.Fprintf(&b, ".%02d", cents%100)
	return b.String()
}

// TransactionRecorded confirms a ledger write, e.g.
// "Recorded $25.00 expense for Food: Spent on groceries".
func TransactionRecorded(txType core.TransactionType, amount core.Money, category, description string) string {
	head := fmt.Sprintf("Recorded %s %s for %s", FormatUSD(amount), txType, category)
	if strings.TrimSpace(description) == "" {
		return clamp(head)
	}
	return withDetail(head, description)
}

// BudgetSingle reports one category's standing for the month.
func BudgetSingle(category string, status core.BudgetStatus) string {
	head := fmt.Sprintf("%s budget for %s: %s allocated, %s spent, %s",
		category, status.Month.Name(), FormatUSD(status.Allocated), FormatUSD(status.Spent), remainingPhrase(status))
	return clamp(head)
}

// BudgetAll reports the whole account's standing for the month.
func BudgetAll(status core.BudgetStatus) string {
	head := fmt.Sprintf("Budget for %s: %s allocated, %s spent, %s",
		status.Month.Name(), FormatUSD(status.Allocated), FormatUSD(status.Spent), remainingPhrase(status))
	return clamp(head)
}

func remainingPhrase(status core.BudgetStatus) string {
	rem := status.Remaining()
	if rem.Cents < 0 {
		return fmt.Sprintf("over by %s", FormatUSD(core.Money{Cents: -rem.Cents}))
	}
	return fmt.Sprintf("%s left", FormatUSD(rem))
}

// Help lists the supported phrasings.
func Help() string {
	return clamp("You can text me things like:\n" +
		"$12.50 lunch\n" +
		"spent 40 on groceries\n" +
		"income $500 freelance\n" +
		"budget food (one category)\n" +
		"budget (everything)")
}

// NoAmountFound explains a transactional message missing its amount.
func NoAmountFound() string {
	return clamp(`I couldn't find a dollar amount in that message. Try "$12.50 lunch", or text HELP for examples.`)
}

// NotUnderstood is the generic fallback for unrecognized messages.
func NotUnderstood() string {
	return clamp("Sorry, I didn't understand that. Text HELP for examples.")
}

// PhoneNotLinked answers senders with no account on file.
func PhoneNotLinked() string {
	return clamp("This number isn't linked to an account yet. Open the app settings to verify your phone, then text me again.")
}

// SomethingWentWrong is the generic internal-failure reply. The message
// is deliberately vague; details go to the log, not the user.
func SomethingWentWrong() string {
	return clamp("Something went wrong and that message wasn't recorded. Please try again in a minute.")
}

// RateLimited answers senders who are over the per-phone message budget.
func RateLimited() string {
	return clamp("You're texting faster than I can keep up. Give it a few seconds and try again.")
}

// withDetail appends free-text detail after the essential head,
// truncating only the detail when the combined reply would exceed
// MaxLen.
func withDetail(head, detail string) string {
	s := head + ": " + detail
	if runeLen(s) <= MaxLen {
		return s
	}
	room := MaxLen - runeLen(head) - len(": ") - len("...")
	if room <= 0 {
		return clamp(head)
	}
	return head + ": " + cutRunes(detail, room) + "..."
}

// clamp hard-caps a reply, ellipsizing the tail. Builders keep their
// essential fields short enough that this only fires on pathological
// input.
func clamp(s string) string {
	if runeLen(s) <= MaxLen {
		return s
	}
	return cutRunes(s, MaxLen-len("...")) + "..."
}

func runeLen(s string) int {
	return len([]rune(s))
}

func cutRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
