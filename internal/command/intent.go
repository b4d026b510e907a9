package command

import "strings"

// Intent is the coarse-grained purpose of an inbound message.
type Intent string

const (
	IntentExpense     Intent = "expense"
	IntentIncome      Intent = "income"
	IntentBudgetQuery Intent = "budget_query"
	IntentHelp        Intent = "help"
	IntentUnknown     Intent = "unknown"
)

// intentRule pairs a named predicate with the intent it selects.
type intentRule struct {
	name   string
	match  func(text string) bool
	intent Intent
}

// intentRules is evaluated top to bottom over the lower-cased message;
// the first matching rule wins. Help and budget phrasing are checked
// before transactional phrasing so "budget $200" reads as a query, not
// an expense. Predicates after the income rule can assume no income
// keyword is present.
var intentRules = []intentRule{
	{
		name:   "help-keyword",
		match:  matchesHelp,
		intent: IntentHelp,
	},
	{
		name:   "budget-keyword",
		match:  containsWord("budget"),
		intent: IntentBudgetQuery,
	},
	{
		name:   "income-keyword",
		match:  containsWord("income", "received", "got paid", "earned", "paycheck", "salary"),
		intent: IntentIncome,
	},
	{
		name:   "amount-present",
		match:  hasAmount,
		intent: IntentExpense,
	},
}

// Classify runs the intent rule table over text. Messages matching no
// rule are Unknown.
func Classify(text string) Intent {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, r := range intentRules {
		if r.match(t) {
			return r.intent
		}
	}
	return IntentUnknown
}

// matchesHelp is the only rule that looks at raw text: "?" is
// punctuation and would vanish under normalization.
func matchesHelp(text string) bool {
	return strings.Contains(text, "?") || containsWord("help", "commands")(text)
}

// containsWord reports whether any keyword appears on word boundaries
// in the normalized text. Multi-word keywords match as consecutive
// words. Substring hits inside larger words do not count, so "learned"
// never reads as "earned".
func containsWord(keywords ...string) func(string) bool {
	return func(text string) bool {
		padded := " " + normalizeText(text) + " "
		for _, k := range keywords {
			if strings.Contains(padded, " "+k+" ") {
				return true
			}
		}
		return false
	}
}

func hasAmount(text string) bool {
	_, _, ok := ExtractAmount(text)
	return ok
}
