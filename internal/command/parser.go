package command

import (
	"strings"

	"smsledger/internal/core"
)

// Parser turns raw message text into ParsedCommands. It carries only the
// immutable synonym table; the account's category list is passed per
// call so parsing stays account-agnostic and free of storage access.
type Parser struct {
	synonyms SynonymTable
}

// NewParser creates a parser. A nil synonym table selects the built-in
// defaults.
func NewParser(synonyms SynonymTable) *Parser {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &Parser{synonyms: synonyms}
}

// Parse interprets one message against the account's known categories.
// It is pure and total: every input produces exactly one command variant
// and parsing never fails with an error.
func (p *Parser) Parse(text string, known []core.Category) ParsedCommand {
	switch Classify(text) {
	case IntentHelp:
		return ParsedCommand{Kind: KindHelp}
	case IntentBudgetQuery:
		return p.parseBudgetQuery(text, known)
	case IntentIncome:
		return p.parseTransaction(text, known, core.Income)
	case IntentExpense:
		return p.parseTransaction(text, known, core.Expense)
	default:
		return ParsedCommand{Kind: KindUnrecognized, Reason: NoIntentMatched}
	}
}

// parseTransaction handles expense and income phrasing. The description
// is the original text with the amount token removed; an empty
// description is valid ("$30" alone is a fine message). A missing
// category stays empty for the dispatcher's default-bucket fallback.
func (p *Parser) parseTransaction(text string, known []core.Category, txType core.TransactionType) ParsedCommand {
	amount, remainder, ok := ExtractAmount(text)
	if !ok {
		return ParsedCommand{Kind: KindUnrecognized, Reason: NoAmountFound}
	}
	return ParsedCommand{
		Kind:        KindRecordTransaction,
		TxType:      txType,
		Amount:      amount,
		Category:    MatchCategory(remainder, known, p.synonyms),
		Description: remainder,
	}
}

// parseBudgetQuery matches a category on whatever follows the "budget"
// keyword. No match means the whole-account summary, not an error.
// Lowering can change a rune's byte length, so the keyword is located
// and sliced on the same lowered string; the matcher normalizes case
// anyway.
func (p *Parser) parseBudgetQuery(text string, known []core.Category) ParsedCommand {
	lowered := strings.ToLower(text)
	rest := ""
	if idx := strings.Index(lowered, "budget"); idx >= 0 {
		rest = lowered[idx+len("budget"):]
	}
	return ParsedCommand{
		Kind:     KindBudgetQuery,
		Category: MatchCategory(rest, known, p.synonyms),
	}
}
