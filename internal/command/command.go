// Package command implements the SMS transaction-command interpreter: it
// classifies a raw message's intent, extracts a dollar amount and a
// category from the text, and composes them into a ParsedCommand ready
// for dispatch. Parsing is pure and total; every input yields exactly
// one command variant and no side effects.
package command

import "smsledger/internal/core"

const (
	KindRecordTransaction Kind = "record_transaction"
	KindBudgetQuery       Kind = "budget_query"
	KindHelp              Kind = "help"
	KindUnrecognized      Kind = "unrecognized"
)

const (
	NoAmountFound   FailureReason = "no_amount_found"
	NoIntentMatched FailureReason = "no_intent_matched"
)

type (
	Kind          string
	FailureReason string

	// ParsedCommand is the structured result of interpreting one message.
	// Kind discriminates which of the remaining fields are meaningful:
	// record_transaction uses TxType, Amount, Category and Description;
	// budget_query uses Category ("" means all categories); unrecognized
	// uses Reason.
	ParsedCommand struct {
		Kind        Kind
		TxType      core.TransactionType
		Amount      core.Money
		Category    string
		Description string
		Reason      FailureReason
	}
)
