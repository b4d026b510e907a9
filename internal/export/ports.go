// Package export defines the outbound spreadsheet ports. The sheet is
// a mirror of the ledger, never the other way around.
package export

import (
	"context"
	"errors"

	"smsledger/internal/core"
)

// Entry is one ledger row shaped for the spreadsheet: date, type,
// amount, category, description.
type Entry struct {
	Date        core.Date
	Type        core.TransactionType
	Amount      core.Money
	Category    string
	Description string
}

func (e Entry) Validate() error {
	if e.Type != core.Expense && e.Type != core.Income {
		return core.ErrInvalidType
	}
	if e.Amount.Cents <= 0 {
		return core.ErrInvalidAmount
	}
	if e.Category == "" {
		return errors.New("entry category is required")
	}
	return nil
}

// Ports for outbound adapters.
type (
	RowAppender interface {
		Append(ctx context.Context, e Entry) (rowRef string, err error)
	}
)
