// Package ledger declares the narrow storage ports the interpreter
// dispatches through. The SQLite implementation lives in
// internal/storage, the in-process one in ledger/memory.
package ledger

import (
	"context"
	"errors"

	"smsledger/internal/core"
)

var (
	// ErrNotFound is returned when a phone, account or category has no row.
	ErrNotFound = errors.New("not found")
	// ErrPhoneInUse is returned when linking a phone already attached to
	// another account.
	ErrPhoneInUse = errors.New("phone already linked to an account")
)

// Ports for the storage collaborator.
type (
	// AccountResolver maps a verified sender phone to its account.
	// Unlinked phones yield ErrNotFound, which the webhook answers with
	// a fixed "not linked" reply before any parsing happens.
	AccountResolver interface {
		ResolveAccount(ctx context.Context, phone string) (core.Account, error)
	}

	// AccountCreator makes a new account already linked to a phone and
	// seeded with the standard category set.
	AccountCreator interface {
		CreateAccount(ctx context.Context, phone string) (core.Account, error)
	}

	// CategoryReader lists an account's categories in enumeration order;
	// the matcher checks them first to last.
	CategoryReader interface {
		ListCategories(ctx context.Context, accountID int64) ([]core.Category, error)
	}

	// TransactionWriter appends to the ledger. FindOrCreateDefaultCategory
	// must be race-safe: two concurrent callers get the same "Other" row.
	TransactionWriter interface {
		FindOrCreateDefaultCategory(ctx context.Context, accountID int64) (int64, error)
		InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error)
	}

	// BudgetReader reports one month's allocation and expense spend for a
	// single category, or summed across the account when categoryID is
	// nil.
	BudgetReader interface {
		GetBudgetStatus(ctx context.Context, accountID int64, categoryID *int64, month core.Month) (core.BudgetStatus, error)
	}

	// PhoneLinker attaches a verified phone to an existing account.
	PhoneLinker interface {
		LinkPhone(ctx context.Context, accountID int64, phone string) error
	}

	// Store is the full ledger surface the dispatcher and webhook host
	// depend on.
	Store interface {
		AccountResolver
		AccountCreator
		CategoryReader
		TransactionWriter
		BudgetReader
		PhoneLinker
	}
)
