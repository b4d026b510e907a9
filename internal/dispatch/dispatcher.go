// Package dispatch executes parsed commands against the ledger and
// renders the reply. Every dispatch terminates in a reply string; ledger
// failures are logged and answered with a generic message, never
// propagated.
package dispatch

import (
	"context"
	"strings"
	"unicode/utf8"

	"smsledger/internal/command"
	"smsledger/internal/core"
	"smsledger/internal/ledger"
	"smsledger/internal/log"
	"smsledger/internal/reply"
)

type Dispatcher struct {
	store  ledger.Store
	logger *log.Logger
}

func New(store ledger.Store, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		logger: logger.WithComponent(log.ComponentDispatch),
	}
}

// Dispatch performs the domain action implied by cmd for account and
// returns the reply text. RecordTransaction writes exactly one row; a
// BudgetQuery reads aggregates; everything else is pure formatting.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd command.ParsedCommand, account core.Account) string {
	switch cmd.Kind {
	case command.KindRecordTransaction:
		return d.recordTransaction(ctx, cmd, account)
	case command.KindBudgetQuery:
		return d.budgetQuery(ctx, cmd, account)
	case command.KindHelp:
		return reply.Help()
	case command.KindUnrecognized:
		if cmd.Reason == command.NoAmountFound {
			return reply.NoAmountFound()
		}
		return reply.NotUnderstood()
	default:
		return reply.NotUnderstood()
	}
}

func (d *Dispatcher) recordTransaction(ctx context.Context, cmd command.ParsedCommand, account core.Account) string {
	categoryID, categoryName, err := d.resolveCategory(ctx, account, cmd.Category)
	if err != nil {
		d.logger.ErrorContext(ctx, "category resolution failed",
			log.FieldError, err,
			log.FieldAccountID, account.ID,
			log.FieldCategory, cmd.Category)
		return reply.SomethingWentWrong()
	}

	description := clipDescription(cmd.Description)
	tx := core.Transaction{
		AccountID:   account.ID,
		CategoryID:  categoryID,
		Type:        cmd.TxType,
		Amount:      cmd.Amount,
		Description: description,
		Date:        core.Today(),
	}
	txID, err := d.store.InsertTransaction(ctx, tx)
	if err != nil {
		d.logger.ErrorContext(ctx, "transaction insert failed",
			log.FieldError, err,
			log.FieldAccountID, account.ID,
			log.FieldTxType, string(cmd.TxType),
			log.FieldAmountCents, cmd.Amount.Cents)
		return reply.SomethingWentWrong()
	}

	d.logger.InfoContext(ctx, "transaction recorded",
		log.FieldAccountID, account.ID,
		log.FieldTxID, txID,
		log.FieldTxType, string(cmd.TxType),
		log.FieldAmountCents, cmd.Amount.Cents,
		log.FieldCategory, categoryName)
	return reply.TransactionRecorded(cmd.TxType, cmd.Amount, categoryName, description)
}

// clipDescription cuts free text to the ledger's description cap on a
// rune boundary. An SMS can carry more text than a description column
// needs; the write goes through and only the tail is lost.
func clipDescription(s string) string {
	if len(s) <= core.MaxDescriptionLen {
		return s
	}
	cut := core.MaxDescriptionLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// resolveCategory turns the matched category name into a concrete id.
// An empty name takes the lazy default-bucket path; a non-empty name is
// looked up in the account's list. Names come from matching against that
// same list, so a miss only happens when the list changed mid-flight, in
// which case the default bucket absorbs the write rather than losing it.
func (d *Dispatcher) resolveCategory(ctx context.Context, account core.Account, name string) (int64, string, error) {
	if name == "" {
		id, err := d.store.FindOrCreateDefaultCategory(ctx, account.ID)
		return id, core.DefaultCategoryName, err
	}
	cats, err := d.store.ListCategories(ctx, account.ID)
	if err != nil {
		return 0, "", err
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, name) {
			return c.ID, c.Name, nil
		}
	}
	id, err := d.store.FindOrCreateDefaultCategory(ctx, account.ID)
	return id, core.DefaultCategoryName, err
}

func (d *Dispatcher) budgetQuery(ctx context.Context, cmd command.ParsedCommand, account core.Account) string {
	month := core.CurrentMonth()

	var categoryID *int64
	categoryName := cmd.Category
	if categoryName != "" {
		cats, err := d.store.ListCategories(ctx, account.ID)
		if err != nil {
			d.logger.ErrorContext(ctx, "category list failed",
				log.FieldError, err, log.FieldAccountID, account.ID)
			return reply.SomethingWentWrong()
		}
		for _, c := range cats {
			if strings.EqualFold(c.Name, categoryName) {
				id := c.ID
				categoryID = &id
				categoryName = c.Name
				break
			}
		}
		if categoryID == nil {
			// The matched name vanished from the list; answer with the
			// account-wide summary instead of an error.
			categoryName = ""
		}
	}

	status, err := d.store.GetBudgetStatus(ctx, account.ID, categoryID, month)
	if err != nil {
		d.logger.ErrorContext(ctx, "budget read failed",
			log.FieldError, err,
			log.FieldAccountID, account.ID,
			log.FieldMonth, month.String())
		return reply.SomethingWentWrong()
	}

	if categoryName != "" {
		return reply.BudgetSingle(categoryName, status)
	}
	return reply.BudgetAll(status)
}
