// Package storage implements the ledger ports on SQLite. The database
// file is the system of record; spreadsheet export happens asynchronously
// from it.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"smsledger/internal/core"
	"smsledger/internal/ledger"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows one writer at a time; a single pooled connection
	// also keeps the PRAGMA below in effect for every statement.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ResolveAccount implements ledger.AccountResolver.
func (r *SQLiteRepository) ResolveAccount(ctx context.Context, phone string) (core.Account, error) {
	normalized := core.NormalizePhone(phone)
	if normalized == "" {
		return core.Account{}, fmt.Errorf("resolve account: %w", ledger.ErrNotFound)
	}
	var acct core.Account
	err := r.db.QueryRowContext(ctx,
		"SELECT id, phone FROM accounts WHERE phone = ?", normalized).
		Scan(&acct.ID, &acct.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("resolve account: %w", ledger.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("resolve account: %w", err)
	}
	return acct, nil
}

// CreateAccount implements ledger.AccountCreator. The new account is
// linked to the phone and seeded with the standard category set in one
// transaction.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, phone string) (core.Account, error) {
	normalized := core.NormalizePhone(phone)
	if normalized == "" {
		return core.Account{}, core.ErrEmptyPhone
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Account{}, fmt.Errorf("begin create account: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "INSERT INTO accounts (phone) VALUES (?)", normalized)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Account{}, fmt.Errorf("create account: %w", ledger.ErrPhoneInUse)
		}
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	accountID, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("create account id: %w", err)
	}

	for i, name := range core.StandardCategories() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO categories (account_id, name, position) VALUES (?, ?, ?)",
			accountID, name, i); err != nil {
			return core.Account{}, fmt.Errorf("seed category %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Account{}, fmt.Errorf("commit create account: %w", err)
	}

	slog.InfoContext(ctx, "Account created", "account_id", accountID)
	return core.Account{ID: accountID, Phone: normalized}, nil
}

// LinkPhone implements ledger.PhoneLinker.
func (r *SQLiteRepository) LinkPhone(ctx context.Context, accountID int64, phone string) error {
	normalized := core.NormalizePhone(phone)
	if normalized == "" {
		return core.ErrEmptyPhone
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET phone = ? WHERE id = ?", normalized, accountID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("link phone: %w", ledger.ErrPhoneInUse)
		}
		return fmt.Errorf("link phone: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("link phone rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("link phone: account %d: %w", accountID, ledger.ErrNotFound)
	}
	return nil
}

// ListCategories implements ledger.CategoryReader. Order is the
// account's enumeration order: seeding position first, then insertion.
func (r *SQLiteRepository) ListCategories(ctx context.Context, accountID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, account_id, name FROM categories WHERE account_id = ? ORDER BY position, id",
		accountID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

// FindOrCreateDefaultCategory implements ledger.TransactionWriter. The
// insert-then-select pair rides on UNIQUE(account_id, name), so two
// concurrent first-time callers converge on a single row.
func (r *SQLiteRepository) FindOrCreateDefaultCategory(ctx context.Context, accountID int64) (int64, error) {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (account_id, name, position) VALUES (?, ?, 999) ON CONFLICT(account_id, name) DO NOTHING",
		accountID, core.DefaultCategoryName)
	if err != nil {
		return 0, fmt.Errorf("ensure default category: %w", err)
	}
	var id int64
	err = r.db.QueryRowContext(ctx,
		"SELECT id FROM categories WHERE account_id = ? AND name = ?",
		accountID, core.DefaultCategoryName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("find default category: %w", err)
	}
	return id, nil
}

// InsertTransaction implements ledger.TransactionWriter: one row, one
// atomic write.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, fmt.Errorf("validate transaction: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (account_id, category_id, type, amount_cents, description, tx_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.AccountID, tx.CategoryID, string(tx.Type), tx.Amount.Cents, tx.Description,
		tx.Date.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"account_id", tx.AccountID,
		"type", string(tx.Type),
		"amount_cents", tx.Amount.Cents)
	return id, nil
}

// SetBudget upserts the month's allocation for a category.
func (r *SQLiteRepository) SetBudget(ctx context.Context, accountID, categoryID int64, month core.Month, allocated core.Money) error {
	if err := month.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (account_id, category_id, month, allocated_cents)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(account_id, category_id, month) DO UPDATE SET allocated_cents = excluded.allocated_cents`,
		accountID, categoryID, month.String(), allocated.Cents)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

// GetBudgetStatus implements ledger.BudgetReader. Spend counts expense
// rows only; income never reduces a budget.
func (r *SQLiteRepository) GetBudgetStatus(ctx context.Context, accountID int64, categoryID *int64, month core.Month) (core.BudgetStatus, error) {
	if err := month.Validate(); err != nil {
		return core.BudgetStatus{}, err
	}
	status := core.BudgetStatus{Month: month}

	var err error
	if categoryID != nil {
		err = r.db.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(allocated_cents), 0) FROM budgets WHERE account_id = ? AND category_id = ? AND month = ?",
			accountID, *categoryID, month.String()).Scan(&status.Allocated.Cents)
	} else {
		err = r.db.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(allocated_cents), 0) FROM budgets WHERE account_id = ? AND month = ?",
			accountID, month.String()).Scan(&status.Allocated.Cents)
	}
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("read allocated: %w", err)
	}

	monthPrefix := month.String() + "%"
	if categoryID != nil {
		err = r.db.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE account_id = ? AND category_id = ? AND type = 'expense' AND tx_date LIKE ?",
			accountID, *categoryID, monthPrefix).Scan(&status.Spent.Cents)
	} else {
		err = r.db.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE account_id = ? AND type = 'expense' AND tx_date LIKE ?",
			accountID, monthPrefix).Scan(&status.Spent.Cents)
	}
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("read spent: %w", err)
	}
	return status, nil
}

// TransactionRow is a ledger row with the bookkeeping the sync worker
// needs.
type TransactionRow struct {
	Transaction  core.Transaction
	CategoryName string
	SyncStatus   string
	Version      int64
	CreatedAt    time.Time
}

// PendingSyncTransaction is the minimal shape queued for export.
type PendingSyncTransaction struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

// GetTransaction loads one row with its category name for export.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (TransactionRow, error) {
	var (
		row     TransactionRow
		txDate  string
		created string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT t.id, t.account_id, t.category_id, t.type, t.amount_cents, t.description, t.tx_date,
		        t.sync_status, t.version, t.created_at, c.name
		 FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.id = ?`, id).
		Scan(&row.Transaction.ID, &row.Transaction.AccountID, &row.Transaction.CategoryID,
			&row.Transaction.Type, &row.Transaction.Amount.Cents, &row.Transaction.Description,
			&txDate, &row.SyncStatus, &row.Version, &created, &row.CategoryName)
	if errors.Is(err, sql.ErrNoRows) {
		return TransactionRow{}, fmt.Errorf("transaction %d: %w", id, ledger.ErrNotFound)
	}
	if err != nil {
		return TransactionRow{}, fmt.Errorf("get transaction: %w", err)
	}
	d, err := time.Parse(dateLayout, txDate)
	if err != nil {
		return TransactionRow{}, fmt.Errorf("parse tx date %q: %w", txDate, err)
	}
	row.Transaction.Date = core.Date{Time: d}
	row.CreatedAt = parseTimestamp(created)
	return row, nil
}

// GetPendingSyncTransactions returns rows not yet exported, oldest first.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, version, created_at FROM transactions WHERE sync_status = 'pending' ORDER BY id LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("get pending transactions: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncTransaction
	for rows.Next() {
		var (
			p       PendingSyncTransaction
			created string
		)
		if err := rows.Scan(&p.ID, &p.Version, &created); err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		p.CreatedAt = parseTimestamp(created)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending transactions: %w", err)
	}
	return out, nil
}

// MarkSynced records a successful export.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError flags a row whose export keeps failing so the periodic
// pass can skip past it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET sync_status = 'error' WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

// isUniqueViolation detects SQLite unique-constraint failures. The
// modernc driver exposes them only through the message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// parseTimestamp reads SQLite's CURRENT_TIMESTAMP format, falling back
// to the zero time on anything unexpected.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
