// Package memory implements the ledger ports in process, for the
// default development backend and for tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"smsledger/internal/core"
	"smsledger/internal/ledger"
)

type Store struct {
	mu           sync.Mutex
	accounts     []core.Account
	categories   map[int64][]core.Category // accountID -> ordered list
	transactions []core.Transaction
	allocations  map[string]int64 // accountID|categoryID|month -> cents

	nextAccountID  int64
	nextCategoryID int64
	nextTxID       int64
}

func New() *Store {
	return &Store{
		categories:  make(map[int64][]core.Category),
		allocations: make(map[string]int64),
	}
}

// NewSeeded returns a store with one linked account carrying the
// standard category set, handy for the memory backend.
func NewSeeded(phone string) (*Store, core.Account) {
	s := New()
	acct, err := s.CreateAccount(context.Background(), phone)
	if err != nil {
		// Only reachable with an empty seed phone.
		panic(fmt.Sprintf("seed account: %v", err))
	}
	return s, acct
}

func (s *Store) ResolveAccount(_ context.Context, phone string) (core.Account, error) {
	normalized := core.NormalizePhone(phone)
	if normalized == "" {
		return core.Account{}, fmt.Errorf("resolve account: %w", ledger.ErrNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if core.NormalizePhone(a.Phone) == normalized {
			return a, nil
		}
	}
	return core.Account{}, fmt.Errorf("resolve account %s: %w", normalized, ledger.ErrNotFound)
}

func (s *Store) CreateAccount(_ context.Context, phone string) (core.Account, error) {
	normalized := core.NormalizePhone(phone)
	if normalized == "" {
		return core.Account{}, core.ErrEmptyPhone
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if core.NormalizePhone(a.Phone) == normalized {
			return core.Account{}, fmt.Errorf("create account: %w", ledger.ErrPhoneInUse)
		}
	}
	s.nextAccountID++
	acct := core.Account{ID: s.nextAccountID, Phone: normalized}
	s.accounts = append(s.accounts, acct)
	for _, name := range core.StandardCategories() {
		s.addCategoryLocked(acct.ID, name)
	}
	return acct, nil
}

func (s *Store) LinkPhone(_ context.Context, accountID int64, phone string) error {
	normalized := core.NormalizePhone(phone)
	if normalized == "" {
		return core.ErrEmptyPhone
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, a := range s.accounts {
		if core.NormalizePhone(a.Phone) == normalized && a.ID != accountID {
			return fmt.Errorf("link phone: %w", ledger.ErrPhoneInUse)
		}
		if a.ID == accountID {
			idx = i
		}
	}
	if idx < 0 {
		return fmt.Errorf("link phone: account %d: %w", accountID, ledger.ErrNotFound)
	}
	s.accounts[idx].Phone = normalized
	return nil
}

func (s *Store) ListCategories(_ context.Context, accountID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cats := append([]core.Category(nil), s.categories[accountID]...)
	return cats, nil
}

func (s *Store) FindOrCreateDefaultCategory(_ context.Context, accountID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories[accountID] {
		if strings.EqualFold(c.Name, core.DefaultCategoryName) {
			return c.ID, nil
		}
	}
	c := s.addCategoryLocked(accountID, core.DefaultCategoryName)
	return c.ID, nil
}

// AddCategory appends a category to the account's enumeration. Adding an
// existing name returns the existing row, mirroring the storage layer's
// uniqueness constraint.
func (s *Store) AddCategory(_ context.Context, accountID int64, name string) (core.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Category{}, fmt.Errorf("add category: empty name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories[accountID] {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return s.addCategoryLocked(accountID, name), nil
}

func (s *Store) addCategoryLocked(accountID int64, name string) core.Category {
	s.nextCategoryID++
	c := core.Category{ID: s.nextCategoryID, AccountID: accountID, Name: name}
	s.categories[accountID] = append(s.categories[accountID], c)
	return c
}

func (s *Store) InsertTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTxID++
	tx.ID = s.nextTxID
	s.transactions = append(s.transactions, tx)
	return tx.ID, nil
}

// SetBudget records the month's allocation for a category.
func (s *Store) SetBudget(_ context.Context, accountID, categoryID int64, month core.Month, allocated core.Money) error {
	if err := month.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocations[allocationKey(accountID, categoryID, month)] = allocated.Cents
	return nil
}

func (s *Store) GetBudgetStatus(_ context.Context, accountID int64, categoryID *int64, month core.Month) (core.BudgetStatus, error) {
	if err := month.Validate(); err != nil {
		return core.BudgetStatus{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	status := core.BudgetStatus{Month: month}
	if categoryID != nil {
		status.Allocated = core.Money{Cents: s.allocations[allocationKey(accountID, *categoryID, month)]}
	} else {
		for _, c := range s.categories[accountID] {
			status.Allocated.Cents += s.allocations[allocationKey(accountID, c.ID, month)]
		}
	}
	for _, tx := range s.transactions {
		if tx.AccountID != accountID || tx.Type != core.Expense {
			continue
		}
		if core.MonthOf(tx.Date.Time) != month {
			continue
		}
		if categoryID != nil && tx.CategoryID != *categoryID {
			continue
		}
		status.Spent.Cents += tx.Amount.Cents
	}
	return status, nil
}

// Transactions returns a copy of the recorded ledger, newest last.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.transactions...)
}

func allocationKey(accountID, categoryID int64, month core.Month) string {
	return fmt.Sprintf("%d|%d|%s", accountID, categoryID, month)
}
