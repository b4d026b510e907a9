package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"smsledger/internal/core"
	"smsledger/internal/ledger"
)

func TestResolveAccount(t *testing.T) {
	ctx := context.Background()
	store, acct := NewSeeded("+15555550100")

	got, err := store.ResolveAccount(ctx, "+1 555-555-0100")
	if err != nil {
		t.Fatalf("ResolveAccount: %v", err)
	}
	if got.ID != acct.ID {
		t.Fatalf("resolved account %d, want %d", got.ID, acct.ID)
	}

	_, err = store.ResolveAccount(ctx, "+15550000000")
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAccountSeedsCategories(t *testing.T) {
	ctx := context.Background()
	store := New()
	acct, err := store.CreateAccount(ctx, "+15555550100")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	cats, err := store.ListCategories(ctx, acct.ID)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	want := core.StandardCategories()
	if len(cats) != len(want) {
		t.Fatalf("got %d categories, want %d", len(cats), len(want))
	}
	for i, c := range cats {
		if c.Name != want[i] {
			t.Fatalf("category %d is %q, want %q (enumeration order)", i, c.Name, want[i])
		}
	}

	if _, err := store.CreateAccount(ctx, "555 555 0100"); !errors.Is(err, ledger.ErrPhoneInUse) {
		t.Fatalf("expected ErrPhoneInUse, got %v", err)
	}
}

func TestLinkPhone(t *testing.T) {
	ctx := context.Background()
	store, _ := NewSeeded("+15555550100")

	other, err := store.CreateAccount(ctx, "+15555550101")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := store.LinkPhone(ctx, other.ID, "+15555550100"); !errors.Is(err, ledger.ErrPhoneInUse) {
		t.Fatalf("expected ErrPhoneInUse, got %v", err)
	}
	if err := store.LinkPhone(ctx, 999, "+15555550199"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.LinkPhone(ctx, other.ID, "+15555550199"); err != nil {
		t.Fatalf("LinkPhone: %v", err)
	}
	if _, err := store.ResolveAccount(ctx, "+15555550199"); err != nil {
		t.Fatalf("resolve after relink: %v", err)
	}
}

func TestFindOrCreateDefaultCategory(t *testing.T) {
	ctx := context.Background()
	store := New()
	acct, _ := store.CreateAccount(ctx, "+15555550100")

	// Seeded accounts already carry Other; both calls return the same id.
	first, err := store.FindOrCreateDefaultCategory(ctx, acct.ID)
	if err != nil {
		t.Fatalf("FindOrCreateDefaultCategory: %v", err)
	}
	second, _ := store.FindOrCreateDefaultCategory(ctx, acct.ID)
	if first != second {
		t.Fatalf("default category not stable: %d vs %d", first, second)
	}
}

// Two texts arriving at once must never produce duplicate Other rows,
// and each insert lands exactly once.
func TestConcurrentDefaultCategoryAndInserts(t *testing.T) {
	ctx := context.Background()
	store := New()

	// An account with no categories at all forces the lazy creation path.
	store.mu.Lock()
	store.nextAccountID++
	acct := core.Account{ID: store.nextAccountID, Phone: "+15555550100"}
	store.accounts = append(store.accounts, acct)
	store.mu.Unlock()

	const n = 16
	var wg sync.WaitGroup
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := store.FindOrCreateDefaultCategory(ctx, acct.ID)
			if err != nil {
				t.Errorf("goroutine %d: %v", i, err)
				return
			}
			ids[i] = id
			_, err = store.InsertTransaction(ctx, core.Transaction{
				AccountID:  acct.ID,
				CategoryID: id,
				Type:       core.Expense,
				Amount:     core.Money{Cents: 100},
				Date:       core.NewDate(2026, 8, 23),
			})
			if err != nil {
				t.Errorf("goroutine %d insert: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("got different default category ids: %d vs %d", ids[0], ids[i])
		}
	}
	cats, _ := store.ListCategories(ctx, acct.ID)
	others := 0
	for _, c := range cats {
		if c.Name == core.DefaultCategoryName {
			others++
		}
	}
	if others != 1 {
		t.Fatalf("found %d %q categories, want exactly 1", others, core.DefaultCategoryName)
	}
	if got := len(store.Transactions()); got != n {
		t.Fatalf("recorded %d transactions, want %d", got, n)
	}
}

func TestGetBudgetStatus(t *testing.T) {
	ctx := context.Background()
	store, acct := NewSeeded("+15555550100")
	month := core.Month{Year: 2026, Month: 8}

	cats, _ := store.ListCategories(ctx, acct.ID)
	var food, housing core.Category
	for _, c := range cats {
		switch c.Name {
		case "Food":
			food = c
		case "Housing":
			housing = c
		}
	}

	if err := store.SetBudget(ctx, acct.ID, food.ID, month, core.Money{Cents: 30000}); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	if err := store.SetBudget(ctx, acct.ID, housing.ID, month, core.Money{Cents: 100000}); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}

	insert := func(catID int64, txType core.TransactionType, cents int64, day int, monthNum int) {
		t.Helper()
		_, err := store.InsertTransaction(ctx, core.Transaction{
			AccountID:  acct.ID,
			CategoryID: catID,
			Type:       txType,
			Amount:     core.Money{Cents: cents},
			Date:       core.NewDate(2026, monthNum, day),
		})
		if err != nil {
			t.Fatalf("InsertTransaction: %v", err)
		}
	}
	insert(food.ID, core.Expense, 2500, 3, 8)
	insert(food.ID, core.Expense, 10050, 10, 8)
	insert(food.ID, core.Income, 99999, 11, 8)  // income never counts as spend
	insert(food.ID, core.Expense, 7777, 12, 7)  // different month
	insert(housing.ID, core.Expense, 90000, 1, 8)

	single, err := store.GetBudgetStatus(ctx, acct.ID, &food.ID, month)
	if err != nil {
		t.Fatalf("GetBudgetStatus: %v", err)
	}
	if single.Allocated.Cents != 30000 || single.Spent.Cents != 12550 {
		t.Fatalf("single = %+v, want allocated 30000 spent 12550", single)
	}
	if single.Remaining().Cents != 17450 {
		t.Fatalf("remaining = %d, want 17450", single.Remaining().Cents)
	}

	all, err := store.GetBudgetStatus(ctx, acct.ID, nil, month)
	if err != nil {
		t.Fatalf("GetBudgetStatus all: %v", err)
	}
	if all.Allocated.Cents != 130000 || all.Spent.Cents != 102550 {
		t.Fatalf("all = %+v, want allocated 130000 spent 102550", all)
	}
}
