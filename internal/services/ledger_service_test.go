package services

import (
	"context"
	"path/filepath"
	"testing"

	"smsledger/internal/core"
	"smsledger/internal/storage"
)

func TestNewLedgerService(t *testing.T) {
	service := NewLedgerService(nil, nil)

	if service == nil {
		t.Error("NewLedgerService should return a non-nil service")
	}
	if service.storage != nil {
		t.Error("NewLedgerService should set storage to nil when passed nil")
	}
}

func TestLedgerService_InsertWithoutQueue(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	// nil AMQP client: the publish step must be skipped, not fail
	service := NewLedgerService(repo, nil)
	defer service.Close()

	ctx := context.Background()
	acct, err := service.CreateAccount(ctx, "+15553330000")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	catID, err := service.FindOrCreateDefaultCategory(ctx, acct.ID)
	if err != nil {
		t.Fatalf("FindOrCreateDefaultCategory: %v", err)
	}

	id, err := service.InsertTransaction(ctx, core.Transaction{
		AccountID:  acct.ID,
		CategoryID: catID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: 2500},
		Date:       core.Today(),
	})
	if err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero transaction id")
	}
}

func TestLedgerService_CategoryCache(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	service := NewLedgerService(repo, nil)
	defer service.Close()

	ctx := context.Background()
	acct, err := service.CreateAccount(ctx, "+15553330001")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	first, err := service.ListCategories(ctx, acct.ID)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(first) != len(core.StandardCategories()) {
		t.Fatalf("expected seeded category set, got %d categories", len(first))
	}

	// Second read is served from the cache and must match.
	second, err := service.ListCategories(ctx, acct.ID)
	if err != nil {
		t.Fatalf("ListCategories (cached): %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("cached list diverged: %d vs %d", len(second), len(first))
	}
	for i := range first {
		if second[i].Name != first[i].Name {
			t.Fatalf("cached list diverged at %d: %q vs %q", i, second[i].Name, first[i].Name)
		}
	}

	// A default-category ensure may add a row, so it must drop the
	// cached entry rather than leave a stale list behind.
	if _, err := service.FindOrCreateDefaultCategory(ctx, acct.ID); err != nil {
		t.Fatalf("FindOrCreateDefaultCategory: %v", err)
	}
	if _, ok := service.categories.Get(categoryCacheKey(acct.ID)); ok {
		t.Fatal("category cache entry should be invalidated after ensure")
	}
}

func TestLedgerService_Close(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		service := &LedgerService{}

		if err := service.Close(); err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})
}
