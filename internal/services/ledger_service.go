// Package services wires the SQLite ledger to the sync queue. The
// database write is the source of truth; queue publishes are advisory
// and never fail a caller.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"smsledger/internal/amqp"
	"smsledger/internal/cache"
	"smsledger/internal/core"
	"smsledger/internal/storage"
)

// Category lists are read once per inbound message; a short TTL keeps
// that off the database without letting a lazily created "Other" go
// unseen for long. Writes that add a category invalidate the entry
// anyway.
const (
	categoryCacheSize = 256
	categoryCacheTTL  = time.Minute
)

// LedgerService implements the ledger ports on SQLite and tees each
// recorded transaction to the export queue.
type LedgerService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	categories *cache.LRU[[]core.Category]
}

func NewLedgerService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		storage:    storage,
		amqpClient: amqpClient,
		categories: cache.NewLRU[[]core.Category](categoryCacheSize, categoryCacheTTL),
	}
}

func (s *LedgerService) ResolveAccount(ctx context.Context, phone string) (core.Account, error) {
	return s.storage.ResolveAccount(ctx, phone)
}

func (s *LedgerService) CreateAccount(ctx context.Context, phone string) (core.Account, error) {
	return s.storage.CreateAccount(ctx, phone)
}

func (s *LedgerService) LinkPhone(ctx context.Context, accountID int64, phone string) error {
	return s.storage.LinkPhone(ctx, accountID, phone)
}

func (s *LedgerService) ListCategories(ctx context.Context, accountID int64) ([]core.Category, error) {
	key := categoryCacheKey(accountID)
	if cached, ok := s.categories.Get(key); ok {
		return cached, nil
	}

	list, err := s.storage.ListCategories(ctx, accountID)
	if err != nil {
		return nil, err
	}
	s.categories.Set(key, list)
	return list, nil
}

// FindOrCreateDefaultCategory delegates to storage and drops the
// account's cached category list, since the call may have added a row.
func (s *LedgerService) FindOrCreateDefaultCategory(ctx context.Context, accountID int64) (int64, error) {
	id, err := s.storage.FindOrCreateDefaultCategory(ctx, accountID)
	if err != nil {
		return 0, err
	}
	s.categories.Delete(categoryCacheKey(accountID))
	return id, nil
}

// InsertTransaction saves the row locally, then publishes a sync
// message. A failed publish is logged and swallowed: the sender already
// got their confirmation and the periodic sweep will export the row.
func (s *LedgerService) InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	id, err := s.storage.InsertTransaction(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publishSyncMessage(ctx, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}

	return id, nil
}

func (s *LedgerService) GetBudgetStatus(ctx context.Context, accountID int64, categoryID *int64, month core.Month) (core.BudgetStatus, error) {
	return s.storage.GetBudgetStatus(ctx, accountID, categoryID, month)
}

func (s *LedgerService) publishSyncMessage(ctx context.Context, id, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}

	return s.amqpClient.PublishTransactionSync(ctx, id, version)
}

func categoryCacheKey(accountID int64) string {
	return strconv.FormatInt(accountID, 10)
}

// Close closes both storage and AMQP connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
