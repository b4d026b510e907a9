// Package worker moves recorded transactions from SQLite to the
// spreadsheet. It is driven two ways: queue messages for fresh rows and
// a periodic sweep for anything the queue lost.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"smsledger/internal/amqp"
	"smsledger/internal/export"
	"smsledger/internal/storage"
)

type SyncWorker struct {
	storage   *storage.SQLiteRepository
	sheet     export.RowAppender
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, sheet export.RowAppender, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		sheet:     sheet,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single transaction sync message from
// the queue.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	row, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if row.SyncStatus == "synced" {
		slog.InfoContext(ctx, "Transaction already synced, skipping", "id", msg.ID)
		return nil
	}

	if err := w.syncToSheet(ctx, msg.ID, row); err != nil {
		return fmt.Errorf("sync transaction to sheet: %w", err)
	}

	return nil
}

// ProcessPendingTransactions exports rows the queue never delivered.
// This is the backup path when messages are lost or the worker was down.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		row, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}

		if err := w.syncToSheet(ctx, p.ID, row); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck drains the pending backlog once at worker startup,
// recovering from missed queue messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		row, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction for startup sync",
				"id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			errorCount++
			continue
		}

		if err := w.syncToSheet(ctx, p.ID, row); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}

		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) syncToSheet(ctx context.Context, id int64, row storage.TransactionRow) error {
	entry := export.Entry{
		Date:        row.Transaction.Date,
		Type:        row.Transaction.Type,
		Amount:      row.Transaction.Amount,
		Category:    row.CategoryName,
		Description: row.Transaction.Description,
	}

	ref, err := w.sheet.Append(ctx, entry)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The append worked; a stale pending flag just means one
		// duplicate row on the next sweep.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Synced transaction",
		"id", id,
		"sheets_ref", ref,
		"amount_cents", row.Transaction.Amount.Cents)

	return nil
}
