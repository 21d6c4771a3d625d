// Package worker mirrors records from SQLite into the spreadsheet. It is
// driven by AMQP messages, with a periodic pending-row scan as backup in
// case messages are lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"notas/internal/amqp"
	"notas/internal/core"
	"notas/internal/sheets"
	"notas/internal/storage"
)

// Store is the persistence surface the worker needs.
type Store interface {
	GetRecord(ctx context.Context, id int64) (core.Record, error)
	RecordVersion(ctx context.Context, id int64) (int64, error)
	PendingSync(ctx context.Context, limit int) ([]storage.SyncItem, error)
	MarkSynced(ctx context.Context, id, version int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

type SyncWorker struct {
	store     Store
	writer    sheets.RecordWriter
	remover   sheets.RecordRemover
	batchSize int
}

func NewSyncWorker(store Store, writer sheets.RecordWriter, remover sheets.RecordRemover, batchSize int) *SyncWorker {
	return &SyncWorker{
		store:     store,
		writer:    writer,
		remover:   remover,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single record sync message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	version, err := w.store.RecordVersion(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between publish and processing; the delete message
		// takes care of the mirror row.
		slog.InfoContext(ctx, "Record gone before sync, skipping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("record version: %w", err)
	}

	return w.syncRecord(ctx, msg.ID, version)
}

// HandleDeleteMessage processes a single record delete message.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.RecordDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if w.remover == nil {
		slog.WarnContext(ctx, "No remover configured, skipping mirror deletion", "id", msg.ID)
		return nil
	}

	if err := w.remover.Remove(ctx, msg.ID); err != nil {
		return fmt.Errorf("remove mirror row: %w", err)
	}
	return nil
}

// ProcessPending mirrors records still flagged pending. This is the backup
// path for lost AMQP messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.PendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending records", "count", len(pending))

	for _, item := range pending {
		if err := w.syncRecord(ctx, item.ID, item.Version); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record", "id", item.ID, "error", err)
		}
	}
	return nil
}

// StartupCheck mirrors a larger pending batch once at worker startup, to
// recover from downtime.
func (w *SyncWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.PendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending records for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending records on startup", "count", len(pending))

	synced := 0
	failed := 0
	for _, item := range pending {
		if err := w.syncRecord(ctx, item.ID, item.Version); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record during startup", "id", item.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending), "synced", synced, "errors", failed)
	return nil
}

func (w *SyncWorker) syncRecord(ctx context.Context, id, version int64) error {
	rec, err := w.store.GetRecord(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		slog.InfoContext(ctx, "Record gone before sync, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}

	if err := w.writer.Write(ctx, rec); err != nil {
		if markErr := w.store.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("write mirror row: %w", err)
	}

	// A stale version leaves the row pending so the newer state gets
	// picked up by the next scan.
	if err := w.store.MarkSynced(ctx, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Record mirrored",
		"id", id, "version", version, "data", rec.Date, "valor_cents", rec.Amount.Cents)
	return nil
}
