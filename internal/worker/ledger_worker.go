// Package worker consumes ledger events and keeps the external ledger
// mirror in step with the local database.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"obra/internal/amqp"
	"obra/internal/core"
	"obra/internal/sheets"
	"obra/internal/storage"
)

// TransactionReader loads the current state of a transaction.
type TransactionReader interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
}

// AuditRecorder appends processed events to the audit log.
type AuditRecorder interface {
	RecordAuditEvent(ctx context.Context, p storage.AuditEventParams)
}

// LedgerWorker mirrors transactions into the external ledger. Sync events
// carry only the id; the worker always reads the current row, so a burst
// of edits converges on the final state regardless of delivery order.
type LedgerWorker struct {
	store   TransactionReader
	writer  sheets.LedgerWriter
	deleter sheets.LedgerDeleter
	audit   AuditRecorder
}

func NewLedgerWorker(store TransactionReader, writer sheets.LedgerWriter, deleter sheets.LedgerDeleter, audit AuditRecorder) *LedgerWorker {
	return &LedgerWorker{
		store:   store,
		writer:  writer,
		deleter: deleter,
		audit:   audit,
	}
}

// HandleMessage dispatches one ledger event. The returned error decides
// ack/nack at the AMQP layer: nil acks, non-nil requeues.
func (w *LedgerWorker) HandleMessage(ctx context.Context, msg *amqp.LedgerMessage) error {
	switch msg.Type {
	case amqp.TypeLedgerSync:
		return w.handleSync(ctx, msg)
	case amqp.TypeLedgerDelete:
		return w.handleDelete(ctx, msg)
	default:
		// The decoder rejects unknown types; this is a safety net.
		return fmt.Errorf("unknown ledger event type %q", msg.Type)
	}
}

func (w *LedgerWorker) handleSync(ctx context.Context, msg *amqp.LedgerMessage) error {
	tx, err := w.store.GetTransaction(ctx, msg.TransactionID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between publish and delivery; make sure the mirror
		// does not keep a stale row.
		slog.InfoContext(ctx, "Transaction gone before sync, removing from mirror",
			"event_id", msg.EventID, "transaction_id", msg.TransactionID)
		return w.removeFromMirror(ctx, msg)
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	ref, err := w.writer.Upsert(ctx, tx)
	if err != nil {
		return fmt.Errorf("mirror transaction %d: %w", tx.ID, err)
	}

	w.recordAudit(ctx, msg, "synced to "+ref)
	slog.InfoContext(ctx, "Transaction mirrored",
		"event_id", msg.EventID,
		"transaction_id", tx.ID,
		"amount", tx.Amount.String(),
		"ledger_ref", ref)
	return nil
}

func (w *LedgerWorker) handleDelete(ctx context.Context, msg *amqp.LedgerMessage) error {
	if err := w.removeFromMirror(ctx, msg); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction removed from mirror",
		"event_id", msg.EventID, "transaction_id", msg.TransactionID)
	return nil
}

func (w *LedgerWorker) removeFromMirror(ctx context.Context, msg *amqp.LedgerMessage) error {
	if w.deleter == nil {
		slog.WarnContext(ctx, "No ledger deleter configured, skipping removal",
			"transaction_id", msg.TransactionID)
		return nil
	}
	if err := w.deleter.Delete(ctx, msg.TransactionID); err != nil {
		return fmt.Errorf("remove transaction %d from mirror: %w", msg.TransactionID, err)
	}
	w.recordAudit(ctx, msg, "removed from mirror")
	return nil
}

func (w *LedgerWorker) recordAudit(ctx context.Context, msg *amqp.LedgerMessage, detail string) {
	if w.audit == nil {
		return
	}
	w.audit.RecordAuditEvent(ctx, storage.AuditEventParams{
		EventID:   msg.EventID,
		EventType: msg.Type,
		Entity:    "transaction",
		EntityID:  msg.TransactionID,
		Detail:    detail,
	})
}
