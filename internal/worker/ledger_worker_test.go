package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"obra/internal/amqp"
	"obra/internal/core"
	"obra/internal/sheets/memory"
	"obra/internal/storage"
)

type fakeReader struct {
	txs map[int64]core.Transaction
}

func (f *fakeReader) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	tx, ok := f.txs[id]
	if !ok {
		return core.Transaction{}, storage.ErrNotFound
	}
	return tx, nil
}

type fakeAudit struct {
	mu     sync.Mutex
	events []storage.AuditEventParams
}

func (f *fakeAudit) RecordAuditEvent(_ context.Context, p storage.AuditEventParams) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, p)
}

func sampleTx(id int64, amount string) core.Transaction {
	return core.Transaction{
		ID:        id,
		ProjectID: 1,
		Amount:    decimal.RequireFromString(amount),
		Date:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestHandleSyncMirrorsTransaction(t *testing.T) {
	mirror := memory.New()
	audit := &fakeAudit{}
	reader := &fakeReader{txs: map[int64]core.Transaction{42: sampleTx(42, "700")}}
	w := NewLedgerWorker(reader, mirror, mirror, audit)

	msg := amqp.NewLedgerSyncMessage(42, 1)
	if err := w.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	got, ok := mirror.Get(42)
	if !ok || got.Amount.String() != "700" {
		t.Errorf("mirror row = %+v, want amount 700", got)
	}
	if len(audit.events) != 1 || audit.events[0].EventID != msg.EventID {
		t.Errorf("audit events = %+v, want one for %s", audit.events, msg.EventID)
	}
}

func TestHandleSyncConvergesOnLatestEdit(t *testing.T) {
	mirror := memory.New()
	reader := &fakeReader{txs: map[int64]core.Transaction{7: sampleTx(7, "100")}}
	w := NewLedgerWorker(reader, mirror, mirror, nil)
	ctx := context.Background()

	first := amqp.NewLedgerSyncMessage(7, 1)
	second := amqp.NewLedgerSyncMessage(7, 1)

	// Both events are processed after the second edit landed; the worker
	// always reads current state, so both writes carry the same value.
	reader.txs[7] = sampleTx(7, "250")
	if err := w.HandleMessage(ctx, first); err != nil {
		t.Fatalf("HandleMessage (first): %v", err)
	}
	if err := w.HandleMessage(ctx, second); err != nil {
		t.Fatalf("HandleMessage (second): %v", err)
	}

	if mirror.Len() != 1 {
		t.Errorf("mirror rows = %d, want 1", mirror.Len())
	}
	got, _ := mirror.Get(7)
	if got.Amount.String() != "250" {
		t.Errorf("mirror amount = %s, want 250", got.Amount)
	}
}

func TestHandleSyncOfDeletedTransactionCleansMirror(t *testing.T) {
	mirror := memory.New()
	reader := &fakeReader{txs: map[int64]core.Transaction{}}
	w := NewLedgerWorker(reader, mirror, mirror, nil)
	ctx := context.Background()

	// The row was mirrored earlier, then deleted locally before this
	// sync event arrived.
	if _, err := mirror.Upsert(ctx, sampleTx(9, "50")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := w.HandleMessage(ctx, amqp.NewLedgerSyncMessage(9, 1)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if mirror.Len() != 0 {
		t.Error("stale mirror row survived sync of a deleted transaction")
	}
}

func TestHandleDelete(t *testing.T) {
	mirror := memory.New()
	reader := &fakeReader{txs: map[int64]core.Transaction{}}
	w := NewLedgerWorker(reader, mirror, mirror, nil)
	ctx := context.Background()

	if _, err := mirror.Upsert(ctx, sampleTx(3, "80")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := w.HandleMessage(ctx, amqp.NewLedgerDeleteMessage(3, 1)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if _, ok := mirror.Get(3); ok {
		t.Error("row still in mirror after delete event")
	}

	// Deleting a never-mirrored id acks cleanly.
	if err := w.HandleMessage(ctx, amqp.NewLedgerDeleteMessage(99, 1)); err != nil {
		t.Errorf("HandleMessage (unknown id) = %v, want nil", err)
	}
}
