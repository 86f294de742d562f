package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"obra/internal/amqp"
	"obra/internal/core"
)

// TransactionInput is a ledger entry as the user typed it: a kind plus a
// non-negative magnitude. The sign convention is applied here, at the
// boundary, before anything is stored.
type TransactionInput struct {
	ProjectID          int64
	ProjectItemID      int64
	Kind               core.TransactionKind
	Amount             decimal.Decimal
	ClientFacingAmount decimal.NullDecimal
	Date               time.Time
	PaymentMethod      string
	Description        string
}

// TransactionService orchestrates ledger writes across SQLite and AMQP.
// Local commit comes first; mirror events are fire-and-forget.
type TransactionService struct {
	store     Store
	publisher Publisher
	reports   *ReportService
}

func NewTransactionService(store Store, publisher Publisher, reports *ReportService) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		reports:   reports,
	}
}

func (s *TransactionService) Create(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	tx, err := s.toStored(in, 0)
	if err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishSync(ctx, created.ID, created.ProjectID)
	s.invalidate(created.ProjectID)
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *TransactionService) ListProject(ctx context.Context, projectID int64) ([]core.Transaction, error) {
	return s.store.ListProjectTransactions(ctx, projectID)
}

func (s *TransactionService) Update(ctx context.Context, id int64, in TransactionInput) (core.Transaction, error) {
	tx, err := s.toStored(in, id)
	if err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.publishSync(ctx, updated.ID, updated.ProjectID)
	s.invalidate(updated.ProjectID)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publishDelete(ctx, id, tx.ProjectID)
	s.invalidate(tx.ProjectID)
	return nil
}

// toStored applies the ledger rules: the kind resolves into the sign of
// the stored amount, and income transactions get a client-facing amount
// equal to the stored amount.
func (s *TransactionService) toStored(in TransactionInput, id int64) (core.Transaction, error) {
	stored, err := core.ToStoredAmount(in.Kind, in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		ID:                 id,
		ProjectID:          in.ProjectID,
		ProjectItemID:      in.ProjectItemID,
		Amount:             stored,
		ClientFacingAmount: core.ToStoredClientFacingAmount(in.Kind, stored, in.ClientFacingAmount),
		Date:               in.Date,
		PaymentMethod:      in.PaymentMethod,
		Description:        in.Description,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *TransactionService) publishSync(ctx context.Context, txID, projectID int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync event", "transaction_id", txID)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerSyncMessage(txID, projectID)); err != nil {
		// The transaction is committed locally; the mirror catches up later.
		slog.ErrorContext(ctx, "Failed to publish sync event",
			"transaction_id", txID, "error", err)
	}
}

func (s *TransactionService) publishDelete(ctx context.Context, txID, projectID int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete event", "transaction_id", txID)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerDeleteMessage(txID, projectID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete event",
			"transaction_id", txID, "error", err)
	}
}

func (s *TransactionService) invalidate(projectID int64) {
	if s.reports != nil {
		s.reports.InvalidateProject(projectID)
	}
}
