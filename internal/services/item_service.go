package services

import (
	"context"
	"fmt"
	"log/slog"

	"obra/internal/amqp"
	"obra/internal/core"
)

// ItemService orchestrates project-item operations: persistence, cascade
// cleanup of attached transactions, and on-demand budget guidance.
type ItemService struct {
	store     Store
	publisher Publisher
	notifier  Notifier
	reports   *ReportService
}

func NewItemService(store Store, publisher Publisher, notifier Notifier, reports *ReportService) *ItemService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &ItemService{
		store:     store,
		publisher: publisher,
		notifier:  notifier,
		reports:   reports,
	}
}

func (s *ItemService) Create(ctx context.Context, item core.ProjectItem) (core.ProjectItem, error) {
	if err := item.Validate(); err != nil {
		return core.ProjectItem{}, err
	}

	created, err := s.store.CreateItem(ctx, item)
	if err != nil {
		return core.ProjectItem{}, fmt.Errorf("create item: %w", err)
	}

	s.invalidate(created.ProjectID)
	return created, nil
}

func (s *ItemService) Get(ctx context.Context, id int64) (core.ProjectItem, error) {
	return s.store.GetItem(ctx, id)
}

func (s *ItemService) List(ctx context.Context, projectID int64) ([]core.ProjectItem, error) {
	return s.store.ListProjectItems(ctx, projectID)
}

func (s *ItemService) Update(ctx context.Context, item core.ProjectItem) (core.ProjectItem, error) {
	if err := item.Validate(); err != nil {
		return core.ProjectItem{}, err
	}

	updated, err := s.store.UpdateItem(ctx, item)
	if err != nil {
		return core.ProjectItem{}, fmt.Errorf("update item: %w", err)
	}

	s.invalidate(updated.ProjectID)
	return updated, nil
}

// Delete soft deletes the item and its attached transactions, then emits
// a ledger delete event for every cascaded transaction so the external
// mirror catches up.
func (s *ItemService) Delete(ctx context.Context, id int64) error {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return err
	}

	cascaded, err := s.store.DeleteItem(ctx, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	for _, txID := range cascaded {
		s.publishDelete(ctx, txID, item.ProjectID)
	}

	s.invalidate(item.ProjectID)
	return nil
}

// Guidance computes budget guidance for the item. excludeTransactionID
// is the transaction being edited, 0 for a new one; its stored value must
// not count against the item while the form is open.
func (s *ItemService) Guidance(ctx context.Context, itemID, excludeTransactionID int64) (core.BudgetGuidance, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return core.BudgetGuidance{}, err
	}

	txs, err := s.store.ListItemTransactions(ctx, itemID)
	if err != nil {
		return core.BudgetGuidance{}, fmt.Errorf("list item transactions: %w", err)
	}

	g := core.ComputeGuidance(item, txs, excludeTransactionID)
	if g.IsOverBudget {
		s.notifier.NotifyOverBudget(ctx, item, g)
	}
	return g, nil
}

func (s *ItemService) publishDelete(ctx context.Context, txID, projectID int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete event", "transaction_id", txID)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerDeleteMessage(txID, projectID)); err != nil {
		// Local delete already committed; the mirror catches up later.
		slog.ErrorContext(ctx, "Failed to publish delete event",
			"transaction_id", txID, "error", err)
	}
}

func (s *ItemService) invalidate(projectID int64) {
	if s.reports != nil {
		s.reports.InvalidateProject(projectID)
	}
}
