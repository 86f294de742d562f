package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"obra/internal/amqp"
	"obra/internal/core"
	"obra/internal/storage"
)

func TestItemCreateValidates(t *testing.T) {
	svc := NewItemService(newFakeStore(), nil, nil, nil)

	_, err := svc.Create(context.Background(), core.ProjectItem{ProjectID: 1, Quantity: 1})
	if !errors.Is(err, core.ErrMissingItemName) {
		t.Errorf("Create error = %v, want ErrMissingItemName", err)
	}

	created, err := svc.Create(context.Background(), core.ProjectItem{
		ProjectID: 1, Name: "Cortinas", Quantity: 1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Error("item not assigned an id")
	}
}

func TestItemDeleteCascadesAndPublishes(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewItemService(store, pub, nil, nil)
	ctx := context.Background()

	item, err := svc.Create(ctx, core.ProjectItem{ProjectID: 1, Name: "Grifería", Quantity: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, amount := range []string{"100", "200"} {
		if _, err := store.CreateTransaction(ctx, core.Transaction{
			ProjectID:     1,
			ProjectItemID: item.ID,
			Amount:        decimal.RequireFromString(amount),
			Date:          time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		}); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	if err := svc.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	msgs := pub.published()
	if len(msgs) != 2 {
		t.Fatalf("published %d events, want one delete per cascaded transaction", len(msgs))
	}
	for _, m := range msgs {
		if m.Type != amqp.TypeLedgerDelete {
			t.Errorf("event type = %q, want %q", m.Type, amqp.TypeLedgerDelete)
		}
	}

	if _, err := svc.Get(ctx, item.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestGuidanceNotifiesWhenOverBudget(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewItemService(store, nil, notifier, nil)
	ctx := context.Background()

	item, err := svc.Create(ctx, core.ProjectItem{
		ProjectID:  1,
		Name:       "Lámparas",
		Quantity:   1,
		ClientCost: nd("100"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.CreateTransaction(ctx, core.Transaction{
		ProjectID:     1,
		ProjectItemID: item.ID,
		Amount:        decimal.RequireFromString("150"),
		Date:          time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	g, err := svc.Guidance(ctx, item.ID, 0)
	if err != nil {
		t.Fatalf("Guidance: %v", err)
	}
	if !g.IsOverBudget {
		t.Fatal("IsOverBudget = false, want true")
	}
	if len(notifier.items) != 1 || notifier.items[0] != item.ID {
		t.Errorf("notifications = %v, want one for item %d", notifier.items, item.ID)
	}
}

func TestGuidanceExcludesEditedTransaction(t *testing.T) {
	store := newFakeStore()
	svc := NewItemService(store, nil, nil, nil)
	ctx := context.Background()

	item, err := svc.Create(ctx, core.ProjectItem{
		ProjectID:  1,
		Name:       "Sofá",
		Quantity:   1,
		ClientCost: nd("1000"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	tx, err := store.CreateTransaction(ctx, core.Transaction{
		ProjectID:     1,
		ProjectItemID: item.ID,
		Amount:        decimal.RequireFromString("600"),
		Date:          time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	g, err := svc.Guidance(ctx, item.ID, tx.ID)
	if err != nil {
		t.Fatalf("Guidance: %v", err)
	}
	if !g.TotalExpenses.IsZero() {
		t.Errorf("TotalExpenses = %s, want 0 while editing the only transaction", g.TotalExpenses)
	}
	if g.RecommendedClientFacingAmount.Decimal.String() != "1000" {
		t.Errorf("Recommended = %v, want full client cost", g.RecommendedClientFacingAmount)
	}
}
