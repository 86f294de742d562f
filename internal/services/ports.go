package services

import (
	"context"

	"obra/internal/amqp"
	"obra/internal/core"
	"obra/internal/storage"
)

// Store is the persistence surface the services need. Satisfied by
// *storage.SQLiteRepository; tests use an in-memory fake.
type Store interface {
	GetProject(ctx context.Context, id int64) (storage.Project, error)

	CreateItem(ctx context.Context, item core.ProjectItem) (core.ProjectItem, error)
	GetItem(ctx context.Context, id int64) (core.ProjectItem, error)
	ListProjectItems(ctx context.Context, projectID int64) ([]core.ProjectItem, error)
	UpdateItem(ctx context.Context, item core.ProjectItem) (core.ProjectItem, error)
	DeleteItem(ctx context.Context, id int64) (cascadedTxIDs []int64, err error)

	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListItemTransactions(ctx context.Context, itemID int64) ([]core.Transaction, error)
	ListProjectTransactions(ctx context.Context, projectID int64) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error

	LoadColumnPreferences(ctx context.Context, projectID int64) ([]string, error)
	SaveColumnPreferences(ctx context.Context, projectID int64, keys []string) error
}

// Publisher emits ledger mirror events. Satisfied by *amqp.Client.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerMessage) error
}

// Notifier is told when a guidance run finds an item over budget.
type Notifier interface {
	NotifyOverBudget(ctx context.Context, item core.ProjectItem, g core.BudgetGuidance)
}
