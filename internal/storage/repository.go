package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"obra/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when the requested row does not exist or was
// soft deleted.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

// Ping verifies the database connection is alive.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, name, clientName string) (Project, error) {
	p, err := r.queries.CreateProject(ctx, name, clientName)
	if err != nil {
		return Project{}, fmt.Errorf("create project: %w", err)
	}
	slog.InfoContext(ctx, "Project created", "id", p.ID, "name", p.Name)
	return p, nil
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id int64) (Project, error) {
	p, err := r.queries.GetProject(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) CreateItem(ctx context.Context, item core.ProjectItem) (core.ProjectItem, error) {
	row, err := r.queries.CreateItem(ctx, CreateItemParams{
		ProjectID:     item.ProjectID,
		Area:          item.Area,
		Category:      item.Category,
		Name:          item.Name,
		Description:   item.Description,
		Quantity:      item.Quantity,
		EstimatedCost: nullDecimalString(item.EstimatedCost),
		InternalCost:  nullDecimalString(item.InternalCost),
		ClientCost:    nullDecimalString(item.ClientCost),
		SupplierID:    item.SupplierID,
		SupplierName:  item.SupplierName,
	})
	if err != nil {
		return core.ProjectItem{}, fmt.Errorf("create item: %w", err)
	}

	created, err := row.toDomain()
	if err != nil {
		return core.ProjectItem{}, err
	}
	slog.InfoContext(ctx, "Project item created",
		"id", created.ID, "project_id", created.ProjectID, "name", created.Name)
	return created, nil
}

func (r *SQLiteRepository) GetItem(ctx context.Context, id int64) (core.ProjectItem, error) {
	row, err := r.queries.GetItem(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ProjectItem{}, ErrNotFound
	}
	if err != nil {
		return core.ProjectItem{}, fmt.Errorf("get item: %w", err)
	}
	return row.toDomain()
}

func (r *SQLiteRepository) ListProjectItems(ctx context.Context, projectID int64) ([]core.ProjectItem, error) {
	rows, err := r.queries.ListProjectItems(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project items: %w", err)
	}
	items := make([]core.ProjectItem, len(rows))
	for i, row := range rows {
		if items[i], err = row.toDomain(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *SQLiteRepository) UpdateItem(ctx context.Context, item core.ProjectItem) (core.ProjectItem, error) {
	row, err := r.queries.UpdateItem(ctx, UpdateItemParams{
		ID:            item.ID,
		Area:          item.Area,
		Category:      item.Category,
		Name:          item.Name,
		Description:   item.Description,
		Quantity:      item.Quantity,
		EstimatedCost: nullDecimalString(item.EstimatedCost),
		InternalCost:  nullDecimalString(item.InternalCost),
		ClientCost:    nullDecimalString(item.ClientCost),
		SupplierID:    item.SupplierID,
		SupplierName:  item.SupplierName,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.ProjectItem{}, ErrNotFound
	}
	if err != nil {
		return core.ProjectItem{}, fmt.Errorf("update item: %w", err)
	}
	return row.toDomain()
}

// DeleteItem soft deletes an item and its attached transactions in one
// database transaction. The ids of the cascaded transactions come back so
// the caller can emit a delete event for each.
func (r *SQLiteRepository) DeleteItem(ctx context.Context, id int64) ([]int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin delete item: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	affected, err := q.SoftDeleteItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete item: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	txIDs, err := q.SoftDeleteItemTransactions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete item transactions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete item: %w", err)
	}

	slog.InfoContext(ctx, "Project item deleted", "id", id, "cascaded_transactions", len(txIDs))
	return txIDs, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		ProjectID:          t.ProjectID,
		ProjectItemID:      t.ProjectItemID,
		Amount:             t.Amount.String(),
		ClientFacingAmount: nullDecimalString(t.ClientFacingAmount),
		TxDate:             t.Date.Format(dateLayout),
		PaymentMethod:      t.PaymentMethod,
		Description:        t.Description,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	created, err := row.toDomain()
	if err != nil {
		return core.Transaction{}, err
	}
	slog.InfoContext(ctx, "Transaction saved",
		"id", created.ID, "project_id", created.ProjectID,
		"item_id", created.ProjectItemID, "amount", created.Amount.String())
	return created, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return row.toDomain()
}

func (r *SQLiteRepository) ListItemTransactions(ctx context.Context, itemID int64) ([]core.Transaction, error) {
	rows, err := r.queries.ListItemTransactions(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("list item transactions: %w", err)
	}
	return txRowsToDomain(rows)
}

func (r *SQLiteRepository) ListProjectTransactions(ctx context.Context, projectID int64) ([]core.Transaction, error) {
	rows, err := r.queries.ListProjectTransactions(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project transactions: %w", err)
	}
	return txRowsToDomain(rows)
}

func txRowsToDomain(rows []txRow) ([]core.Transaction, error) {
	txs := make([]core.Transaction, len(rows))
	var err error
	for i, row := range rows {
		if txs[i], err = row.toDomain(); err != nil {
			return nil, err
		}
	}
	return txs, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		ID:                 t.ID,
		ProjectItemID:      t.ProjectItemID,
		Amount:             t.Amount.String(),
		ClientFacingAmount: nullDecimalString(t.ClientFacingAmount),
		TxDate:             t.Date.Format(dateLayout),
		PaymentMethod:      t.PaymentMethod,
		Description:        t.Description,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return row.toDomain()
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	affected, err := r.queries.SoftDeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// LoadColumnPreferences implements export.PreferenceStore. A project with
// no saved selection gets nil, which selects the default column set.
func (r *SQLiteRepository) LoadColumnPreferences(ctx context.Context, projectID int64) ([]string, error) {
	raw, err := r.queries.LoadColumnPreferences(ctx, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load column preferences: %w", err)
	}

	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, fmt.Errorf("decode column preferences: %w", err)
	}
	return keys, nil
}

// SaveColumnPreferences implements export.PreferenceStore.
func (r *SQLiteRepository) SaveColumnPreferences(ctx context.Context, projectID int64, keys []string) error {
	raw, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("encode column preferences: %w", err)
	}
	if err := r.queries.SaveColumnPreferences(ctx, projectID, string(raw)); err != nil {
		return fmt.Errorf("save column preferences: %w", err)
	}
	slog.InfoContext(ctx, "Column preferences saved", "project_id", projectID, "columns", len(keys))
	return nil
}

// RecordAuditEvent appends one row to the audit log. Failures are logged
// but never bubble up; auditing must not break the operation it records.
func (r *SQLiteRepository) RecordAuditEvent(ctx context.Context, p AuditEventParams) {
	if err := r.queries.InsertAuditEvent(ctx, p); err != nil {
		slog.ErrorContext(ctx, "Failed to record audit event",
			"event_id", p.EventID, "event_type", p.EventType, "error", err)
	}
}
