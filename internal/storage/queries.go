package storage

import (
	"context"
	"database/sql"
)

// DBTX is the subset of *sql.DB and *sql.Tx the queries need, so the same
// query set runs inside and outside transactions.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const createProject = `
INSERT INTO projects (name, client_name)
VALUES (?, ?)
RETURNING id, name, client_name, created_at
`

func (q *Queries) CreateProject(ctx context.Context, name, clientName string) (Project, error) {
	var p Project
	var createdAt string
	err := q.db.QueryRowContext(ctx, createProject, name, clientName).
		Scan(&p.ID, &p.Name, &p.ClientName, &createdAt)
	return p, err
}

const getProject = `
SELECT id, name, client_name
FROM projects
WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) GetProject(ctx context.Context, id int64) (Project, error) {
	var p Project
	err := q.db.QueryRowContext(ctx, getProject, id).Scan(&p.ID, &p.Name, &p.ClientName)
	return p, err
}

const itemColumns = `id, project_id, area, category, name, description, quantity,
	estimated_cost, internal_cost, client_cost, supplier_id, supplier_name`

const createItem = `
INSERT INTO project_items (project_id, area, category, name, description, quantity,
	estimated_cost, internal_cost, client_cost, supplier_id, supplier_name)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + itemColumns

type CreateItemParams struct {
	ProjectID     int64
	Area          string
	Category      string
	Name          string
	Description   string
	Quantity      int64
	EstimatedCost sql.NullString
	InternalCost  sql.NullString
	ClientCost    sql.NullString
	SupplierID    int64
	SupplierName  string
}

func (q *Queries) CreateItem(ctx context.Context, p CreateItemParams) (itemRow, error) {
	return scanItem(q.db.QueryRowContext(ctx, createItem,
		p.ProjectID, p.Area, p.Category, p.Name, p.Description, p.Quantity,
		p.EstimatedCost, p.InternalCost, p.ClientCost, p.SupplierID, p.SupplierName))
}

const getItem = `
SELECT ` + itemColumns + `
FROM project_items
WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) GetItem(ctx context.Context, id int64) (itemRow, error) {
	return scanItem(q.db.QueryRowContext(ctx, getItem, id))
}

const listProjectItems = `
SELECT ` + itemColumns + `
FROM project_items
WHERE project_id = ? AND deleted_at IS NULL
ORDER BY id
`

func (q *Queries) ListProjectItems(ctx context.Context, projectID int64) ([]itemRow, error) {
	rows, err := q.db.QueryContext(ctx, listProjectItems, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []itemRow
	for rows.Next() {
		r, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const updateItem = `
UPDATE project_items
SET area = ?, category = ?, name = ?, description = ?, quantity = ?,
	estimated_cost = ?, internal_cost = ?, client_cost = ?,
	supplier_id = ?, supplier_name = ?, updated_at = datetime('now')
WHERE id = ? AND deleted_at IS NULL
RETURNING ` + itemColumns

type UpdateItemParams struct {
	ID            int64
	Area          string
	Category      string
	Name          string
	Description   string
	Quantity      int64
	EstimatedCost sql.NullString
	InternalCost  sql.NullString
	ClientCost    sql.NullString
	SupplierID    int64
	SupplierName  string
}

func (q *Queries) UpdateItem(ctx context.Context, p UpdateItemParams) (itemRow, error) {
	return scanItem(q.db.QueryRowContext(ctx, updateItem,
		p.Area, p.Category, p.Name, p.Description, p.Quantity,
		p.EstimatedCost, p.InternalCost, p.ClientCost, p.SupplierID, p.SupplierName, p.ID))
}

const softDeleteItem = `
UPDATE project_items
SET deleted_at = datetime('now')
WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) SoftDeleteItem(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, softDeleteItem, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const softDeleteItemTransactions = `
UPDATE transactions
SET deleted_at = datetime('now')
WHERE project_item_id = ? AND deleted_at IS NULL
`

func (q *Queries) SoftDeleteItemTransactions(ctx context.Context, itemID int64) ([]int64, error) {
	// Collect the ids first so the caller can emit delete events per
	// transaction.
	rows, err := q.db.QueryContext(ctx,
		`SELECT id FROM transactions WHERE project_item_id = ? AND deleted_at IS NULL`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := q.db.ExecContext(ctx, softDeleteItemTransactions, itemID); err != nil {
		return nil, err
	}
	return ids, nil
}

const txColumns = `id, project_id, project_item_id, amount, client_facing_amount,
	tx_date, payment_method, description`

const createTransaction = `
INSERT INTO transactions (project_id, project_item_id, amount, client_facing_amount,
	tx_date, payment_method, description)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + txColumns

type CreateTransactionParams struct {
	ProjectID          int64
	ProjectItemID      int64
	Amount             string
	ClientFacingAmount sql.NullString
	TxDate             string
	PaymentMethod      string
	Description        string
}

func (q *Queries) CreateTransaction(ctx context.Context, p CreateTransactionParams) (txRow, error) {
	return scanTx(q.db.QueryRowContext(ctx, createTransaction,
		p.ProjectID, p.ProjectItemID, p.Amount, p.ClientFacingAmount,
		p.TxDate, p.PaymentMethod, p.Description))
}

const getTransaction = `
SELECT ` + txColumns + `
FROM transactions
WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (txRow, error) {
	return scanTx(q.db.QueryRowContext(ctx, getTransaction, id))
}

const listItemTransactions = `
SELECT ` + txColumns + `
FROM transactions
WHERE project_item_id = ? AND deleted_at IS NULL
ORDER BY tx_date, id
`

func (q *Queries) ListItemTransactions(ctx context.Context, itemID int64) ([]txRow, error) {
	return q.listTransactions(ctx, listItemTransactions, itemID)
}

const listProjectTransactions = `
SELECT ` + txColumns + `
FROM transactions
WHERE project_id = ? AND deleted_at IS NULL
ORDER BY tx_date, id
`

func (q *Queries) ListProjectTransactions(ctx context.Context, projectID int64) ([]txRow, error) {
	return q.listTransactions(ctx, listProjectTransactions, projectID)
}

func (q *Queries) listTransactions(ctx context.Context, query string, arg int64) ([]txRow, error) {
	rows, err := q.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []txRow
	for rows.Next() {
		r, err := scanTx(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, r)
	}
	return txs, rows.Err()
}

const updateTransaction = `
UPDATE transactions
SET project_item_id = ?, amount = ?, client_facing_amount = ?, tx_date = ?,
	payment_method = ?, description = ?, updated_at = datetime('now')
WHERE id = ? AND deleted_at IS NULL
RETURNING ` + txColumns

type UpdateTransactionParams struct {
	ID                 int64
	ProjectItemID      int64
	Amount             string
	ClientFacingAmount sql.NullString
	TxDate             string
	PaymentMethod      string
	Description        string
}

func (q *Queries) UpdateTransaction(ctx context.Context, p UpdateTransactionParams) (txRow, error) {
	return scanTx(q.db.QueryRowContext(ctx, updateTransaction,
		p.ProjectItemID, p.Amount, p.ClientFacingAmount, p.TxDate,
		p.PaymentMethod, p.Description, p.ID))
}

const softDeleteTransaction = `
UPDATE transactions
SET deleted_at = datetime('now')
WHERE id = ? AND deleted_at IS NULL
`

func (q *Queries) SoftDeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, softDeleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const loadColumnPreferences = `
SELECT columns FROM column_preferences WHERE project_id = ?
`

func (q *Queries) LoadColumnPreferences(ctx context.Context, projectID int64) (string, error) {
	var columns string
	err := q.db.QueryRowContext(ctx, loadColumnPreferences, projectID).Scan(&columns)
	return columns, err
}

const saveColumnPreferences = `
INSERT INTO column_preferences (project_id, columns)
VALUES (?, ?)
ON CONFLICT(project_id) DO UPDATE SET columns = excluded.columns, updated_at = datetime('now')
`

func (q *Queries) SaveColumnPreferences(ctx context.Context, projectID int64, columns string) error {
	_, err := q.db.ExecContext(ctx, saveColumnPreferences, projectID, columns)
	return err
}

const insertAuditEvent = `
INSERT INTO audit_log (event_id, event_type, entity, entity_id, detail)
VALUES (?, ?, ?, ?, ?)
`

type AuditEventParams struct {
	EventID   string
	EventType string
	Entity    string
	EntityID  int64
	Detail    string
}

func (q *Queries) InsertAuditEvent(ctx context.Context, p AuditEventParams) error {
	_, err := q.db.ExecContext(ctx, insertAuditEvent,
		p.EventID, p.EventType, p.Entity, p.EntityID, p.Detail)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (itemRow, error) {
	var r itemRow
	err := row.Scan(&r.ID, &r.ProjectID, &r.Area, &r.Category, &r.Name, &r.Description,
		&r.Quantity, &r.EstimatedCost, &r.InternalCost, &r.ClientCost,
		&r.SupplierID, &r.SupplierName)
	return r, err
}

func scanTx(row rowScanner) (txRow, error) {
	var r txRow
	err := row.Scan(&r.ID, &r.ProjectID, &r.ProjectItemID, &r.Amount, &r.ClientFacingAmount,
		&r.TxDate, &r.PaymentMethod, &r.Description)
	return r, err
}
