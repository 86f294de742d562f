package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"obra/internal/core"
)

// Project is a stored design/construction project.
type Project struct {
	ID         int64
	Name       string
	ClientName string
	CreatedAt  time.Time
}

const dateLayout = "2006-01-02"

// itemRow mirrors the project_items table. Monetary columns are decimal
// strings, null when the value is not yet known.
type itemRow struct {
	ID            int64
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

func (r itemRow) toDomain() (core.ProjectItem, error) {
	item := core.ProjectItem{
		ID:           r.ID,
		ProjectID:    r.ProjectID,
		Area:         r.Area,
		Category:     r.Category,
		Name:         r.Name,
		Description:  r.Description,
		Quantity:     r.Quantity,
		SupplierID:   r.SupplierID,
		SupplierName: r.SupplierName,
	}
	var err error
	if item.EstimatedCost, err = parseNullDecimal(r.EstimatedCost); err != nil {
		return item, fmt.Errorf("item %d estimated_cost: %w", r.ID, err)
	}
	if item.InternalCost, err = parseNullDecimal(r.InternalCost); err != nil {
		return item, fmt.Errorf("item %d internal_cost: %w", r.ID, err)
	}
	if item.ClientCost, err = parseNullDecimal(r.ClientCost); err != nil {
		return item, fmt.Errorf("item %d client_cost: %w", r.ID, err)
	}
	return item, nil
}

// txRow mirrors the transactions table.
type txRow struct {
	ID                 int64
	ProjectID          int64
	ProjectItemID      int64
	Amount             string
	ClientFacingAmount sql.NullString
	TxDate             string
	PaymentMethod      string
	Description        string
}

func (r txRow) toDomain() (core.Transaction, error) {
	tx := core.Transaction{
		ID:            r.ID,
		ProjectID:     r.ProjectID,
		ProjectItemID: r.ProjectItemID,
		PaymentMethod: r.PaymentMethod,
		Description:   r.Description,
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return tx, fmt.Errorf("transaction %d amount: %w", r.ID, err)
	}
	tx.Amount = amount
	if tx.ClientFacingAmount, err = parseNullDecimal(r.ClientFacingAmount); err != nil {
		return tx, fmt.Errorf("transaction %d client_facing_amount: %w", r.ID, err)
	}
	date, err := time.Parse(dateLayout, r.TxDate)
	if err != nil {
		return tx, fmt.Errorf("transaction %d tx_date: %w", r.ID, err)
	}
	tx.Date = date
	return tx, nil
}

func parseNullDecimal(s sql.NullString) (decimal.NullDecimal, error) {
	if !s.Valid {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func nullDecimalString(d decimal.NullDecimal) sql.NullString {
	if !d.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Decimal.String(), Valid: true}
}
