package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// ProjectItem is a cost-bearing line item of a project. The three
	// monetary facets are independent and all per-unit; totals scale by
	// Quantity. A null facet means "unknown", not zero.
	ProjectItem struct {
		ID            int64
		ProjectID     int64
		Area          string // free-text grouping key, empty = no area
		Category      string
		Name          string
		Description   string
		Quantity      int64
		EstimatedCost decimal.NullDecimal
		InternalCost  decimal.NullDecimal
		ClientCost    decimal.NullDecimal
		SupplierID    int64 // 0 = no supplier
		SupplierName  string
	}

	// Transaction is a signed monetary movement. The sign of Amount is the
	// single source of truth for expense-vs-income classification: negative
	// means income (a client payment), positive means an expense paid out.
	Transaction struct {
		ID                 int64
		ProjectID          int64
		ProjectItemID      int64 // 0 = not attached to any item
		Amount             decimal.Decimal
		ClientFacingAmount decimal.NullDecimal
		Date               time.Time
		PaymentMethod      string
		Description        string
	}
)

var (
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrUnknownKind     = errors.New("unknown transaction kind")
	ErrMissingProject  = errors.New("missing project id")
	ErrMissingItemName = errors.New("missing item name")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrZeroDate        = errors.New("date cannot be zero")
)

func (i ProjectItem) Validate() error {
	if i.ProjectID <= 0 {
		return ErrMissingProject
	}
	if strings.TrimSpace(i.Name) == "" {
		return ErrMissingItemName
	}
	if len(i.Name) > 200 {
		return errors.New("item name too long (max 200 characters)")
	}
	if i.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.ProjectID <= 0 {
		return ErrMissingProject
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
