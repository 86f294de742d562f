// Package export renders grouped report data for the outside world: CSV
// downloads, a printable HTML page, and XLSX workbooks. All renderers walk
// the same column registry so a saved column selection applies everywhere.
package export

import (
	"context"

	"github.com/shopspring/decimal"

	"obra/internal/core"
	"obra/internal/report"
)

// Column describes one renderable report column. Numeric columns expose
// the raw decimal through Number; text columns expose Text. Exactly one
// of the two accessors is set.
type Column struct {
	Key     string
	Label   string
	Numeric bool
	Percent bool
	Number  func(report.Item) decimal.NullDecimal
	Text    func(report.Item) string
}

// Display renders the column for human-facing output. Money gets the
// RD$ format, percentages a trailing sign, unknown values an em dash.
func (c Column) Display(it report.Item) string {
	if !c.Numeric {
		return c.Text(it)
	}
	v := c.Number(it)
	if c.Percent {
		if !v.Valid {
			return "—"
		}
		return v.Decimal.StringFixed(1) + "%"
	}
	return core.FormatNullDOP(v)
}

// Raw renders the column for machine-facing output. Numeric values come
// out as plain decimal strings, unknown values as the empty string.
func (c Column) Raw(it report.Item) string {
	if !c.Numeric {
		return c.Text(it)
	}
	v := c.Number(it)
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}

// DefaultColumns returns the full column set in its canonical order.
func DefaultColumns() []Column {
	return []Column{
		{Key: "category", Label: "Categoría", Text: func(it report.Item) string { return it.Category }},
		{Key: "item_name", Label: "Partida", Text: func(it report.Item) string { return it.Name }},
		{Key: "description", Label: "Descripción", Text: func(it report.Item) string { return it.Description }},
		{Key: "supplier_name", Label: "Suplidor", Text: func(it report.Item) string { return it.SupplierName }},
		{Key: "estimated_cost", Label: "Costo estimado", Numeric: true,
			Number: func(it report.Item) decimal.NullDecimal { return it.EstimatedCost }},
		{Key: "internal_cost", Label: "Costo interno", Numeric: true,
			Number: func(it report.Item) decimal.NullDecimal { return it.InternalCost }},
		{Key: "actual_cost", Label: "Costo real", Numeric: true,
			Number: func(it report.Item) decimal.NullDecimal { return it.ActualCost }},
		{Key: "difference_percentage", Label: "Diferencia", Numeric: true, Percent: true,
			Number: func(it report.Item) decimal.NullDecimal { return it.DifferencePercentage }},
		{Key: "amount_paid", Label: "Pagado", Numeric: true,
			Number: func(it report.Item) decimal.NullDecimal { return it.AmountPaid }},
		{Key: "internal_amount_paid", Label: "Pagado interno", Numeric: true,
			Number: func(it report.Item) decimal.NullDecimal { return it.InternalAmountPaid }},
		{Key: "pending_to_pay", Label: "Pendiente por pagar", Numeric: true,
			Number: func(it report.Item) decimal.NullDecimal { return it.PendingToPay }},
	}
}

// SelectColumns resolves saved preference keys against the registry,
// keeping the preference order and dropping keys that no longer exist.
// An empty or fully-unknown selection falls back to the defaults.
func SelectColumns(keys []string) []Column {
	all := DefaultColumns()
	if len(keys) == 0 {
		return all
	}

	byKey := make(map[string]Column, len(all))
	for _, c := range all {
		byKey[c.Key] = c
	}

	var selected []Column
	for _, k := range keys {
		if c, ok := byKey[k]; ok {
			selected = append(selected, c)
		}
	}
	if len(selected) == 0 {
		return all
	}
	return selected
}

// ColumnKeys lists the registry keys in canonical order, for handlers
// that expose the available set.
func ColumnKeys() []string {
	all := DefaultColumns()
	keys := make([]string, len(all))
	for i, c := range all {
		keys[i] = c.Key
	}
	return keys
}

// ValidColumnKey reports whether a key names a registered column.
func ValidColumnKey(key string) bool {
	for _, c := range DefaultColumns() {
		if c.Key == key {
			return true
		}
	}
	return false
}

// PreferenceStore persists per-project column selections.
type PreferenceStore interface {
	LoadColumnPreferences(ctx context.Context, projectID int64) ([]string, error)
	SaveColumnPreferences(ctx context.Context, projectID int64, keys []string) error
}
