// Package report turns flat per-item report rows into area-grouped data
// with subtotals, grand totals, and the synthetic income/balance rows the
// printed budget shows below the table.
package report

import "github.com/shopspring/decimal"

// NoAreaLabel is the sentinel group for items without an area. It is a
// fixed constant so repeated runs over the same data group identically.
const NoAreaLabel = "Sin área"

// Item is one row of the reporting query: a project item joined with its
// payment totals. Monetary fields are null when unknown; displaying must
// keep them null, summing coerces them to zero (see Totals).
type Item struct {
	ItemID               int64               `json:"item_id"`
	Category             string              `json:"category"`
	Area                 string              `json:"area"`
	Name                 string              `json:"item_name"`
	Description          string              `json:"description"`
	EstimatedCost        decimal.NullDecimal `json:"estimated_cost"`
	InternalCost         decimal.NullDecimal `json:"internal_cost"`
	ActualCost           decimal.NullDecimal `json:"actual_cost"`
	DifferencePercentage decimal.NullDecimal `json:"difference_percentage"`
	AmountPaid           decimal.NullDecimal `json:"amount_paid"`
	InternalAmountPaid   decimal.NullDecimal `json:"internal_amount_paid"`
	PendingToPay         decimal.NullDecimal `json:"pending_to_pay"`
	SupplierID           int64               `json:"supplier_id"`
	SupplierName         string              `json:"supplier_name"`
}

// Totals carries the five summable report columns. Unknown values count
// as zero here and only here.
type Totals struct {
	EstimatedCost      decimal.Decimal `json:"estimated_cost"`
	ActualCost         decimal.Decimal `json:"actual_cost"`
	AmountPaid         decimal.Decimal `json:"amount_paid"`
	InternalAmountPaid decimal.Decimal `json:"internal_amount_paid"`
	PendingToPay       decimal.Decimal `json:"pending_to_pay"`
}

func (t Totals) add(it Item) Totals {
	t.EstimatedCost = t.EstimatedCost.Add(orZero(it.EstimatedCost))
	t.ActualCost = t.ActualCost.Add(orZero(it.ActualCost))
	t.AmountPaid = t.AmountPaid.Add(orZero(it.AmountPaid))
	t.InternalAmountPaid = t.InternalAmountPaid.Add(orZero(it.InternalAmountPaid))
	t.PendingToPay = t.PendingToPay.Add(orZero(it.PendingToPay))
	return t
}

func (t Totals) merge(other Totals) Totals {
	t.EstimatedCost = t.EstimatedCost.Add(other.EstimatedCost)
	t.ActualCost = t.ActualCost.Add(other.ActualCost)
	t.AmountPaid = t.AmountPaid.Add(other.AmountPaid)
	t.InternalAmountPaid = t.InternalAmountPaid.Add(other.InternalAmountPaid)
	t.PendingToPay = t.PendingToPay.Add(other.PendingToPay)
	return t
}

// ByColumn returns the total for a report column key, for renderers that
// address columns by name.
func (t Totals) ByColumn(key string) (decimal.Decimal, bool) {
	switch key {
	case "estimated_cost":
		return t.EstimatedCost, true
	case "actual_cost":
		return t.ActualCost, true
	case "amount_paid":
		return t.AmountPaid, true
	case "internal_amount_paid":
		return t.InternalAmountPaid, true
	case "pending_to_pay":
		return t.PendingToPay, true
	default:
		return decimal.Decimal{}, false
	}
}

func orZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

// Group is the items of one area plus that area's subtotals.
type Group struct {
	Area   string `json:"area"`
	Items  []Item `json:"items"`
	Totals Totals `json:"totals"`
}

// SummaryRow is a synthetic row shown below the grouped table. Only the
// actual-cost column carries a value; a negative value is a display-only
// over/under signal and must not feed back into any total.
type SummaryRow struct {
	Label      string          `json:"label"`
	ActualCost decimal.Decimal `json:"actual_cost"`
}
