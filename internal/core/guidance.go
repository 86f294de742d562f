package core

import "github.com/shopspring/decimal"

// BudgetGuidance advises the user what to bill the client next for one
// item. Computed on demand from in-memory data; cheap enough to re-run on
// every form change.
type BudgetGuidance struct {
	ItemName      string
	ClientCost    decimal.NullDecimal
	EstimatedCost decimal.NullDecimal
	// TotalExpenses sums the expense-side transactions counted against the
	// item's client budget. Income transactions attached to the item are
	// deliberately ignored here.
	TotalExpenses   decimal.Decimal
	RemainingBudget decimal.NullDecimal
	IsOverBudget    bool
	// RecommendedClientFacingAmount is never negative; null when the
	// client cost is unknown.
	RecommendedClientFacingAmount decimal.NullDecimal
}

// ComputeGuidance derives guidance for item from its transactions.
//
// excludeTransactionID names the transaction currently open for editing,
// so its prior stored value does not count against the item while the
// user is changing it. Pass 0 for a brand-new transaction (nothing to
// exclude). Pure function, O(n) in the transaction count.
func ComputeGuidance(item ProjectItem, transactions []Transaction, excludeTransactionID int64) BudgetGuidance {
	g := BudgetGuidance{
		ItemName:      item.Name,
		ClientCost:    item.ClientCost,
		EstimatedCost: item.EstimatedCost,
	}

	priorExpenses := 0
	for _, tx := range transactions {
		if excludeTransactionID != 0 && tx.ID == excludeTransactionID {
			continue
		}
		if Classify(tx.Amount) != KindExpense || tx.Amount.IsZero() {
			continue
		}
		g.TotalExpenses = g.TotalExpenses.Add(tx.Amount)
		priorExpenses++
	}

	if !item.ClientCost.Valid {
		return g
	}

	remaining := item.ClientCost.Decimal.Sub(g.TotalExpenses)
	g.RemainingBudget = decimal.NullDecimal{Decimal: remaining, Valid: true}
	g.IsOverBudget = remaining.IsNegative()

	// First payment: with no prior expense transactions the recommendation
	// is the full budgeted amount, afterwards it is whatever remains.
	recommended := remaining
	if priorExpenses == 0 {
		recommended = item.ClientCost.Decimal
	}
	if recommended.IsNegative() {
		recommended = decimal.Zero
	}
	g.RecommendedClientFacingAmount = decimal.NullDecimal{Decimal: recommended, Valid: true}

	return g
}
