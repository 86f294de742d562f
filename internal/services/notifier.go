package services

import (
	"context"
	"log/slog"

	"obra/internal/core"
)

// LogNotifier reports budget overruns through the structured log. It is
// the default Notifier; alerting integrations implement the same
// interface.
type LogNotifier struct{}

func (LogNotifier) NotifyOverBudget(ctx context.Context, item core.ProjectItem, g core.BudgetGuidance) {
	slog.WarnContext(ctx, "Item over budget",
		"item_id", item.ID,
		"project_id", item.ProjectID,
		"item_name", item.Name,
		"total_expenses", g.TotalExpenses.String(),
		"remaining_budget", g.RemainingBudget.Decimal.String())
}
