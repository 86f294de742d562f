package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"obra/internal/cache"
	"obra/internal/core"
	"obra/internal/export"
	"obra/internal/report"
)

// ProjectReport is a fully aggregated budget report for one project.
type ProjectReport struct {
	ProjectID   int64               `json:"project_id"`
	ProjectName string              `json:"project_name"`
	Groups      []report.Group      `json:"groups"`
	GrandTotals report.Totals       `json:"grand_totals"`
	TotalIncome decimal.Decimal     `json:"total_income"`
	Summary     []report.SummaryRow `json:"summary"`
}

// ReportService builds project reports and drives the export surfaces.
// Built reports are cached per project and invalidated on every write.
type ReportService struct {
	store Store
	cache *cache.LRUCache[ProjectReport]
	now   func() time.Time
}

func NewReportService(store Store, cacheSize int, cacheTTL time.Duration) *ReportService {
	return &ReportService{
		store: store,
		cache: cache.NewLRUCache[ProjectReport](cacheSize, cacheTTL),
		now:   time.Now,
	}
}

// Build aggregates the project's items and transactions into grouped
// report data with grand totals and the income/balance summary rows.
func (s *ReportService) Build(ctx context.Context, projectID int64) (ProjectReport, error) {
	key := strconv.FormatInt(projectID, 10)
	if cached, ok := s.cache.Get(key); ok {
		slog.DebugContext(ctx, "Report served from cache", "project_id", projectID)
		return cached, nil
	}

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return ProjectReport{}, err
	}

	items, err := s.store.ListProjectItems(ctx, projectID)
	if err != nil {
		return ProjectReport{}, fmt.Errorf("list project items: %w", err)
	}

	txs, err := s.store.ListProjectTransactions(ctx, projectID)
	if err != nil {
		return ProjectReport{}, fmt.Errorf("list project transactions: %w", err)
	}

	rows := BuildRows(items, txs)
	groups := report.GroupByArea(rows)
	grand := report.GrandTotals(groups)
	income := TotalIncome(txs)

	built := ProjectReport{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Groups:      groups,
		GrandTotals: grand,
		TotalIncome: income,
		Summary: []report.SummaryRow{
			report.IncomeRow(income),
			report.BalanceRow(grand, income),
		},
	}

	s.cache.Set(key, built)
	return built, nil
}

// InvalidateProject drops the cached report after a write.
func (s *ReportService) InvalidateProject(projectID int64) {
	s.cache.Delete(strconv.FormatInt(projectID, 10))
}

// BuildRows derives one report row per item from the raw ledger. All
// arithmetic is exact decimal; unknown costs stay null on the row.
func BuildRows(items []core.ProjectItem, txs []core.Transaction) []report.Item {
	paidByItem := make(map[int64]decimal.Decimal)
	internalByItem := make(map[int64]decimal.Decimal)
	for _, t := range txs {
		if core.Classify(t.Amount) != core.KindExpense || t.ProjectItemID == 0 {
			continue
		}
		internalByItem[t.ProjectItemID] = internalByItem[t.ProjectItemID].Add(t.Amount)
		if t.ClientFacingAmount.Valid {
			paidByItem[t.ProjectItemID] = paidByItem[t.ProjectItemID].Add(t.ClientFacingAmount.Decimal)
		}
	}

	rows := make([]report.Item, len(items))
	for i, item := range items {
		estimated := core.LineTotal(item.EstimatedCost, item.Quantity)
		internal := core.LineTotal(item.InternalCost, item.Quantity)
		actual := core.LineTotal(item.ClientCost, item.Quantity)

		// Payments are known facts, so the paid columns are zero, not
		// null, when nothing is recorded yet.
		amountPaid := decimal.NewNullDecimal(paidByItem[item.ID])
		internalPaid := decimal.NewNullDecimal(internalByItem[item.ID])

		rows[i] = report.Item{
			ItemID:               item.ID,
			Category:             item.Category,
			Area:                 item.Area,
			Name:                 item.Name,
			Description:          item.Description,
			EstimatedCost:        estimated,
			InternalCost:         internal,
			ActualCost:           actual,
			DifferencePercentage: differencePercentage(internal, estimated),
			AmountPaid:           amountPaid,
			InternalAmountPaid:   internalPaid,
			PendingToPay:         pendingToPay(actual, amountPaid.Decimal),
			SupplierID:           item.SupplierID,
			SupplierName:         item.SupplierName,
		}
	}
	return rows
}

// TotalIncome sums income-classified transactions project-wide and
// reports the magnitude as a positive number.
func TotalIncome(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if core.Classify(t.Amount) == core.KindIncome {
			total = total.Add(t.Amount.Neg())
		}
	}
	return total
}

// pendingToPay is the client line total minus payments, floored at zero.
// Unknown client cost means the outstanding balance is unknowable.
func pendingToPay(clientLineTotal decimal.NullDecimal, amountPaid decimal.Decimal) decimal.NullDecimal {
	if !clientLineTotal.Valid {
		return decimal.NullDecimal{}
	}
	pending := clientLineTotal.Decimal.Sub(amountPaid)
	if pending.IsNegative() {
		pending = decimal.Zero
	}
	return decimal.NewNullDecimal(pending)
}

func differencePercentage(internal, estimated decimal.NullDecimal) decimal.NullDecimal {
	if !internal.Valid || !estimated.Valid || estimated.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	diff := internal.Decimal.Sub(estimated.Decimal).
		Div(estimated.Decimal).
		Mul(decimal.NewFromInt(100))
	return decimal.NewNullDecimal(diff)
}

// Columns resolves the project's saved column selection against the
// registry, falling back to the defaults.
func (s *ReportService) Columns(ctx context.Context, projectID int64) ([]export.Column, error) {
	keys, err := s.store.LoadColumnPreferences(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return export.SelectColumns(keys), nil
}

// SaveColumns persists a column selection, rejecting unknown keys.
func (s *ReportService) SaveColumns(ctx context.Context, projectID int64, keys []string) error {
	for _, k := range keys {
		if !export.ValidColumnKey(k) {
			return fmt.Errorf("unknown column key %q", k)
		}
	}
	return s.store.SaveColumnPreferences(ctx, projectID, keys)
}

func (s *ReportService) ExportCSV(ctx context.Context, projectID int64, w io.Writer) error {
	built, cols, err := s.buildWithColumns(ctx, projectID)
	if err != nil {
		return err
	}
	return export.WriteCSV(w, cols, built.Groups, built.Summary)
}

func (s *ReportService) ExportExcel(ctx context.Context, projectID int64, w io.Writer) error {
	built, cols, err := s.buildWithColumns(ctx, projectID)
	if err != nil {
		return err
	}
	return export.WriteExcel(w, cols, built.Groups, built.Summary)
}

func (s *ReportService) RenderPrint(ctx context.Context, projectID int64, w io.Writer) error {
	built, cols, err := s.buildWithColumns(ctx, projectID)
	if err != nil {
		return err
	}
	return export.RenderPrint(w, built.ProjectName, cols, built.Groups, built.Summary, s.now())
}

func (s *ReportService) buildWithColumns(ctx context.Context, projectID int64) (ProjectReport, []export.Column, error) {
	built, err := s.Build(ctx, projectID)
	if err != nil {
		return ProjectReport{}, nil, err
	}
	cols, err := s.Columns(ctx, projectID)
	if err != nil {
		return ProjectReport{}, nil, err
	}
	return built, cols, nil
}
