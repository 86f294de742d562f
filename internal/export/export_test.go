package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"obra/internal/report"
)

func timeFixture() time.Time {
	return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
}

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func fixtureGroups() []report.Group {
	return report.GroupByArea([]report.Item{
		{
			ItemID:        1,
			Area:          "Cocina",
			Name:          `Campana "extractora"`,
			EstimatedCost: nd("900"),
			ActualCost:    nd("950"),
			AmountPaid:    nd("400"),
			PendingToPay:  nd("550"),
		},
		{
			ItemID:        2,
			Area:          "Sala",
			Name:          "Sofá modular",
			EstimatedCost: nd("600"),
			AmountPaid:    nd("0"),
		},
	})
}

func TestSelectColumns(t *testing.T) {
	t.Run("empty selection falls back to defaults", func(t *testing.T) {
		got := SelectColumns(nil)
		if len(got) != len(DefaultColumns()) {
			t.Errorf("len = %d, want %d", len(got), len(DefaultColumns()))
		}
	})

	t.Run("keeps preference order, drops unknown keys", func(t *testing.T) {
		got := SelectColumns([]string{"actual_cost", "ghost_column", "item_name"})
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].Key != "actual_cost" || got[1].Key != "item_name" {
			t.Errorf("order = [%s %s], want [actual_cost item_name]", got[0].Key, got[1].Key)
		}
	})

	t.Run("fully unknown selection falls back to defaults", func(t *testing.T) {
		got := SelectColumns([]string{"ghost"})
		if len(got) != len(DefaultColumns()) {
			t.Errorf("len = %d, want full default set", len(got))
		}
	})
}

func TestColumnDisplay(t *testing.T) {
	it := report.Item{
		Name:                 "Cortinas",
		ActualCost:           nd("1234.5"),
		DifferencePercentage: nd("12.34"),
	}
	byKey := make(map[string]Column)
	for _, c := range DefaultColumns() {
		byKey[c.Key] = c
	}

	if got := byKey["item_name"].Display(it); got != "Cortinas" {
		t.Errorf("item_name = %q", got)
	}
	if got := byKey["actual_cost"].Display(it); got != "RD$1,234.50" {
		t.Errorf("actual_cost = %q, want money format", got)
	}
	if got := byKey["difference_percentage"].Display(it); got != "12.3%" {
		t.Errorf("difference_percentage = %q, want percent format", got)
	}
	if got := byKey["estimated_cost"].Display(it); got != "—" {
		t.Errorf("unknown estimated_cost = %q, want em dash", got)
	}
	if got := byKey["estimated_cost"].Raw(it); got != "" {
		t.Errorf("raw unknown = %q, want empty", got)
	}
}

func TestWriteCSV(t *testing.T) {
	groups := fixtureGroups()
	grand := report.GrandTotals(groups)
	summary := []report.SummaryRow{
		report.IncomeRow(decimal.RequireFromString("1200")),
		report.BalanceRow(grand, decimal.RequireFromString("1200")),
	}
	cols := SelectColumns([]string{"item_name", "estimated_cost", "actual_cost"})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, cols, groups, summary); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\r\n")
	want := []string{
		`"Partida","Costo estimado","Costo real"`,
		`"Campana ""extractora""",900,950`,
		`"Subtotal Cocina",900,950`,
		`"Sofá modular",600,`,
		`"Subtotal Sala",600,0`,
		`"Total general",1500,950`,
		`"Ingresos recibidos",,-1200`,
		`"Balance pendiente",,-250`,
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWriteExcel(t *testing.T) {
	groups := fixtureGroups()
	var buf bytes.Buffer
	err := WriteExcel(&buf, DefaultColumns(), groups, []report.SummaryRow{
		report.IncomeRow(decimal.Zero),
	})
	if err != nil {
		t.Fatalf("WriteExcel: %v", err)
	}
	// XLSX files are zip archives.
	if buf.Len() == 0 || buf.String()[:2] != "PK" {
		t.Error("output does not look like an xlsx workbook")
	}
}

func TestRenderPrint(t *testing.T) {
	groups := fixtureGroups()
	grand := report.GrandTotals(groups)
	summary := []report.SummaryRow{
		report.BalanceRow(grand, decimal.RequireFromString("2000")),
	}

	var buf bytes.Buffer
	err := RenderPrint(&buf, "Casa Piantini", DefaultColumns(), groups, summary, timeFixture())
	if err != nil {
		t.Fatalf("RenderPrint: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Casa Piantini", "Cocina", "Subtotal Sala", "Total general", "Balance pendiente", "negative"} {
		if !strings.Contains(out, want) {
			t.Errorf("print output missing %q", want)
		}
	}
}
