package report

import (
	"testing"

	"github.com/shopspring/decimal"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func fixtureItems() []Item {
	return []Item{
		{
			ItemID:        1,
			Area:          "Cocina",
			Name:          "Topes de granito",
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
			ActualCost:    decimal.NullDecimal{},
			AmountPaid:    nd("0"),
			PendingToPay:  decimal.NullDecimal{},
		},
		{
			ItemID:        3,
			Area:          "Cocina",
			Name:          "Grifería",
			EstimatedCost: decimal.NullDecimal{},
			ActualCost:    nd("120"),
			AmountPaid:    nd("120"),
			PendingToPay:  nd("0"),
		},
		{
			ItemID:     4,
			Area:       "",
			Name:       "Flete general",
			ActualCost: nd("80"),
			AmountPaid: nd("80"),
		},
	}
}

func TestGroupByArea_StablePartition(t *testing.T) {
	groups := GroupByArea(fixtureItems())

	if len(groups) != 3 {
		t.Fatalf("len(groups) = %d, want 3", len(groups))
	}
	wantOrder := []string{"Cocina", "Sala", NoAreaLabel}
	for i, area := range wantOrder {
		if groups[i].Area != area {
			t.Errorf("groups[%d].Area = %q, want %q", i, groups[i].Area, area)
		}
	}

	// Items keep their relative order inside each group.
	cocina := groups[0]
	if len(cocina.Items) != 2 || cocina.Items[0].ItemID != 1 || cocina.Items[1].ItemID != 3 {
		t.Errorf("Cocina items out of order: %+v", cocina.Items)
	}
}

func TestGroupByArea_NullCoercionOnlyInTotals(t *testing.T) {
	groups := GroupByArea(fixtureItems())

	// Item 3 has no estimated cost. It must stay null on the row while the
	// group subtotal counts it as zero.
	cocina := groups[0]
	if cocina.Items[1].EstimatedCost.Valid {
		t.Error("null estimated cost was coerced on the item row")
	}
	if cocina.Totals.EstimatedCost.String() != "900" {
		t.Errorf("Cocina estimated subtotal = %s, want 900", cocina.Totals.EstimatedCost)
	}
	if cocina.Totals.ActualCost.String() != "1070" {
		t.Errorf("Cocina actual subtotal = %s, want 1070", cocina.Totals.ActualCost)
	}
	if cocina.Totals.PendingToPay.String() != "550" {
		t.Errorf("Cocina pending subtotal = %s, want 550", cocina.Totals.PendingToPay)
	}
}

func TestGroupByArea_DoesNotMutateInput(t *testing.T) {
	items := fixtureItems()
	GroupByArea(items)

	if items[3].Area != "" {
		t.Errorf("input area rewritten to %q, want empty", items[3].Area)
	}
	if items[1].ActualCost.Valid {
		t.Error("input null actual cost was overwritten")
	}
}

func TestGroupByArea_Idempotent(t *testing.T) {
	items := fixtureItems()
	first := GroupByArea(items)
	second := GroupByArea(items)

	if len(first) != len(second) {
		t.Fatalf("group counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Area != second[i].Area {
			t.Errorf("group %d area differs: %q vs %q", i, first[i].Area, second[i].Area)
		}
		if !first[i].Totals.ActualCost.Equal(second[i].Totals.ActualCost) {
			t.Errorf("group %d totals differ", i)
		}
	}
}

func TestGrandTotals_EqualFlatSum(t *testing.T) {
	items := fixtureItems()
	grand := GrandTotals(GroupByArea(items))

	var flat Totals
	for _, it := range items {
		flat = flat.add(it)
	}

	if !grand.EstimatedCost.Equal(flat.EstimatedCost) ||
		!grand.ActualCost.Equal(flat.ActualCost) ||
		!grand.AmountPaid.Equal(flat.AmountPaid) ||
		!grand.InternalAmountPaid.Equal(flat.InternalAmountPaid) ||
		!grand.PendingToPay.Equal(flat.PendingToPay) {
		t.Errorf("grand totals %+v differ from flat sum %+v", grand, flat)
	}
	if grand.EstimatedCost.String() != "1500" {
		t.Errorf("grand estimated = %s, want 1500", grand.EstimatedCost)
	}
	if grand.ActualCost.String() != "1150" {
		t.Errorf("grand actual = %s, want 1150", grand.ActualCost)
	}
}

func TestSummaryRows(t *testing.T) {
	grand := GrandTotals(GroupByArea(fixtureItems()))
	income := decimal.RequireFromString("1200")

	ingresos := IncomeRow(income)
	if ingresos.ActualCost.String() != "-1200" {
		t.Errorf("income row = %s, want -1200", ingresos.ActualCost)
	}

	balance := BalanceRow(grand, income)
	if balance.ActualCost.String() != "-50" {
		t.Errorf("balance row = %s, want -50 (actual 1150 minus income 1200)", balance.ActualCost)
	}

	// The synthetic rows never feed back into the totals.
	if grand.ActualCost.String() != "1150" {
		t.Errorf("grand actual changed to %s", grand.ActualCost)
	}
}

func TestTotalsByColumn(t *testing.T) {
	grand := GrandTotals(GroupByArea(fixtureItems()))

	if v, ok := grand.ByColumn("amount_paid"); !ok || v.String() != "600" {
		t.Errorf("ByColumn(amount_paid) = %s, %v; want 600, true", v, ok)
	}
	if _, ok := grand.ByColumn("supplier_name"); ok {
		t.Error("ByColumn(supplier_name) = true, want false for non-summable column")
	}
}
