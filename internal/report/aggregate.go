package report

import "github.com/shopspring/decimal"

// GroupByArea partitions items by area, preserving the order of first
// appearance of each area and the given order of items within an area.
// Items with an empty area land in the NoAreaLabel group. The input is
// never mutated; every returned structure is newly built.
func GroupByArea(items []Item) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, it := range items {
		area := it.Area
		if area == "" {
			area = NoAreaLabel
		}

		i, ok := index[area]
		if !ok {
			i = len(groups)
			index[area] = i
			groups = append(groups, Group{Area: area})
		}

		g := &groups[i]
		g.Items = append(g.Items, it)
		g.Totals = g.Totals.add(it)
	}

	return groups
}

// GrandTotals sums the per-group totals. Addition being associative, the
// result equals summing the ungrouped rows directly.
func GrandTotals(groups []Group) Totals {
	var grand Totals
	for _, g := range groups {
		grand = grand.merge(g.Totals)
	}
	return grand
}

// IncomeRow builds the synthetic row showing money already received. The
// total income is supplied by the caller (the ledger side of the world);
// it is displayed negated, as an offset against cost.
func IncomeRow(totalIncome decimal.Decimal) SummaryRow {
	return SummaryRow{
		Label:      "Ingresos recibidos",
		ActualCost: totalIncome.Neg(),
	}
}

// BalanceRow builds the synthetic closing row: actual cost grand total
// minus income received. Its sign drives a visual over/under indicator
// only.
func BalanceRow(grand Totals, totalIncome decimal.Decimal) SummaryRow {
	return SummaryRow{
		Label:      "Balance pendiente",
		ActualCost: grand.ActualCost.Sub(totalIncome),
	}
}
