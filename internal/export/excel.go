package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"obra/internal/report"
)

const sheetName = "Presupuesto"

// WriteExcel renders the grouped report as an XLSX workbook. Numeric
// cells are written as numbers so spreadsheet formulas work on them;
// unknown values stay empty. Each area gets a heading row, a block of
// item rows, and a bold subtotal row.
func WriteExcel(w io.Writer, cols []Column, groups []report.Group, summary []report.SummaryRow) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	row := 1
	for i, c := range cols {
		cell := cellRef(i, row)
		f.SetCellValue(sheetName, cell, c.Label)
		f.SetCellStyle(sheetName, cell, cell, bold)
	}
	row++

	for _, g := range groups {
		area := cellRef(0, row)
		f.SetCellValue(sheetName, area, g.Area)
		f.SetCellStyle(sheetName, area, area, bold)
		row++

		for _, it := range g.Items {
			for i, c := range cols {
				setCell(f, cellRef(i, row), c, it)
			}
			row++
		}

		writeTotalRow(f, cols, row, "Subtotal "+g.Area, g.Totals, bold)
		row++
	}

	grand := report.GrandTotals(groups)
	writeTotalRow(f, cols, row, "Total general", grand, bold)
	row++

	for _, s := range summary {
		label := cellRef(0, row)
		f.SetCellValue(sheetName, label, s.Label)
		f.SetCellStyle(sheetName, label, label, bold)
		for i, c := range cols {
			if i == 0 || c.Key != "actual_cost" {
				continue
			}
			cell := cellRef(i, row)
			f.SetCellValue(sheetName, cell, s.ActualCost.InexactFloat64())
			f.SetCellStyle(sheetName, cell, cell, bold)
		}
		row++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, cell string, c Column, it report.Item) {
	if !c.Numeric {
		f.SetCellValue(sheetName, cell, c.Text(it))
		return
	}
	v := c.Number(it)
	if !v.Valid {
		return
	}
	f.SetCellValue(sheetName, cell, v.Decimal.InexactFloat64())
}

func writeTotalRow(f *excelize.File, cols []Column, row int, label string, t report.Totals, style int) {
	labelCell := cellRef(0, row)
	f.SetCellValue(sheetName, labelCell, label)
	f.SetCellStyle(sheetName, labelCell, labelCell, style)
	for i, c := range cols {
		if i == 0 {
			continue
		}
		v, ok := t.ByColumn(c.Key)
		if !ok {
			continue
		}
		cell := cellRef(i, row)
		f.SetCellValue(sheetName, cell, v.InexactFloat64())
		f.SetCellStyle(sheetName, cell, cell, style)
	}
}

func cellRef(col, row int) string {
	ref, _ := excelize.CoordinatesToCellName(col+1, row)
	return ref
}
