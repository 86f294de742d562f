package export

import (
	"io"
	"strings"

	"obra/internal/report"
)

// WriteCSV streams the grouped report as CSV. Text cells are always
// quoted, numeric cells are written as raw decimal strings so spreadsheet
// imports keep them numeric. Each group is followed by a subtotal row and
// the file closes with a grand-total row and the summary rows.
func WriteCSV(w io.Writer, cols []Column, groups []report.Group, summary []report.SummaryRow) error {
	cw := &csvWriter{w: w}

	header := make([]cell, len(cols))
	for i, c := range cols {
		header[i] = textCell(c.Label)
	}
	cw.row(header)

	for _, g := range groups {
		for _, it := range g.Items {
			cells := make([]cell, len(cols))
			for i, c := range cols {
				if c.Numeric {
					cells[i] = rawCell(c.Raw(it))
				} else {
					cells[i] = textCell(c.Raw(it))
				}
			}
			cw.row(cells)
		}
		cw.row(totalRow(cols, "Subtotal "+g.Area, g.Totals))
	}

	grand := report.GrandTotals(groups)
	cw.row(totalRow(cols, "Total general", grand))

	for _, s := range summary {
		cells := make([]cell, len(cols))
		cells[0] = textCell(s.Label)
		for i, c := range cols {
			if i == 0 {
				continue
			}
			if c.Key == "actual_cost" {
				cells[i] = rawCell(s.ActualCost.String())
			} else {
				cells[i] = rawCell("")
			}
		}
		cw.row(cells)
	}

	return cw.err
}

// totalRow labels the first column and fills summable columns from the
// totals; everything else stays empty.
func totalRow(cols []Column, label string, t report.Totals) []cell {
	cells := make([]cell, len(cols))
	cells[0] = textCell(label)
	for i, c := range cols {
		if i == 0 {
			continue
		}
		if v, ok := t.ByColumn(c.Key); ok {
			cells[i] = rawCell(v.String())
		} else {
			cells[i] = rawCell("")
		}
	}
	return cells
}

type cell struct {
	value  string
	quoted bool
}

func textCell(s string) cell { return cell{value: s, quoted: true} }
func rawCell(s string) cell  { return cell{value: s} }

type csvWriter struct {
	w   io.Writer
	err error
}

func (cw *csvWriter) row(cells []cell) {
	if cw.err != nil {
		return
	}
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		if c.quoted {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(c.value, `"`, `""`))
			b.WriteByte('"')
		} else {
			b.WriteString(c.value)
		}
	}
	b.WriteString("\r\n")
	_, cw.err = io.WriteString(cw.w, b.String())
}
