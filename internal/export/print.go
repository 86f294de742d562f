package export

import (
	"html/template"
	"io"
	"time"

	"obra/internal/core"
	"obra/internal/report"
	"obra/web"
)

// PrintRow is one pre-rendered table row for the print template. Cells
// are already formatted strings so the template stays a dumb renderer.
type PrintRow struct {
	Label    string
	Cells    []string
	Subtotal bool
	Negative bool
}

// PrintData is everything the printable report page needs.
type PrintData struct {
	ProjectName string
	GeneratedAt string
	Headers     []string
	Groups      []PrintGroup
	GrandTotal  PrintRow
	Summary     []PrintRow
}

// PrintGroup is one area section of the printable table.
type PrintGroup struct {
	Area string
	Rows []PrintRow
}

var printTmpl = template.Must(template.ParseFS(web.TemplatesFS, "templates/report_print.html"))

// RenderPrint writes the printable HTML report. Unknown values render as
// an em dash, money in the RD$ format, and the summary rows mark negative
// balances so the page can color them.
func RenderPrint(w io.Writer, projectName string, cols []Column, groups []report.Group, summary []report.SummaryRow, now time.Time) error {
	data := PrintData{
		ProjectName: projectName,
		GeneratedAt: now.Format("02/01/2006 15:04"),
	}
	for _, c := range cols {
		data.Headers = append(data.Headers, c.Label)
	}

	for _, g := range groups {
		pg := PrintGroup{Area: g.Area}
		for _, it := range g.Items {
			row := PrintRow{Cells: make([]string, len(cols))}
			for i, c := range cols {
				row.Cells[i] = c.Display(it)
			}
			pg.Rows = append(pg.Rows, row)
		}
		pg.Rows = append(pg.Rows, displayTotalRow(cols, "Subtotal "+g.Area, g.Totals))
		pg.Rows[len(pg.Rows)-1].Subtotal = true
		data.Groups = append(data.Groups, pg)
	}

	grand := report.GrandTotals(groups)
	data.GrandTotal = displayTotalRow(cols, "Total general", grand)
	data.GrandTotal.Subtotal = true

	for _, s := range summary {
		row := PrintRow{
			Label:    s.Label,
			Cells:    make([]string, len(cols)),
			Negative: s.ActualCost.IsNegative(),
		}
		for i, c := range cols {
			if c.Key == "actual_cost" {
				row.Cells[i] = core.FormatDOP(s.ActualCost)
			}
		}
		data.Summary = append(data.Summary, row)
	}

	return printTmpl.ExecuteTemplate(w, "report_print", data)
}

func displayTotalRow(cols []Column, label string, t report.Totals) PrintRow {
	row := PrintRow{Label: label, Cells: make([]string, len(cols))}
	for i, c := range cols {
		if i == 0 {
			row.Cells[i] = label
			continue
		}
		if v, ok := t.ByColumn(c.Key); ok {
			row.Cells[i] = core.FormatDOP(v)
		}
	}
	return row
}
