package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"notas/internal/core"
	"notas/internal/view"
)

const chartWidth = 40

// renderTable writes the filtered record table.
func renderTable(w io.Writer, records []core.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records match the current filters.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCOMPANY\tNUMBER\tAMOUNT\tNOTE")
	for _, rec := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\tR$ %s\t%s\n",
			rec.ID, rec.Date, rec.Company, rec.Number, rec.Amount.String(), rec.Note)
	}
	tw.Flush()
}

// renderSummary writes the month-scoped aggregates.
func renderSummary(w io.Writer, s view.Summary, month string) {
	scope := "all months"
	if month != "" {
		scope = month
	}
	fmt.Fprintf(w, "Summary (%s):\n", scope)
	fmt.Fprintf(w, "  Records:      %d\n", s.Count)
	fmt.Fprintf(w, "  Total:        R$ %s\n", s.Total.String())
	fmt.Fprintf(w, "  Per day:      %.1f\n", s.DayAverage)
	fmt.Fprintf(w, "  Per month:    %.1f\n", s.MonthAverage)
}

// renderChart writes an ASCII bar per month over the full record set.
func renderChart(w io.Writer, totals []view.MonthTotal) {
	if len(totals) == 0 {
		fmt.Fprintln(w, "No records to chart.")
		return
	}

	var max int64
	for _, t := range totals {
		if t.Total.Cents > max {
			max = t.Total.Cents
		}
	}

	for _, t := range totals {
		width := 0
		if max > 0 && t.Total.Cents > 0 {
			width = int((t.Total.Cents*chartWidth + max/2) / max)
			if width == 0 {
				width = 1
			}
		}
		fmt.Fprintf(w, "%s  %-*s R$ %s\n",
			t.Month, chartWidth, strings.Repeat("#", width), t.Total.String())
	}
}
