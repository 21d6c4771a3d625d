package cli

import (
	"strings"
	"testing"

	"notas/internal/core"
	"notas/internal/view"
)

func TestRenderTable(t *testing.T) {
	out := &strings.Builder{}
	renderTable(out, []core.Record{
		{ID: 1, Date: "2025-01-05", Company: "Acme", Number: "10", Amount: core.Money{Cents: 10050}, Note: "jan"},
	})
	got := out.String()
	if !strings.Contains(got, "Acme") || !strings.Contains(got, "R$ 100.50") {
		t.Fatalf("unexpected table output:\n%s", got)
	}

	out.Reset()
	renderTable(out, nil)
	if !strings.Contains(out.String(), "No records") {
		t.Fatalf("empty table output: %s", out.String())
	}
}

func TestRenderSummaryScope(t *testing.T) {
	out := &strings.Builder{}
	renderSummary(out, view.Summary{Count: 2, Total: core.Money{Cents: 15000}, DayAverage: 1, MonthAverage: 2}, "2025-01")
	got := out.String()
	if !strings.Contains(got, "2025-01") || !strings.Contains(got, "R$ 150.00") {
		t.Fatalf("unexpected summary output:\n%s", got)
	}

	out.Reset()
	renderSummary(out, view.Summary{}, "")
	if !strings.Contains(out.String(), "all months") {
		t.Fatalf("unscoped summary output: %s", out.String())
	}
}

func TestRenderChartScalesToLargestMonth(t *testing.T) {
	out := &strings.Builder{}
	renderChart(out, []view.MonthTotal{
		{Month: "2025-01", Total: core.Money{Cents: 20000}},
		{Month: "2025-02", Total: core.Money{Cents: 10000}},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 bars, got %d:\n%s", len(lines), out.String())
	}
	first := strings.Count(lines[0], "#")
	second := strings.Count(lines[1], "#")
	if first != chartWidth {
		t.Fatalf("largest month should fill the chart: %d", first)
	}
	if second != chartWidth/2 {
		t.Fatalf("half-sized month should be half the width: %d", second)
	}
}
