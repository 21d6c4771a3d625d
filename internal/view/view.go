// Package view derives the three client views (table, summary, chart) from
// the full record set and the active filters.
//
// The three views deliberately see three different slices of the data:
//
//   - the table honors both the month filter and the text search;
//   - the summary honors the month filter only, so it keeps answering
//     "how much this month" regardless of what the search highlights;
//   - the chart always covers the full record set.
//
// Compute makes that visibility rule an explicit policy instead of leaving
// it implied by call sites.
package view

import (
	"sort"
	"strings"

	"notas/internal/core"
)

// Filters holds the two client-side predicates. Zero values are inactive:
// an empty Month means "all months", an empty Search matches everything.
type Filters struct {
	Month  string // "YYYY-MM"
	Search string // free text, matched case-insensitively
}

// MatchMonth reports whether the record's date falls in the filtered month.
func (f Filters) MatchMonth(r core.Record) bool {
	return f.Month == "" || strings.HasPrefix(r.Date, f.Month)
}

// MatchSearch reports whether the record matches the search term as a
// case-insensitive substring of company, number or note.
func (f Filters) MatchSearch(r core.Record) bool {
	term := strings.ToLower(f.Search)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Company), term) ||
		strings.Contains(strings.ToLower(r.Number), term) ||
		strings.Contains(strings.ToLower(r.Note), term)
}

// Summary aggregates the month-scoped set.
type Summary struct {
	Count int
	Total core.Money
	// DayAverage is count divided by the number of distinct dates present.
	DayAverage float64
	// MonthAverage is count divided by the number of distinct months present
	// within the month-scoped set. With an active month filter at most one
	// month remains, so the value degenerates toward Count; that literal
	// behavior is intentional.
	MonthAverage float64
}

// MonthTotal is one chart bar: a calendar month and the amount paid in it.
type MonthTotal struct {
	Month string
	Total core.Money
}

// Snapshot is the result of applying the filter policy once.
type Snapshot struct {
	Table   []core.Record
	Summary Summary
	Chart   []MonthTotal
}

// Compute derives all three views from records in a single pass over each
// scope. Records are expected in store order (date descending) and the
// table preserves that order.
func Compute(records []core.Record, f Filters) Snapshot {
	monthScoped := make([]core.Record, 0, len(records))
	for _, r := range records {
		if f.MatchMonth(r) {
			monthScoped = append(monthScoped, r)
		}
	}

	table := make([]core.Record, 0, len(monthScoped))
	for _, r := range monthScoped {
		if f.MatchSearch(r) {
			table = append(table, r)
		}
	}

	return Snapshot{
		Table:   table,
		Summary: summarize(monthScoped),
		Chart:   chart(records),
	}
}

func summarize(scoped []core.Record) Summary {
	s := Summary{Count: len(scoped)}
	days := make(map[string]struct{})
	months := make(map[string]struct{})
	for _, r := range scoped {
		s.Total.Cents += r.Amount.Cents
		days[r.Date] = struct{}{}
		months[r.Month()] = struct{}{}
	}
	if len(days) > 0 {
		s.DayAverage = float64(s.Count) / float64(len(days))
	}
	if len(months) > 0 {
		s.MonthAverage = float64(s.Count) / float64(len(months))
	}
	return s
}

func chart(records []core.Record) []MonthTotal {
	byMonth := make(map[string]int64)
	for _, r := range records {
		byMonth[r.Month()] += r.Amount.Cents
	}
	out := make([]MonthTotal, 0, len(byMonth))
	for m, cents := range byMonth {
		out = append(out, MonthTotal{Month: m, Total: core.Money{Cents: cents}})
	}
	// Lexicographic order is chronological for ISO month keys.
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
