/*
report.go - Budget rollups and reporting window projection

PURPOSE:
  Rolls priced shifts up into per-participant budget utilisation against
  the three funding categories (SIL, community access, transport), plus a
  weekly breakdown, a compliance-flag frequency table, and grand totals
  for a reporting window.

PURITY:
  Reports are read-side projections: they never write back to shifts or
  participants, and re-running over the same input yields identical
  output. Utilisation is cost/budget only when budget > 0; a zero budget
  reports 0%, never a division by zero.

CATEGORY DISPATCH:
  A shift's funding category comes from the Category tag on its line item,
  resolved once at rate-table build time. Codes outside the three funded
  categories are excluded from the sub-totals but still counted in
  shiftCount and totalCost.

SEE ALSO:
  - types.go: Participant budgets, CostResult
  - compliance.go: Flag frequency source
*/
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROLLUP TYPES
// =============================================================================

// CategoryTotals is cost summed per funding category. Grand includes
// Other-category and unpriced-zero amounts.
type CategoryTotals struct {
	SIL             decimal.Decimal
	CommunityAccess decimal.Decimal
	Transport       decimal.Decimal
	Grand           decimal.Decimal
}

func (t CategoryTotals) add(category Category, amount decimal.Decimal) CategoryTotals {
	switch category {
	case CategorySIL:
		t.SIL = t.SIL.Add(amount)
	case CategoryCommunityAccess:
		t.CommunityAccess = t.CommunityAccess.Add(amount)
	case CategoryTransport:
		t.Transport = t.Transport.Add(amount)
	}
	t.Grand = t.Grand.Add(amount)
	return t
}

// BudgetRollup is one participant's utilisation for a window. Derived
// fresh from shifts and budgets on every call; never stored as truth.
type BudgetRollup struct {
	ParticipantID   string
	ParticipantName string

	SILCost             decimal.Decimal
	CommunityAccessCost decimal.Decimal
	TransportCost       decimal.Decimal
	TotalCost           decimal.Decimal

	SILUtilisationPct             decimal.Decimal
	CommunityAccessUtilisationPct decimal.Decimal
	TransportUtilisationPct       decimal.Decimal

	ShiftCount    int
	UnpricedCount int
}

// WeeklyBreakdown is per-category cost for one ISO week (Monday anchor).
type WeeklyBreakdown struct {
	WeekStart  time.Time
	Totals     CategoryTotals
	ShiftCount int
}

// ReportWindow is an inclusive date range.
type ReportWindow struct {
	From time.Time
	To   time.Time
}

// Contains reports whether a date falls inside the window, inclusive.
func (w ReportWindow) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(w.From)) && !d.After(DateOnly(w.To))
}

// Report is the full read-side projection for one window.
type Report struct {
	Window           ReportWindow
	Participants     []BudgetRollup
	Weekly           []WeeklyBreakdown
	FlagCounts       map[FlagCode]int
	Flags            []ComplianceFlag
	Totals           CategoryTotals
	ParticipantCount int
	ShiftCount       int
	UnpricedCount    int
}

// =============================================================================
// PARTICIPANT SUMMARY
// =============================================================================

// BuildParticipantSummary rolls the given shifts up against one
// participant's budgets. Shifts are assumed recalculated; the caller
// filters them to the participant and window.
func (e *Engine) BuildParticipantSummary(p Participant, shifts []Shift) BudgetRollup {
	r := BudgetRollup{ParticipantID: p.ID, ParticipantName: p.Name}

	for _, s := range shifts {
		r.ShiftCount++
		if !s.Cost.IsPriced() {
			r.UnpricedCount++
		}
		amount := s.Cost.Amount
		r.TotalCost = r.TotalCost.Add(amount)

		switch e.rates.CategoryOf(s.LineItemCode) {
		case CategorySIL:
			r.SILCost = r.SILCost.Add(amount)
		case CategoryCommunityAccess:
			r.CommunityAccessCost = r.CommunityAccessCost.Add(amount)
		case CategoryTransport:
			r.TransportCost = r.TransportCost.Add(amount)
		}
	}

	r.SILUtilisationPct = utilisation(r.SILCost, p.SILBudget)
	r.CommunityAccessUtilisationPct = utilisation(r.CommunityAccessCost, p.CommunityAccessBudget)
	r.TransportUtilisationPct = utilisation(r.TransportCost, p.TransportBudget)
	return r
}

// utilisation is cost/budget as a percentage, 2dp, or zero for a zero
// budget. The degenerate case is correct output, not an error.
func utilisation(cost, budget decimal.Decimal) decimal.Decimal {
	if !budget.IsPositive() {
		return decimal.Zero
	}
	return cost.Div(budget).Mul(hundred).Round(2)
}

// =============================================================================
// REPORT
// =============================================================================

// BuildReport filters shifts to the window and assembles per-participant
// rollups, the weekly breakdown, the flag frequency table, and grand
// totals. Participants keep their input order; weeks sort ascending.
func (e *Engine) BuildReport(participants []Participant, shifts []Shift, window ReportWindow) Report {
	report := Report{
		Window:     window,
		FlagCounts: make(map[FlagCode]int),
	}

	var filtered []Shift
	for _, s := range shifts {
		if window.Contains(s.Date) {
			filtered = append(filtered, s)
		}
	}

	byParticipant := make(map[string][]Shift)
	weeks := make(map[time.Time]*WeeklyBreakdown)
	for _, s := range filtered {
		key := participantKey(s)
		byParticipant[key] = append(byParticipant[key], s)

		report.ShiftCount++
		if !s.Cost.IsPriced() {
			report.UnpricedCount++
		}
		category := e.rates.CategoryOf(s.LineItemCode)
		report.Totals = report.Totals.add(category, s.Cost.Amount)

		week := s.WeekStart
		if week.IsZero() {
			week = WeekStart(s.Date)
		}
		wb, ok := weeks[week]
		if !ok {
			wb = &WeeklyBreakdown{WeekStart: week}
			weeks[week] = wb
		}
		wb.Totals = wb.Totals.add(category, s.Cost.Amount)
		wb.ShiftCount++
	}

	for _, p := range participants {
		matched := byParticipant[p.ID]
		if len(matched) == 0 {
			matched = byParticipant[p.Name]
		}
		report.Participants = append(report.Participants, e.BuildParticipantSummary(p, matched))
	}
	report.ParticipantCount = len(report.Participants)

	for _, wb := range weeks {
		report.Weekly = append(report.Weekly, *wb)
	}
	sort.Slice(report.Weekly, func(i, j int) bool {
		return report.Weekly[i].WeekStart.Before(report.Weekly[j].WeekStart)
	})

	report.Flags = CheckCompliance(filtered)
	for _, f := range report.Flags {
		report.FlagCounts[f.Code]++
	}

	return report
}

// participantKey prefers the id and falls back to the denormalised name.
func participantKey(s Shift) string {
	if s.ParticipantID != "" {
		return s.ParticipantID
	}
	return s.ParticipantName
}

// categoryTotals sums a shift set per category (used by batch calculation).
func (e *Engine) categoryTotals(shifts []Shift) CategoryTotals {
	var totals CategoryTotals
	for _, s := range shifts {
		totals = totals.add(e.rates.CategoryOf(s.LineItemCode), s.Cost.Amount)
	}
	return totals
}
