/*
cost.go - Shift duration and cost calculation

PURPOSE:
  Computes a shift's derived fields from its source fields plus the
  reference tables: wall-clock duration (midnight crossing handled),
  day-type and time-of-day classification, priced cost, and week anchor.

RECOMPUTATION CONTRACT:
  Any shift create/update must go through Engine.Recalculate. Derived
  fields are a cache of pure functions over the source fields - callers
  never set them independently.

DEGRADATION RULES:
  - Unknown line item code: Unpriced(reason), never an error.
  - Malformed or absent support ratio: divisor 1, never an error.
  Structural failures (unparseable date/time) reject the shift before any
  partial result is produced.

SEE ALSO:
  - calendar.go: Classification functions used here
  - compliance.go: Consumes recalculated shifts
*/
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Engine prices shifts against an injected rate table and holiday calendar.
// It carries no mutable state; any number of calls may run concurrently.
// A reference-data reload is a wholesale swap to a new Engine.
type Engine struct {
	rates    *RateTable
	calendar HolidayCalendar
}

// New builds an engine around immutable reference tables.
func New(rates *RateTable, calendar HolidayCalendar) *Engine {
	return &Engine{rates: rates, calendar: calendar}
}

// Rates exposes the rate table for read-side consumers (reports, API).
func (e *Engine) Rates() *RateTable { return e.rates }

// Calendar exposes the holiday calendar.
func (e *Engine) Calendar() HolidayCalendar { return e.calendar }

// =============================================================================
// DURATION
// =============================================================================

// ComputeDuration returns the wall-clock hours between two "HH:MM" times,
// rounded to 2 decimal places half-up. An end at or before the start is
// interpreted as crossing midnight (+24h).
func ComputeDuration(startTime, endTime string) (decimal.Decimal, error) {
	start, err := ParseClock("start_time", startTime)
	if err != nil {
		return decimal.Zero, err
	}
	end, err := ParseClock("end_time", endTime)
	if err != nil {
		return decimal.Zero, err
	}
	if end <= start {
		end += minutesPerDay
	}
	return decimal.NewFromInt(int64(end - start)).Div(sixty).Round(2), nil
}

// =============================================================================
// SUPPORT RATIO
// =============================================================================

// ParseSupportRatio parses "N:M" and returns the divisor M - the number of
// participants sharing one worker. Absent, malformed, or M < 1 defaults to
// 1; a bad ratio is a data-quality issue, never an error.
func ParseSupportRatio(ratio string) int64 {
	parts := strings.Split(ratio, ":")
	if len(parts) != 2 {
		return 1
	}
	m, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil || m < 1 {
		return 1
	}
	return m
}

// =============================================================================
// COST
// =============================================================================

// ComputeCost prices a shift against a known line item. Per-occurrence
// items (sleepovers) ignore hours; per-hour items multiply by hours. The
// result is divided by the support-ratio participant count and rounded to
// 2 decimal places half-up.
func ComputeCost(item LineItem, dayType DayType, timeOfDay TimeOfDay, hours decimal.Decimal, ratio string) decimal.Decimal {
	price := item.PriceFor(dayType, timeOfDay)
	divisor := decimal.NewFromInt(ParseSupportRatio(ratio))

	if item.Unit == UnitPerOccurrence {
		return price.Div(divisor).Round(2)
	}
	return price.Mul(hours).Div(divisor).Round(2)
}

// Price resolves a line item code and prices the shift. An unknown code
// yields Unpriced with a zero amount so the shift is never blocked, while
// downstream aggregation can still tell it apart from genuine zero spend.
func (e *Engine) Price(code string, dayType DayType, timeOfDay TimeOfDay, hours decimal.Decimal, ratio string) CostResult {
	item, ok := e.rates.Lookup(code)
	if !ok {
		return Unpriced(fmt.Sprintf("unknown line item code %q", code))
	}
	return Priced(ComputeCost(item, dayType, timeOfDay, hours, ratio))
}

// =============================================================================
// RECALCULATION
// =============================================================================

// Recalculate recomputes every derived field on the shift from its source
// fields. Compliance flags are cleared; they are attached per evaluation
// scope by CheckCompliance, not per shift.
func (e *Engine) Recalculate(s *Shift) error {
	if s.Date.IsZero() {
		return fmt.Errorf("shift %s: missing date: %w", s.ID, ErrInvalidInput)
	}

	start, err := ParseClock("start_time", s.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseClock("end_time", s.EndTime)
	if err != nil {
		return err
	}

	dayType, err := ClassifyDayType(s.Date, e.calendar)
	if err != nil {
		return err
	}

	hours, err := ComputeDuration(s.StartTime, s.EndTime)
	if err != nil {
		return err
	}

	s.Hours = hours
	s.DayType = dayType
	// Classification uses the raw clock hours; a 22:00-02:00 shift ends at
	// hour 2 and classifies overnight.
	s.TimeOfDay = ClassifyTimeOfDay(start/60, end/60)
	s.Cost = e.Price(s.LineItemCode, s.DayType, s.TimeOfDay, hours, s.SupportRatio)
	s.WeekStart = WeekStart(s.Date)
	s.Flags = nil
	return nil
}

// =============================================================================
// BATCH CALCULATION
// =============================================================================

// BatchError reports one shift in a batch that could not be computed.
type BatchError struct {
	Index   int    `json:"index"`
	ShiftID string `json:"shift_id,omitempty"`
	Message string `json:"message"`
}

// BatchResult is the outcome of a stateless batch calculation: every shift
// that could be computed, per-item errors for those that could not, the
// compliance flags over the computed set, and category totals.
type BatchResult struct {
	Shifts []Shift
	Errors []BatchError
	Flags  []ComplianceFlag
	Totals CategoryTotals
}

// CalculateAll recalculates a batch of shifts, evaluates compliance over
// the successfully computed set, and attaches shift-level flags. One bad
// shift never prevents the rest of the batch from being priced.
func (e *Engine) CalculateAll(shifts []Shift) BatchResult {
	result := BatchResult{Shifts: make([]Shift, 0, len(shifts))}

	for i := range shifts {
		s := shifts[i]
		if err := e.Recalculate(&s); err != nil {
			result.Errors = append(result.Errors, BatchError{Index: i, ShiftID: s.ID, Message: err.Error()})
			continue
		}
		result.Shifts = append(result.Shifts, s)
	}

	result.Flags = CheckCompliance(result.Shifts)
	attachFlags(result.Shifts, result.Flags)
	result.Totals = e.categoryTotals(result.Shifts)
	return result
}

// attachFlags copies shift-level flag codes onto their shifts as an
// ordered set, preserving flag emission order.
func attachFlags(shifts []Shift, flags []ComplianceFlag) {
	byID := make(map[string]*Shift, len(shifts))
	for i := range shifts {
		if shifts[i].ID != "" {
			byID[shifts[i].ID] = &shifts[i]
		}
	}
	for _, f := range flags {
		if f.ShiftID == "" {
			continue
		}
		s, ok := byID[f.ShiftID]
		if !ok {
			continue
		}
		if !containsFlag(s.Flags, f.Code) {
			s.Flags = append(s.Flags, f.Code)
		}
	}
}

func containsFlag(codes []FlagCode, code FlagCode) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
