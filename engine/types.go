/*
Package engine provides the roster-of-care costing and compliance core.

PURPOSE:
  This package contains the domain types and pure algorithms for pricing
  rostered support shifts against an NDIS price list and checking them
  against SCHADS award rules. Rate resolution, day/time classification,
  per-shift costing, compliance flagging, and budget-utilisation reporting
  all live here.

KEY CONCEPTS IN THIS FILE (types.go):
  - LineItem / RateTable: Immutable priced service codes from the price list
  - Shift: A rostered segment with source fields and engine-derived fields
  - CostResult: Tagged pricing outcome - Priced(amount) or Unpriced(reason)
  - ComplianceFlag: Structured award-rule violation
  - Participant / BudgetRollup: Funding plan budgets and their utilisation

DESIGN PRINCIPLES:
  1. Immutability: Reference tables are built once and never patched
  2. Precision: Uses decimal.Decimal to avoid floating-point rounding drift
  3. Purity: Every derived field is a function of source fields plus the
     reference tables - no hidden state, no clock reads
  4. Degradation over failure: data-quality issues (unknown code, malformed
     ratio) resolve to safe defaults and are surfaced, never thrown

USAGE:
  table := engine.NewRateTable(items)
  eng := engine.New(table, calendar)
  if err := eng.Recalculate(&shift); err != nil { ... }

SEE ALSO:
  - calendar.go: Day-type and time-of-day classification
  - cost.go: Duration and cost calculation
  - compliance.go: SCHADS award rule evaluation
  - report.go: Budget rollups and reporting window projection
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CLASSIFICATION ENUMS
// =============================================================================

// Unit describes how a line item is billed.
type Unit string

const (
	UnitPerHour       Unit = "per_hour"
	UnitPerOccurrence Unit = "per_occurrence" // e.g. sleepover allowance
)

// DayType classifies a calendar date for rate selection.
type DayType string

const (
	DayWeekday       DayType = "weekday"
	DaySaturday      DayType = "saturday"
	DaySunday        DayType = "sunday"
	DayPublicHoliday DayType = "public_holiday"
)

// TimeOfDay classifies a shift's time range for rate selection.
type TimeOfDay string

const (
	TimeDay       TimeOfDay = "day"
	TimeEvening   TimeOfDay = "evening"
	TimeOvernight TimeOfDay = "overnight"
)

// Category is the funding bucket a line item bills against. It is resolved
// once when the rate table is built, never re-derived from the code string
// during aggregation.
type Category string

const (
	CategorySIL             Category = "sil"
	CategoryCommunityAccess Category = "community_access"
	CategoryTransport       Category = "transport"
	CategoryOther           Category = "other"
)

// FlagCode identifies an award-compliance rule violation.
type FlagCode string

const (
	FlagShortShift        FlagCode = "SHORT_SHIFT"
	FlagMaxHoursDay       FlagCode = "MAX_HOURS_DAY"
	FlagMaxHoursWeek      FlagCode = "MAX_HOURS_WEEK"
	FlagOvertime          FlagCode = "OVERTIME"
	FlagInsufficientBreak FlagCode = "INSUFFICIENT_BREAK"
)

// =============================================================================
// RATE TABLE - Immutable priced reference data
// =============================================================================

// LineItem is one priced service code from the price list. Prices vary by
// day type, with an optional evening override. A zero PriceEvening means
// "no evening price" and pricing falls back to the weekday column.
type LineItem struct {
	Code        string
	Description string
	Unit        Unit
	Category    Category

	PriceWeekday       decimal.Decimal
	PriceSaturday      decimal.Decimal
	PriceSunday        decimal.Decimal
	PricePublicHoliday decimal.Decimal
	PriceEvening       decimal.Decimal
}

// PriceFor selects the unit price for a day-type / time-of-day pair.
// Evening takes precedence over the day-type column; an absent (zero)
// evening price falls back to the weekday rate.
func (li LineItem) PriceFor(dayType DayType, timeOfDay TimeOfDay) decimal.Decimal {
	if timeOfDay == TimeEvening {
		if li.PriceEvening.IsPositive() {
			return li.PriceEvening
		}
		return li.PriceWeekday
	}
	switch dayType {
	case DayPublicHoliday:
		return li.PricePublicHoliday
	case DaySunday:
		return li.PriceSunday
	case DaySaturday:
		return li.PriceSaturday
	default:
		return li.PriceWeekday
	}
}

// RateTable is the immutable collection of line items. Build it once at
// startup; a price-list update is a wholesale replacement (atomic swap of
// the pointer held by the caller), never an in-place mutation.
type RateTable struct {
	byCode map[string]LineItem
	order  []string
}

// NewRateTable builds a rate table from line items. Later duplicates of a
// code replace earlier ones.
func NewRateTable(items []LineItem) *RateTable {
	t := &RateTable{byCode: make(map[string]LineItem, len(items))}
	for _, li := range items {
		if _, exists := t.byCode[li.Code]; !exists {
			t.order = append(t.order, li.Code)
		}
		t.byCode[li.Code] = li
	}
	return t
}

// Lookup returns the line item for a code.
func (t *RateTable) Lookup(code string) (LineItem, bool) {
	li, ok := t.byCode[code]
	return li, ok
}

// Items returns the line items in insertion order.
func (t *RateTable) Items() []LineItem {
	items := make([]LineItem, 0, len(t.order))
	for _, code := range t.order {
		items = append(items, t.byCode[code])
	}
	return items
}

// CategoryOf resolves the funding category for a line item code.
// Unknown codes bucket as Other.
func (t *RateTable) CategoryOf(code string) Category {
	if li, ok := t.byCode[code]; ok {
		return li.Category
	}
	return CategoryOther
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// Holiday is a public holiday. Date carries no time component.
type Holiday struct {
	Date time.Time
	Name string
}

// HolidayCalendar answers exact-date holiday lookups.
type HolidayCalendar interface {
	IsHoliday(date time.Time) bool
	Holidays() []Holiday
}

type holidayList struct {
	byDate map[time.Time]Holiday
	order  []Holiday
}

// NewHolidayCalendar builds a calendar from a flat holiday list. Dates are
// normalized to midnight so lookups match regardless of time component.
func NewHolidayCalendar(holidays []Holiday) HolidayCalendar {
	c := &holidayList{byDate: make(map[time.Time]Holiday, len(holidays))}
	for _, h := range holidays {
		h.Date = DateOnly(h.Date)
		if _, exists := c.byDate[h.Date]; !exists {
			c.order = append(c.order, h)
		}
		c.byDate[h.Date] = h
	}
	return c
}

func (c *holidayList) IsHoliday(date time.Time) bool {
	_, ok := c.byDate[DateOnly(date)]
	return ok
}

func (c *holidayList) Holidays() []Holiday {
	out := make([]Holiday, len(c.order))
	copy(out, c.order)
	return out
}

// =============================================================================
// COST RESULT - Tagged pricing outcome
// =============================================================================

// CostStatus distinguishes "genuinely priced" from "could not price".
// A shift with an unknown line item code resolves to Unpriced with a zero
// amount rather than failing - the roster entry is never blocked - but the
// zero is visibly distinguishable downstream from legitimate zero spend.
type CostStatus string

const (
	CostPriced   CostStatus = "priced"
	CostUnpriced CostStatus = "unpriced"
)

// CostResult is the outcome of pricing one shift.
type CostResult struct {
	Amount decimal.Decimal
	Status CostStatus
	Reason string // set only when unpriced
}

func Priced(amount decimal.Decimal) CostResult {
	return CostResult{Amount: amount, Status: CostPriced}
}

func Unpriced(reason string) CostResult {
	return CostResult{Amount: decimal.Zero, Status: CostUnpriced, Reason: reason}
}

func (c CostResult) IsPriced() bool { return c.Status == CostPriced }

// =============================================================================
// DOMAIN ENTITIES
// =============================================================================

// Participant holds identity and the three authoritative budget ceilings
// from the participant's funding plan. Budgets are inputs, never derived.
type Participant struct {
	ID         string
	Name       string
	NDISNumber string
	PlanStart  time.Time
	PlanEnd    time.Time

	SILBudget             decimal.Decimal
	CommunityAccessBudget decimal.Decimal
	TransportBudget       decimal.Decimal

	SupportRatio string // default "1:1"
	Property     string
	Notes        string
}

// Shift is one rostered segment. Source fields are set by the scheduler;
// derived fields are a cache recomputed via Engine.Recalculate whenever
// date, times, line item, or ratio change - never an independent source
// of truth.
type Shift struct {
	ID              string
	ParticipantID   string
	ParticipantName string
	Date            time.Time // calendar date, local wall-clock
	StartTime       string    // "HH:MM"
	EndTime         string    // "HH:MM"; end <= start means crossing midnight
	LineItemCode    string
	SupportRatio    string // "N:M", M participants sharing one worker
	StaffName       string
	Notes           string

	// Derived fields (cache)
	Hours     decimal.Decimal
	DayType   DayType
	TimeOfDay TimeOfDay
	Cost      CostResult
	WeekStart time.Time  // Monday of the ISO week containing Date
	Flags     []FlagCode // ordered set, attached by compliance evaluation
}

// ComplianceFlag is a structured award-rule warning. ShiftID is empty for
// worker/week-level flags (MAX_HOURS_WEEK).
type ComplianceFlag struct {
	ShiftID   string
	Date      time.Time
	StaffName string
	Code      FlagCode
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

var (
	sixty   = decimal.NewFromInt(60)
	hundred = decimal.NewFromInt(100)
)

// RoundMoney rounds to 2 decimal places, half up. (decimal.Round rounds
// half away from zero, which is half-up for the non-negative amounts this
// engine deals in.)
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// DateOnly normalizes a timestamp to midnight UTC, keeping the calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
