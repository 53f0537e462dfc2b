package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/roster-engine/engine"
)

// =============================================================================
// FIXTURES
// =============================================================================

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testTable() *engine.RateTable {
	return engine.NewRateTable([]engine.LineItem{
		{
			Code:               "SIL_STD",
			Description:        "SIL standard support",
			Unit:               engine.UnitPerHour,
			Category:           engine.CategorySIL,
			PriceWeekday:       d("65.47"),
			PriceSaturday:      d("91.66"),
			PriceSunday:        d("117.85"),
			PricePublicHoliday: d("144.04"),
			PriceEvening:       d("72.13"),
		},
		{
			Code:               "SIL_SLEEPOVER",
			Description:        "Sleepover allowance",
			Unit:               engine.UnitPerOccurrence,
			Category:           engine.CategorySIL,
			PriceWeekday:       d("62.47"),
			PriceSaturday:      d("62.47"),
			PriceSunday:        d("62.47"),
			PricePublicHoliday: d("62.47"),
		},
		{
			Code:               "CA_STD",
			Description:        "Community access",
			Unit:               engine.UnitPerHour,
			Category:           engine.CategoryCommunityAccess,
			PriceWeekday:       d("67.56"),
			PriceSaturday:      d("94.59"),
			PriceSunday:        d("121.61"),
			PricePublicHoliday: d("148.63"),
		},
		{
			Code:          "TRANS_STD",
			Description:   "Transport assistance",
			Unit:          engine.UnitPerHour,
			Category:      engine.CategoryTransport,
			PriceWeekday:  d("58.26"),
			PriceSaturday: d("81.56"),
		},
	})
}

func testCalendar() engine.HolidayCalendar {
	return engine.NewHolidayCalendar([]engine.Holiday{
		{Date: time.Date(2025, time.April, 25, 0, 0, 0, 0, time.UTC), Name: "Anzac Day"},
	})
}

func testEngine() *engine.Engine {
	return engine.New(testTable(), testCalendar())
}

func date(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// DURATION
// =============================================================================

func TestComputeDuration(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		want       string
	}{
		{"plain morning block", "08:00", "12:00", "4"},
		{"half hour", "09:00", "09:30", "0.5"},
		{"crosses midnight", "22:00", "02:00", "4"},
		{"rounds to 2dp", "09:00", "09:50", "0.83"},
		{"equal times mean a full day", "08:00", "08:00", "24"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := engine.ComputeDuration(tc.start, tc.end)
			require.NoError(t, err)
			assert.True(t, got.Equal(d(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestComputeDuration_RejectsMalformedClock(t *testing.T) {
	_, err := engine.ComputeDuration("8am", "12:00")
	assert.ErrorIs(t, err, engine.ErrInvalidTimeRange)

	_, err = engine.ComputeDuration("08:00", "24:30")
	assert.ErrorIs(t, err, engine.ErrInvalidTimeRange)
}

// =============================================================================
// SUPPORT RATIO
// =============================================================================

func TestParseSupportRatio(t *testing.T) {
	cases := []struct {
		ratio string
		want  int64
	}{
		{"1:1", 1},
		{"1:2", 2},
		{"2:3", 3},
		{"", 1},       // absent
		{"banana", 1}, // malformed
		{"1:0", 1},    // zero participants is data entry noise
		{"1:-2", 1},   // negative likewise
		{"1 : 2", 2},  // whitespace tolerated
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, engine.ParseSupportRatio(tc.ratio), "ratio %q", tc.ratio)
	}
}

// =============================================================================
// COST
// =============================================================================

func TestComputeCost_SharedSupportSplitsTheRate(t *testing.T) {
	// GIVEN: A 4h weekday shift on a 1:2 ratio
	// WHEN: Pricing against the standard SIL rate
	// THEN: The hourly cost is halved before rounding: 65.47*4/2 = 130.94

	item, ok := testTable().Lookup("SIL_STD")
	require.True(t, ok)

	got := engine.ComputeCost(item, engine.DayWeekday, engine.TimeDay, d("4"), "1:2")
	assert.Equal(t, "130.94", got.StringFixed(2))
}

func TestComputeCost_PerOccurrenceIgnoresHours(t *testing.T) {
	// GIVEN: A sleepover allowance billed per occurrence
	// WHEN: Pricing it at wildly different durations
	// THEN: The cost is the flat allowance either way

	item, ok := testTable().Lookup("SIL_SLEEPOVER")
	require.True(t, ok)

	short := engine.ComputeCost(item, engine.DayWeekday, engine.TimeOvernight, d("1"), "1:1")
	long := engine.ComputeCost(item, engine.DayWeekday, engine.TimeOvernight, d("10"), "1:1")

	assert.Equal(t, "62.47", short.StringFixed(2))
	assert.Equal(t, "62.47", long.StringFixed(2))
}

func TestComputeCost_EveningOverridesDayColumn(t *testing.T) {
	item, ok := testTable().Lookup("SIL_STD")
	require.True(t, ok)

	// Evening price applies even on a weekday.
	got := engine.ComputeCost(item, engine.DayWeekday, engine.TimeEvening, d("2"), "1:1")
	assert.Equal(t, "144.26", got.StringFixed(2)) // 72.13 * 2

	// No evening column on transport: falls back to the weekday rate.
	trans, ok := testTable().Lookup("TRANS_STD")
	require.True(t, ok)
	got = engine.ComputeCost(trans, engine.DaySaturday, engine.TimeEvening, d("2"), "1:1")
	assert.Equal(t, "116.52", got.StringFixed(2)) // 58.26 * 2
}

func TestPrice_UnknownCodeIsUnpricedNotAnError(t *testing.T) {
	// GIVEN: A line item code missing from the price list
	// WHEN: Pricing a shift against it
	// THEN: The result is a zero-amount Unpriced outcome with a reason,
	//       distinguishable from genuine zero spend

	got := testEngine().Price("NOPE_123", engine.DayWeekday, engine.TimeDay, d("4"), "1:1")

	assert.False(t, got.IsPriced())
	assert.True(t, got.Amount.IsZero())
	assert.Contains(t, got.Reason, "NOPE_123")
}

// =============================================================================
// RECALCULATION
// =============================================================================

func TestRecalculate_SaturdayDayShift(t *testing.T) {
	// GIVEN: A Saturday 08:00-12:00 SIL shift at 1:1
	// WHEN: Recalculating
	// THEN: 4 hours at the Saturday rate: 91.66 * 4 = 366.64

	s := engine.Shift{
		ID:           "s1",
		Date:         date(2025, time.March, 8), // Saturday
		StartTime:    "08:00",
		EndTime:      "12:00",
		LineItemCode: "SIL_STD",
		SupportRatio: "1:1",
		StaffName:    "Alex Chen",
	}

	require.NoError(t, testEngine().Recalculate(&s))

	assert.Equal(t, "4.00", s.Hours.StringFixed(2))
	assert.Equal(t, engine.DaySaturday, s.DayType)
	assert.Equal(t, engine.TimeDay, s.TimeOfDay)
	require.True(t, s.Cost.IsPriced())
	assert.Equal(t, "366.64", s.Cost.Amount.StringFixed(2))
	assert.Equal(t, date(2025, time.March, 3), s.WeekStart)
}

func TestRecalculate_MidnightCrossingIsOvernight(t *testing.T) {
	// GIVEN: A shift running 22:00-02:00
	// WHEN: Recalculating
	// THEN: Duration is 4h and the shift classifies overnight; the date's
	//       day type (here Friday, a weekday) still picks the rate column

	s := engine.Shift{
		ID:           "s1",
		Date:         date(2025, time.March, 7), // Friday
		StartTime:    "22:00",
		EndTime:      "02:00",
		LineItemCode: "SIL_STD",
		SupportRatio: "1:1",
		StaffName:    "Alex Chen",
	}

	require.NoError(t, testEngine().Recalculate(&s))

	assert.Equal(t, "4.00", s.Hours.StringFixed(2))
	assert.Equal(t, engine.DayWeekday, s.DayType)
	assert.Equal(t, engine.TimeOvernight, s.TimeOfDay)
	assert.Equal(t, "261.88", s.Cost.Amount.StringFixed(2)) // 65.47 * 4
}

func TestRecalculate_PublicHolidayRate(t *testing.T) {
	s := engine.Shift{
		ID:           "s1",
		Date:         date(2025, time.April, 25), // Anzac Day
		StartTime:    "09:00",
		EndTime:      "13:00",
		LineItemCode: "SIL_STD",
		SupportRatio: "1:1",
		StaffName:    "Alex Chen",
	}

	require.NoError(t, testEngine().Recalculate(&s))

	assert.Equal(t, engine.DayPublicHoliday, s.DayType)
	assert.Equal(t, "576.16", s.Cost.Amount.StringFixed(2)) // 144.04 * 4
}

func TestRecalculate_RejectsBadInput(t *testing.T) {
	eng := testEngine()

	s := engine.Shift{StartTime: "08:00", EndTime: "12:00", LineItemCode: "SIL_STD"}
	assert.ErrorIs(t, eng.Recalculate(&s), engine.ErrInvalidInput, "zero date")

	s = engine.Shift{Date: date(2025, time.March, 8), StartTime: "8am", EndTime: "12:00"}
	assert.ErrorIs(t, eng.Recalculate(&s), engine.ErrInvalidTimeRange, "bad clock")
}

func TestRecalculate_ClearsStaleFlags(t *testing.T) {
	s := engine.Shift{
		ID:           "s1",
		Date:         date(2025, time.March, 8),
		StartTime:    "08:00",
		EndTime:      "12:00",
		LineItemCode: "SIL_STD",
		StaffName:    "Alex Chen",
		Flags:        []engine.FlagCode{engine.FlagShortShift},
	}

	require.NoError(t, testEngine().Recalculate(&s))
	assert.Empty(t, s.Flags)
}

// =============================================================================
// BATCH CALCULATION
// =============================================================================

func TestCalculateAll_OneBadShiftNeverSinksTheBatch(t *testing.T) {
	// GIVEN: A batch where the middle shift has an unparseable start time
	// WHEN: Calculating the batch
	// THEN: The good shifts are priced, the bad one surfaces as a per-item
	//       error with its index, and totals cover only the computed set

	shifts := []engine.Shift{
		{ID: "a", Date: date(2025, time.March, 3), StartTime: "09:00", EndTime: "13:00", LineItemCode: "SIL_STD", StaffName: "Alex Chen"},
		{ID: "b", Date: date(2025, time.March, 3), StartTime: "nope", EndTime: "13:00", LineItemCode: "SIL_STD", StaffName: "Alex Chen"},
		{ID: "c", Date: date(2025, time.March, 4), StartTime: "09:00", EndTime: "13:00", LineItemCode: "CA_STD", StaffName: "Alex Chen"},
	}

	result := testEngine().CalculateAll(shifts)

	require.Len(t, result.Shifts, 2)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, "b", result.Errors[0].ShiftID)

	assert.Equal(t, "261.88", result.Totals.SIL.StringFixed(2))             // 65.47 * 4
	assert.Equal(t, "270.24", result.Totals.CommunityAccess.StringFixed(2)) // 67.56 * 4
	assert.Equal(t, "532.12", result.Totals.Grand.StringFixed(2))
}

func TestCalculateAll_AttachesComplianceFlags(t *testing.T) {
	// GIVEN: A batch containing a 1.5h shift
	// WHEN: Calculating the batch
	// THEN: The short shift carries SHORT_SHIFT both in the flat flag list
	//       and attached on the shift itself

	shifts := []engine.Shift{
		{ID: "a", Date: date(2025, time.March, 3), StartTime: "09:00", EndTime: "10:30", LineItemCode: "SIL_STD", StaffName: "Alex Chen"},
	}

	result := testEngine().CalculateAll(shifts)

	require.Len(t, result.Flags, 1)
	assert.Equal(t, engine.FlagShortShift, result.Flags[0].Code)
	assert.Equal(t, "a", result.Flags[0].ShiftID)
	assert.Equal(t, []engine.FlagCode{engine.FlagShortShift}, result.Shifts[0].Flags)
}

func TestCalculateAll_Deterministic(t *testing.T) {
	shifts := []engine.Shift{
		{ID: "a", Date: date(2025, time.March, 3), StartTime: "07:00", EndTime: "15:00", LineItemCode: "SIL_STD", StaffName: "Alex Chen"},
		{ID: "b", Date: date(2025, time.March, 3), StartTime: "15:30", EndTime: "22:30", LineItemCode: "SIL_STD", StaffName: "Alex Chen"},
		{ID: "c", Date: date(2025, time.March, 4), StartTime: "09:00", EndTime: "10:00", LineItemCode: "CA_STD", StaffName: "Bo Nguyen"},
	}

	eng := testEngine()
	first := eng.CalculateAll(shifts)
	second := eng.CalculateAll(shifts)

	assert.Equal(t, first, second)
}
