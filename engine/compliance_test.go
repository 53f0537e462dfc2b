package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/roster-engine/engine"
)

// rostered builds a recalculated shift for compliance scenarios.
func rostered(t *testing.T, id, staff string, day time.Time, start, end string) engine.Shift {
	t.Helper()
	s := engine.Shift{
		ID:           id,
		Date:         day,
		StartTime:    start,
		EndTime:      end,
		LineItemCode: "SIL_STD",
		SupportRatio: "1:1",
		StaffName:    staff,
	}
	require.NoError(t, testEngine().Recalculate(&s))
	return s
}

func codesFor(flags []engine.ComplianceFlag, shiftID string) []engine.FlagCode {
	var codes []engine.FlagCode
	for _, f := range flags {
		if f.ShiftID == shiftID {
			codes = append(codes, f.Code)
		}
	}
	return codes
}

// =============================================================================
// SHORT SHIFT
// =============================================================================

func TestCheckCompliance_ShortShiftBoundary(t *testing.T) {
	// GIVEN: Shifts of 1.99h and exactly 2h
	// WHEN: Checking compliance
	// THEN: Only the sub-2h shift is flagged; 2h on the nose is fine

	monday := date(2025, time.March, 3)
	flags := engine.CheckCompliance([]engine.Shift{
		rostered(t, "short", "Alex Chen", monday, "09:00", "10:59"),
		rostered(t, "exact", "Bo Nguyen", monday, "09:00", "11:00"),
	})

	assert.Equal(t, []engine.FlagCode{engine.FlagShortShift}, codesFor(flags, "short"))
	assert.Empty(t, codesFor(flags, "exact"))
}

func TestCheckCompliance_ZeroHoursNotShort(t *testing.T) {
	// A zero-duration shift is a data-entry artifact, not a short shift.
	s := engine.Shift{ID: "z", Date: date(2025, time.March, 3), StaffName: "Alex Chen"}
	flags := engine.CheckCompliance([]engine.Shift{s})
	assert.Empty(t, flags)
}

// =============================================================================
// OVERTIME
// =============================================================================

func TestCheckCompliance_OvertimeBoundary(t *testing.T) {
	monday := date(2025, time.March, 3)

	// Exactly 7.6h (456 minutes): no overtime.
	flags := engine.CheckCompliance([]engine.Shift{
		rostered(t, "ok", "Alex Chen", monday, "08:00", "15:36"),
	})
	assert.Empty(t, flags)

	// One minute past ordinary hours: flagged.
	flags = engine.CheckCompliance([]engine.Shift{
		rostered(t, "ot", "Alex Chen", monday, "08:00", "15:37"),
	})
	assert.Equal(t, []engine.FlagCode{engine.FlagOvertime}, codesFor(flags, "ot"))
}

// =============================================================================
// DAILY HOURS AND BREAKS
// =============================================================================

func TestCheckCompliance_DailyLimitAndBreakGap(t *testing.T) {
	// GIVEN: One worker, one day: 4h + 4h + 3h with a 1h gap before the
	//        second shift and a 2h gap before the third
	// WHEN: Checking compliance
	// THEN: The third shift crosses the 10h daily limit; the first shift is
	//       flagged for the insufficient break before the second

	monday := date(2025, time.March, 3)
	flags := engine.CheckCompliance([]engine.Shift{
		rostered(t, "s1", "Alex Chen", monday, "07:00", "11:00"),
		rostered(t, "s2", "Alex Chen", monday, "12:00", "16:00"),
		rostered(t, "s3", "Alex Chen", monday, "18:00", "21:00"),
	})

	assert.Equal(t, []engine.FlagCode{engine.FlagInsufficientBreak}, codesFor(flags, "s1"))
	assert.Equal(t, []engine.FlagCode{engine.FlagInsufficientBreak}, codesFor(flags, "s2"))
	assert.Equal(t, []engine.FlagCode{engine.FlagMaxHoursDay}, codesFor(flags, "s3"))
}

func TestCheckCompliance_DailyLimitFlagsEverySubsequentShift(t *testing.T) {
	// Once the 10h daily total is crossed, the crossing shift and every
	// later same-day shift carry the flag.
	monday := date(2025, time.March, 3)
	flags := engine.CheckCompliance([]engine.Shift{
		rostered(t, "a", "Alex Chen", monday, "00:00", "06:00"),
		rostered(t, "b", "Alex Chen", monday, "16:00", "21:00"),
		rostered(t, "c", "Alex Chen", monday, "21:00", "23:00"),
	})

	assert.NotContains(t, codesFor(flags, "a"), engine.FlagMaxHoursDay)
	assert.Contains(t, codesFor(flags, "b"), engine.FlagMaxHoursDay)
	assert.Contains(t, codesFor(flags, "c"), engine.FlagMaxHoursDay)
}

func TestCheckCompliance_BreakRuleIgnoresOverlap(t *testing.T) {
	// GIVEN: Two same-day shifts that overlap (negative gap)
	// WHEN: Checking compliance
	// THEN: No INSUFFICIENT_BREAK is emitted; overlap is outside this rule

	monday := date(2025, time.March, 3)
	flags := engine.CheckCompliance([]engine.Shift{
		rostered(t, "a", "Alex Chen", monday, "09:00", "13:00"),
		rostered(t, "b", "Alex Chen", monday, "12:00", "16:00"),
	})

	for _, f := range flags {
		assert.NotEqual(t, engine.FlagInsufficientBreak, f.Code)
	}
}

func TestCheckCompliance_BreakRuleScopedToOneWorker(t *testing.T) {
	// Different workers back to back on the same day are not each other's
	// break problem.
	monday := date(2025, time.March, 3)
	flags := engine.CheckCompliance([]engine.Shift{
		rostered(t, "a", "Alex Chen", monday, "09:00", "13:00"),
		rostered(t, "b", "Bo Nguyen", monday, "13:00", "17:00"),
	})
	assert.Empty(t, flags)
}

func TestCheckCompliance_OrderIndependentWithinADay(t *testing.T) {
	// Input order must not matter: shifts are sorted per worker before the
	// chronological scan.
	monday := date(2025, time.March, 3)
	a := rostered(t, "s1", "Alex Chen", monday, "07:00", "11:00")
	b := rostered(t, "s2", "Alex Chen", monday, "12:00", "16:00")

	forward := engine.CheckCompliance([]engine.Shift{a, b})
	backward := engine.CheckCompliance([]engine.Shift{b, a})

	assert.Equal(t, forward, backward)
}

// =============================================================================
// WEEKLY HOURS
// =============================================================================

func TestCheckCompliance_WeeklyLimitFlagsOncePerWeek(t *testing.T) {
	// GIVEN: One worker doing 7h every day Monday through Saturday (42h)
	// WHEN: Checking compliance
	// THEN: Exactly one MAX_HOURS_WEEK flag, anchored to the week's Monday
	//       with no shift id

	monday := date(2025, time.March, 3)
	var shifts []engine.Shift
	for i := 0; i < 6; i++ {
		shifts = append(shifts, rostered(t, string(rune('a'+i)), "Alex Chen", monday.AddDate(0, 0, i), "09:00", "16:00"))
	}

	flags := engine.CheckCompliance(shifts)

	var weekly []engine.ComplianceFlag
	for _, f := range flags {
		if f.Code == engine.FlagMaxHoursWeek {
			weekly = append(weekly, f)
		}
	}
	require.Len(t, weekly, 1)
	assert.Empty(t, weekly[0].ShiftID)
	assert.Equal(t, monday, weekly[0].Date)
	assert.Equal(t, "Alex Chen", weekly[0].StaffName)
}

func TestCheckCompliance_WeeklyTotalsResetAtMonday(t *testing.T) {
	// GIVEN: 30h in the back half of one week and 30h in the front half of
	//        the next
	// WHEN: Checking compliance
	// THEN: Neither week crosses 38h, so no weekly flag

	var shifts []engine.Shift
	// Thu 2025-03-06 .. Sat 2025-03-08, then Mon 2025-03-10 .. Wed 2025-03-12.
	for i, day := range []time.Time{
		date(2025, time.March, 6), date(2025, time.March, 7), date(2025, time.March, 8),
		date(2025, time.March, 10), date(2025, time.March, 11), date(2025, time.March, 12),
	} {
		shifts = append(shifts, rostered(t, string(rune('a'+i)), "Alex Chen", day, "08:00", "18:00"))
	}

	flags := engine.CheckCompliance(shifts)
	for _, f := range flags {
		assert.NotEqual(t, engine.FlagMaxHoursWeek, f.Code)
	}
}

func TestCheckCompliance_WeeklyLimitPerWorker(t *testing.T) {
	// Two workers at 20h each in one week stay unflagged even though the
	// combined roster is over 38h.
	monday := date(2025, time.March, 3)
	var shifts []engine.Shift
	for i := 0; i < 4; i++ {
		day := monday.AddDate(0, 0, i)
		shifts = append(shifts,
			rostered(t, "a"+string(rune('0'+i)), "Alex Chen", day, "08:00", "13:00"),
			rostered(t, "b"+string(rune('0'+i)), "Bo Nguyen", day, "13:00", "18:00"),
		)
	}

	flags := engine.CheckCompliance(shifts)
	for _, f := range flags {
		assert.NotEqual(t, engine.FlagMaxHoursWeek, f.Code)
	}
}
