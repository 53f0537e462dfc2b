/*
compliance.go - SCHADS award rule evaluation

PURPOSE:
  Evaluates a set of shifts for one scope (all shifts touching a reporting
  window, grouped by worker) against the award rule subset and emits
  structured flags. Deterministic and stateless per call; never mutates
  the input shifts.

RULES:
  SHORT_SHIFT         0 < hours < 2 (zero/absent duration is a data-entry
                      artifact, not flagged)
  MAX_HOURS_DAY       worker's same-day running total > 10h; attaches to
                      the shift crossing the threshold and every subsequent
                      same-day shift
  OVERTIME            single shift > 7.6h (SCHADS ordinary hours), checked
                      independently of daily/weekly totals
  MAX_HOURS_WEEK      worker's running total within one week > 38h; one
                      flag per worker+week, ShiftID empty
  INSUFFICIENT_BREAK  same-day consecutive shifts with a gap of [0, 10h);
                      flags the earlier shift

  A negative gap (overlapping shifts) is not evaluated by
  INSUFFICIENT_BREAK. Overlap detection is a known gap in the rule set.

ORDERING:
  Shifts are processed per worker in ascending date/start-time order; ties
  keep input order. Flag emission order is therefore reproducible.

SEE ALSO:
  - cost.go: CalculateAll runs this over each batch
  - report.go: BuildReport runs this for the flag frequency table
*/
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Award rule thresholds.
var (
	minShiftHours   = decimal.NewFromInt(2)
	maxDailyHours   = decimal.NewFromInt(10)
	maxWeeklyHours  = decimal.NewFromInt(38)
	ordinaryHours   = decimal.RequireFromString("7.6")
	minBreakMinutes = 10 * 60
)

// CheckCompliance evaluates award rules over one scope of shifts and
// returns a flat flag list. Workers are visited in first-appearance order.
//
// Shift-level flags carry the shift's ID; only week-scoped flags leave
// ShiftID empty. Assign ids before calling, or a flag on an id-less shift
// is indistinguishable from a week-scoped one in the flat list.
func CheckCompliance(shifts []Shift) []ComplianceFlag {
	byWorker := make(map[string][]Shift)
	var workers []string
	for _, s := range shifts {
		if _, seen := byWorker[s.StaffName]; !seen {
			workers = append(workers, s.StaffName)
		}
		byWorker[s.StaffName] = append(byWorker[s.StaffName], s)
	}

	var flags []ComplianceFlag
	for _, w := range workers {
		flags = append(flags, checkWorker(byWorker[w])...)
	}
	return flags
}

// checkWorker evaluates one worker's shifts in chronological order.
func checkWorker(shifts []Shift) []ComplianceFlag {
	ordered := make([]Shift, len(shifts))
	copy(ordered, shifts)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := DateOnly(ordered[i].Date), DateOnly(ordered[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return startMinutes(ordered[i]) < startMinutes(ordered[j])
	})

	var flags []ComplianceFlag
	dayTotals := make(map[time.Time]decimal.Decimal)
	weekTotals := make(map[time.Time]decimal.Decimal)
	weekFlagged := make(map[time.Time]bool)

	var prev *Shift
	for i := range ordered {
		s := ordered[i]
		date := DateOnly(s.Date)

		if s.Hours.IsPositive() && s.Hours.LessThan(minShiftHours) {
			flags = append(flags, flagFor(s, FlagShortShift))
		}
		if s.Hours.GreaterThan(ordinaryHours) {
			flags = append(flags, flagFor(s, FlagOvertime))
		}

		dayTotals[date] = dayTotals[date].Add(s.Hours)
		if dayTotals[date].GreaterThan(maxDailyHours) {
			flags = append(flags, flagFor(s, FlagMaxHoursDay))
		}

		// Break check against the previous shift on the same day. An
		// overlapping (negative) gap is out of scope for this rule.
		if prev != nil && DateOnly(prev.Date).Equal(date) {
			gap := startMinutes(s) - endMinutes(*prev)
			if gap >= 0 && gap < minBreakMinutes {
				flags = append(flags, flagFor(*prev, FlagInsufficientBreak))
			}
		}

		week := s.WeekStart
		if week.IsZero() {
			week = WeekStart(s.Date)
		}
		weekTotals[week] = weekTotals[week].Add(s.Hours)
		if !weekFlagged[week] && weekTotals[week].GreaterThan(maxWeeklyHours) {
			weekFlagged[week] = true
			flags = append(flags, ComplianceFlag{Date: week, StaffName: s.StaffName, Code: FlagMaxHoursWeek})
		}

		prev = &ordered[i]
	}
	return flags
}

func flagFor(s Shift, code FlagCode) ComplianceFlag {
	return ComplianceFlag{ShiftID: s.ID, Date: DateOnly(s.Date), StaffName: s.StaffName, Code: code}
}

func startMinutes(s Shift) int {
	m, err := ParseClock("start_time", s.StartTime)
	if err != nil {
		return 0
	}
	return m
}

// endMinutes returns the end as minutes from the start of the shift's day,
// pushing past 1440 when the shift crosses midnight.
func endMinutes(s Shift) int {
	start := startMinutes(s)
	end, err := ParseClock("end_time", s.EndTime)
	if err != nil {
		return start
	}
	if end <= start {
		end += minutesPerDay
	}
	return end
}
