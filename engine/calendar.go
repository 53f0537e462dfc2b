/*
calendar.go - Day-type and time-of-day classification

PURPOSE:
  Pure calendar functions: classify a date against the holiday calendar,
  classify a time range into a rate bucket, parse wall-clock times, and
  compute the Monday week anchor used for weekly aggregation.

CLASSIFICATION RULES:
  Day type:    holiday > Sunday > Saturday > Weekday (exact-date holiday match)
  Time of day: Overnight if the shift touches [00:00, 06:00];
               Evening if it starts at or runs past 20:00; else Day.

HOUR TRUNCATION:
  Time-of-day classification operates on the HOUR component only - minutes
  are ignored for classification and used only for duration. A 19:45-20:15
  shift therefore classifies as Day (start hour 19, end hour 20). This
  matches the deployed billing behavior and is pinned by tests; changing it
  requires product sign-off.

SEE ALSO:
  - cost.go: Uses ParseClock for duration
  - compliance.go: Uses WeekStart for weekly totals
*/
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// ClassifyDayType classifies a calendar date for rate selection. An exact
// match in the holiday calendar wins over the weekday.
func ClassifyDayType(date time.Time, calendar HolidayCalendar) (DayType, error) {
	if date.IsZero() {
		return "", fmt.Errorf("classify day type: missing date: %w", ErrInvalidInput)
	}
	if calendar != nil && calendar.IsHoliday(date) {
		return DayPublicHoliday, nil
	}
	switch date.Weekday() {
	case time.Sunday:
		return DaySunday, nil
	case time.Saturday:
		return DaySaturday, nil
	default:
		return DayWeekday, nil
	}
}

// ClassifyTimeOfDay classifies a shift by its start and end hour (0..23).
// Overnight wins when the shift touches the small hours: start in [0,6) or
// end in (0,6]. Evening applies when the start hour is 20 or later, or the
// end hour is past 20.
func ClassifyTimeOfDay(startHour, endHour int) TimeOfDay {
	if (startHour >= 0 && startHour < 6) || (endHour > 0 && endHour <= 6) {
		return TimeOvernight
	}
	if startHour >= 20 || endHour > 20 {
		return TimeEvening
	}
	return TimeDay
}

// ParseClock parses "HH:MM" into minutes of day. Field names the source of
// a failure so batch callers can report which time was bad.
func ParseClock(field, value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, &InvalidTimeError{Field: field, Value: value}
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, &InvalidTimeError{Field: field, Value: value}
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, &InvalidTimeError{Field: field, Value: value}
	}
	return hour*60 + minute, nil
}

// WeekStart returns the Monday of the ISO week containing date. Sunday is
// the end of the preceding week.
func WeekStart(date time.Time) time.Time {
	d := DateOnly(date)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
