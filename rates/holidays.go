package rates

import (
	"time"

	"github.com/warp/roster-engine/engine"
)

// DefaultHolidays returns the Australian national public holidays for the
// current price-guide year. State-specific days belong in a region file
// loaded via LoadHolidaysFile.
func DefaultHolidays() []engine.Holiday {
	return []engine.Holiday{
		{Date: date(2025, time.January, 1), Name: "New Year's Day"},
		{Date: date(2025, time.January, 27), Name: "Australia Day (observed)"},
		{Date: date(2025, time.April, 18), Name: "Good Friday"},
		{Date: date(2025, time.April, 19), Name: "Easter Saturday"},
		{Date: date(2025, time.April, 21), Name: "Easter Monday"},
		{Date: date(2025, time.April, 25), Name: "Anzac Day"},
		{Date: date(2025, time.June, 9), Name: "King's Birthday"},
		{Date: date(2025, time.December, 25), Name: "Christmas Day"},
		{Date: date(2025, time.December, 26), Name: "Boxing Day"},
	}
}

// DefaultCalendar builds a holiday calendar from the built-in list.
func DefaultCalendar() engine.HolidayCalendar {
	return engine.NewHolidayCalendar(DefaultHolidays())
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
