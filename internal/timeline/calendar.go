package timeline

import (
	"time"

	"equipment-status-backend/internal/holiday"
)

// DefaultDayStartHour is the hour at which a logical day begins. A
// 7 AM boundary keeps a night shift ending at 2 AM on the previous
// logical day.
const DefaultDayStartHour = 7

// DayClass classifies a calendar day for timeline shading.
type DayClass string

const (
	DayWeekday               DayClass = "weekday"
	DayWeekendRest           DayClass = "weekend-rest"
	DayPublicHolidayLowWage  DayClass = "public-holiday-low-wage"
	DayPublicHolidayHighWage DayClass = "public-holiday-high-wage"
	DayWorkdayOverride       DayClass = "workday-override"
)

// DayHeader is one column of the timeline view: the instant the logical
// day starts, plus its classification.
type DayHeader struct {
	Start time.Time `json:"start"`
	Class DayClass  `json:"class"`
	Name  string    `json:"name,omitempty"`
}

// Window produces the ordered day-start instants covering daysBefore
// days before and daysAfter days after the reference instant. Each
// entry falls on dayStartHour of its calendar day; a reference earlier
// than that hour belongs to the previous logical day.
func Window(ref time.Time, daysBefore, daysAfter, dayStartHour int) []time.Time {
	base := time.Date(ref.Year(), ref.Month(), ref.Day(), dayStartHour, 0, 0, 0, ref.Location())
	if ref.Hour() < dayStartHour {
		base = base.AddDate(0, 0, -1)
	}

	days := make([]time.Time, 0, daysBefore+daysAfter+1)
	for offset := -daysBefore; offset <= daysAfter; offset++ {
		days = append(days, base.AddDate(0, 0, offset))
	}
	return days
}

// ClassifyDay classifies one day-start instant against the holiday
// table, falling back to plain day-of-week when the table has no entry
// for that date. The table may be partial (a year failed to load);
// classification then degrades to the fallback rather than failing.
func ClassifyDay(day time.Time, table holiday.Table) DayHeader {
	header := DayHeader{Start: day}

	if detail, ok := table[day.Format("2006-01-02")]; ok {
		header.Name = detail.Name
		switch {
		case detail.Holiday && detail.Wage == 3:
			header.Class = DayPublicHolidayHighWage
		case detail.Holiday:
			header.Class = DayPublicHolidayLowWage
		default:
			header.Class = DayWorkdayOverride
		}
		return header
	}

	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		header.Class = DayWeekendRest
	default:
		header.Class = DayWeekday
	}
	return header
}

// ClassifyWindow classifies every day of a window.
func ClassifyWindow(days []time.Time, table holiday.Table) []DayHeader {
	headers := make([]DayHeader, len(days))
	for i, day := range days {
		headers[i] = ClassifyDay(day, table)
	}
	return headers
}
