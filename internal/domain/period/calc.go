package period

import (
	"fmt"
	"time"
)

const (
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
)

// Info describes the pay period a check date falls into.
type Info struct {
	Number    int       `json:"number"`
	Label     string    `json:"label"`
	PeriodEnd time.Time `json:"periodEndDate"`
}

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}

// EndWeekday returns the weekday a period ends on for the configured start
// day: Monday-start weeks end Sunday, Sunday-start weeks end Saturday.
func EndWeekday(startDay time.Weekday) time.Weekday {
	return time.Weekday((int(startDay) + 6) % 7)
}

func periodLength(frequency string) int {
	if frequency == FrequencyBiweekly {
		return 14
	}
	return 7
}

// PreviousPeriodEnd returns the end date of the most recently completed pay
// period before checkDate. A check dated on the period-end weekday itself
// still steps back a full week: the in-progress period is never returned.
func PreviousPeriodEnd(checkDate time.Time, startDay time.Weekday, frequency string) time.Time {
	end := EndWeekday(startDay)
	back := (int(checkDate.Weekday()) - int(end) + 7) % 7
	if back == 0 {
		back = 7
	}
	result := checkDate.AddDate(0, 0, -back)
	if frequency == FrequencyBiweekly {
		result = result.AddDate(0, 0, -7)
	}
	return result
}

// WorkPeriodNumber computes the 1-based period index for checkDate, anchored
// to the first period boundary on or after January 1 of the period-end
// date's year. A nil result means the date was unparseable, which callers
// treat as "no period information", not an error.
func WorkPeriodNumber(checkDate string, startDay time.Weekday, frequency string) *Info {
	parsed, err := ParseDate(checkDate)
	if err != nil {
		return nil
	}

	endDay := EndWeekday(startDay)
	forward := (int(endDay) - int(parsed.Weekday()) + 7) % 7
	periodEnd := parsed.AddDate(0, 0, forward)

	// Anchoring on the first period-end weekday on or after January 1
	// keeps the first period of the year at index 1 even when the period
	// start would lag into the previous year.
	length := periodLength(frequency)
	anchor := firstPeriodEnd(periodEnd.Year(), endDay)
	days := daysBetween(anchor, periodEnd)
	number := days/length + 1
	if number < 1 {
		number = 1
	}

	return &Info{Number: number, Label: periodLabel(number, startDay, frequency), PeriodEnd: periodEnd}
}

// WorkWeekLabel renders the "W/E MM/DD/YYYY" label for the completed period
// a check compensates, under the given client configuration.
func WorkWeekLabel(checkDate time.Time, startDay time.Weekday, frequency string) string {
	end := PreviousPeriodEnd(checkDate, startDay, frequency)
	return "W/E " + end.Format("01/02/2006")
}

// WeekKey returns the ISO date of the Sunday beginning the calendar week
// containing date. Checks are grouped under this key regardless of any
// client's period configuration.
func WeekKey(date time.Time) string {
	sunday := date.AddDate(0, 0, -int(date.Weekday()))
	return sunday.Format("2006-01-02")
}

func periodLabel(number int, startDay time.Weekday, frequency string) string {
	switch {
	case frequency == FrequencyBiweekly:
		return fmt.Sprintf("Pay Period %d", number)
	case startDay == time.Sunday:
		return fmt.Sprintf("Pay Week %d", number)
	default:
		return fmt.Sprintf("Work Week %d", number)
	}
}

func firstPeriodEnd(year int, endDay time.Weekday) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(endDay) - int(jan1.Weekday()) + 7) % 7
	return jan1.AddDate(0, 0, offset)
}

func daysBetween(from, to time.Time) int {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
