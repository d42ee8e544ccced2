package utils

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

const MonthLayout = "2006-01"

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Month is a calendar month, rendered as YYYY-MM.
type Month struct {
	Year  int
	Month time.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Start is the first instant of the month in loc.
func (m Month) Start(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func IsValidMonthFormat(month string) bool {
	return monthPattern.MatchString(month)
}

func ParseMonth(month string) (Month, error) {
	if !IsValidMonthFormat(month) {
		return Month{}, NewValidationError("month", month, "expected format YYYY-MM")
	}
	year, _ := strconv.Atoi(month[:4])
	mon, _ := strconv.Atoi(month[5:])
	return Month{Year: year, Month: time.Month(mon)}, nil
}

// IsInMonth compares year and month in the date's own location. A nil date is never in a month.
func IsInMonth(date *time.Time, m Month) bool {
	if date == nil {
		return false
	}
	return date.Year() == m.Year && date.Month() == m.Month
}

// GetMonthRange returns the first and last instant (millisecond precision) of the month.
func GetMonthRange(m Month, loc *time.Location) (time.Time, time.Time) {
	start := m.Start(loc)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

// ShiftDate moves date into target keeping day, clock time and location.
// A day that does not exist in target rolls forward (Jan 31 -> Feb 31 -> Mar 3), same as time.Date.
func ShiftDate(date time.Time, source Month, target Month) time.Time {
	return time.Date(target.Year, target.Month, date.Day(),
		date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
}

// GetDateOffset is (b - a) in whole days, rounding half days up.
func GetDateOffset(a time.Time, b time.Time) int {
	ms := float64(b.Sub(a).Milliseconds())
	return int(math.Floor(ms/float64(24*time.Hour/time.Millisecond) + 0.5))
}

// AddDays adds calendar days; the wall-clock time is kept across DST changes.
func AddDays(date time.Time, days int) time.Time {
	return date.AddDate(0, 0, days)
}

// ShiftDateIfInMonth returns nil for nil, the same pointer when date is outside source,
// and a new shifted value otherwise.
func ShiftDateIfInMonth(date *time.Time, source Month, target Month) *time.Time {
	if date == nil {
		return nil
	}
	if !IsInMonth(date, source) {
		return date
	}
	shifted := ShiftDate(*date, source, target)
	return &shifted
}
