package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var errMalformedDate = errors.New("malformed DD.MM.YYYY date")

// parseDMY splits a DD.MM.YYYY string into its numeric parts.
func parseDMY(dateStr string) (day, month, year int, err error) {
	parts := strings.Split(dateStr, ".")
	if len(parts) != 3 {
		return 0, 0, 0, errMalformedDate
	}
	day, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, errMalformedDate
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, errMalformedDate
	}
	year, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, errMalformedDate
	}
	return day, month, year, nil
}

// YearWeek converts a DD.MM.YYYY date into a YYYY-Www label.
//
// The week number is days-since-January-1 plus January 1's Sunday-based
// weekday plus one, divided by seven and rounded up. This is NOT ISO-8601:
// boundary weeks never roll into the adjacent year. Saved week selections
// depend on these exact labels, so the formula must stay as is.
func YearWeek(dateStr string) string {
	day, month, year, err := parseDMY(dateStr)
	if err != nil {
		return ""
	}
	dt := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := dt.YearDay() - 1
	week := (days + int(jan1.Weekday()) + 1 + 6) / 7 // ceil((days+wd+1)/7)
	return fmt.Sprintf("%d-W%02d", year, week)
}

// MonthKey extracts the MM.YYYY part of a DD.MM.YYYY date.
func MonthKey(dateStr string) string {
	if len(dateStr) < 4 {
		return ""
	}
	return dateStr[3:]
}

// parseMonthKey splits an MM.YYYY key into its numeric parts.
func parseMonthKey(key string) (month, year int, err error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return 0, 0, errMalformedDate
	}
	month, err = strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errMalformedDate
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, errMalformedDate
	}
	return month, year, nil
}

func monthYearKey(month, year int) string {
	return fmt.Sprintf("%02d.%d", month, year)
}

func dateKey(day, month, year int) string {
	return fmt.Sprintf("%02d.%02d.%d", day, month, year)
}

// DaysInMonth returns the number of days in the given month (1-12).
func DaysInMonth(month, year int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekdayOffset returns the weekday of the first day of the month,
// Monday=0 through Sunday=6.
func FirstWeekdayOffset(month, year int) int {
	wd := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Weekday()
	return (int(wd) + 6) % 7
}

// IsWeekend reports whether the given day of the month falls on a
// Saturday or Sunday.
func IsWeekend(day, month, year int) bool {
	wd := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
