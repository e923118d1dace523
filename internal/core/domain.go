package core

import (
	"errors"
	"strings"
)

// Break kinds as delivered by the upstream report generator.
const (
	BreakLunch = "Обед"
	BreakSmoke = "Перекур"
)

// FilterAll is the sentinel selector value meaning "no restriction".
const FilterAll = "ALL"

type (
	// BreakInterval is a single exit/return pair within one working day.
	// Field names on the wire are fixed by the existing report contract.
	BreakInterval struct {
		Kind            string `json:"Тип"`
		ExitTime        string `json:"Время выхода"`
		ReturnTime      string `json:"Время возвращения"`
		DurationSeconds int    `json:"Длительность_сек"`
	}

	// AttendanceRecord is one employee's pre-computed summary for one day.
	// Records are produced by an external batch process and are read-only
	// here; absent numeric fields decode as 0 and an absent break list as
	// empty, which is valid input.
	AttendanceRecord struct {
		Employee             string          `json:"Сотрудник"`
		Date                 string          `json:"Дата"`
		FirstIn              string          `json:"Первый вход"`
		LastOut              string          `json:"Последний выход"`
		NetSeconds           int             `json:"net_seconds"`
		NetMinusLunchSeconds int             `json:"net_minus_lunch_seconds"`
		NetMinusSmokeSeconds int             `json:"net_minus_smoke_seconds"`
		Breaks               []BreakInterval `json:"breaks,omitempty"`
	}

	// FilterSelection narrows the record set before aggregation. Employee,
	// Month and Week use FilterAll for "everything"; Date is an optional
	// exact DD.MM.YYYY override and is empty when unused.
	FilterSelection struct {
		Employee string
		Month    string // MM.YYYY
		Week     string // YYYY-Www
		Date     string // DD.MM.YYYY
	}
)

var (
	ErrEmptyEmployee = errors.New("empty employee name")
	ErrInvalidDate   = errors.New("invalid date, want DD.MM.YYYY")
	ErrNegativeTime  = errors.New("negative seconds value")
)

// DefaultFilter selects the whole record set.
func DefaultFilter() FilterSelection {
	return FilterSelection{Employee: FilterAll, Month: FilterAll, Week: FilterAll}
}

// AllEmployees reports whether the filter does not pin a single employee.
func (f FilterSelection) AllEmployees() bool {
	return f.Employee == "" || f.Employee == FilterAll
}

// Key returns a stable cache key for the selection.
func (f FilterSelection) Key() string {
	return strings.Join([]string{f.Employee, f.Month, f.Week, f.Date}, "|")
}

func (r AttendanceRecord) Validate() error {
	if strings.TrimSpace(r.Employee) == "" {
		return ErrEmptyEmployee
	}
	if _, _, _, err := parseDMY(r.Date); err != nil {
		return ErrInvalidDate
	}
	if r.NetSeconds < 0 || r.NetMinusLunchSeconds < 0 || r.NetMinusSmokeSeconds < 0 {
		return ErrNegativeTime
	}
	for _, b := range r.Breaks {
		if b.DurationSeconds < 0 {
			return ErrNegativeTime
		}
	}
	return nil
}
