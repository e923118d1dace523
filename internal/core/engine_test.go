package core

import (
	"reflect"
	"testing"
)

func sampleRecords() []AttendanceRecord {
	return []AttendanceRecord{
		{
			Employee:             "A",
			Date:                 "01.03.2025",
			FirstIn:              "09:00",
			LastOut:              "18:00",
			NetSeconds:           28800,
			NetMinusLunchSeconds: 30600,
			NetMinusSmokeSeconds: 32400,
			Breaks: []BreakInterval{
				{Kind: BreakLunch, ExitTime: "12:00", ReturnTime: "12:30", DurationSeconds: 1800},
			},
		},
		{
			Employee:   "B",
			Date:       "01.03.2025",
			FirstIn:    "10:00",
			LastOut:    "14:00",
			NetSeconds: 14400,
		},
		{
			Employee:   "A",
			Date:       "03.03.2025",
			FirstIn:    "09:10",
			LastOut:    "13:10",
			NetSeconds: 14400,
		},
	}
}

func TestFilterSubset(t *testing.T) {
	records := sampleRecords()
	cases := []FilterSelection{
		DefaultFilter(),
		{Employee: "A", Month: FilterAll, Week: FilterAll},
		{Employee: FilterAll, Month: "03.2025", Week: FilterAll},
		{Employee: FilterAll, Month: FilterAll, Week: "2025-W09"},
		{Employee: "A", Month: "03.2025", Week: FilterAll, Date: "01.03.2025"},
		{Employee: "нет такого", Month: FilterAll, Week: FilterAll},
	}
	for i, f := range cases {
		got := Filter(records, f)
		if len(got) > len(records) {
			t.Fatalf("case %d: filter grew the set: %d > %d", i, len(got), len(records))
		}
		for _, r := range got {
			if !f.AllEmployees() && r.Employee != f.Employee {
				t.Fatalf("case %d: employee leak: %+v", i, r)
			}
		}
	}

	// A more specific sub-filter never increases the result count.
	base := FilterSelection{Employee: "A", Month: FilterAll, Week: FilterAll}
	narrowed := base
	narrowed.Date = "01.03.2025"
	if len(Filter(records, narrowed)) > len(Filter(records, base)) {
		t.Fatalf("narrowing by date increased the result count")
	}

	// An unmatched combination is empty, not an error.
	if got := Filter(records, FilterSelection{Employee: "B", Month: FilterAll, Week: FilterAll, Date: "03.03.2025"}); len(got) != 0 {
		t.Fatalf("expected empty set, got %d records", len(got))
	}
}

func TestGroupByDateComplete(t *testing.T) {
	records := sampleRecords()
	groups := GroupByDate(records)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Date != "01.03.2025" || groups[1].Date != "03.03.2025" {
		t.Fatalf("unexpected order: %q, %q", groups[0].Date, groups[1].Date)
	}
	total := 0
	for _, g := range groups {
		total += len(g.Records)
	}
	if total != len(records) {
		t.Fatalf("grouping dropped or duplicated records: %d != %d", total, len(records))
	}
	if groups[0].Hours != 12 {
		t.Fatalf("01.03 hours = %v, want 12", groups[0].Hours)
	}
}

func TestGroupByDateLexicographicOrder(t *testing.T) {
	// DD.MM.YYYY keys sort as plain strings: day digits win over months,
	// so January 5 2026 sorts before December 20 2025.
	records := []AttendanceRecord{
		{Employee: "A", Date: "20.12.2025", NetSeconds: 3600},
		{Employee: "A", Date: "05.01.2026", NetSeconds: 3600},
	}
	groups := GroupByDate(records)
	if groups[0].Date != "05.01.2026" || groups[1].Date != "20.12.2025" {
		t.Fatalf("unexpected order: %q before %q", groups[0].Date, groups[1].Date)
	}
}

func TestComputeViewAllEmployees(t *testing.T) {
	records := sampleRecords()[:2] // both on 01.03.2025
	res := ComputeView(records, DefaultFilter())

	if len(res.Days) != 1 || res.Days[0].Hours != 12 {
		t.Fatalf("unexpected day groups: %+v", res.Days)
	}
	if res.Summary.TotalHours != 12 || res.Summary.WorkDays != 1 {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
	if res.Summary.TopEmployee != "A (8 ч)" {
		t.Fatalf("top employee = %q", res.Summary.TopEmployee)
	}
	if res.Breaks != nil {
		t.Fatalf("break listing must be hidden for all employees")
	}
	if len(res.Rows) != 1 {
		t.Fatalf("expected one table row, got %d", len(res.Rows))
	}
	row := res.Rows[0]
	if row.Employee != "Все сотрудники" || row.FirstIn != "-" || row.LastOut != "-" {
		t.Fatalf("aggregate row should blank the clock times: %+v", row)
	}
	if row.NetHours != "12 ч" {
		t.Fatalf("aggregate net hours = %q", row.NetHours)
	}
	if res.EmployeeCount != 2 {
		t.Fatalf("employee count = %d", res.EmployeeCount)
	}
}

func TestComputeViewSingleEmployee(t *testing.T) {
	records := sampleRecords()
	res := ComputeView(records, FilterSelection{Employee: "A", Month: FilterAll, Week: FilterAll})

	if len(res.Rows) != 2 {
		t.Fatalf("expected two rows for A, got %d", len(res.Rows))
	}
	row := res.Rows[0]
	if row.FirstIn != "09:00" || row.LastOut != "18:00" {
		t.Fatalf("single-employee row must show the record's times: %+v", row)
	}
	if row.Breaks != "🍽️ 12:00-12:30" {
		t.Fatalf("break summary = %q", row.Breaks)
	}

	if len(res.Breaks) != 1 {
		t.Fatalf("expected one break row, got %d", len(res.Breaks))
	}
	br := res.Breaks[0]
	want := BreakRow{
		Employee:   "A",
		Date:       "01.03.2025",
		Kind:       BreakLunch,
		ExitTime:   "12:00",
		ReturnTime: "12:30",
		Duration:   "30м",
	}
	if !reflect.DeepEqual(br, want) {
		t.Fatalf("break row = %+v, want %+v", br, want)
	}
}

func TestSummaryConsistency(t *testing.T) {
	records := sampleRecords()
	res := ComputeView(records, DefaultFilter())

	var wantSec int
	for _, r := range records {
		wantSec += r.NetSeconds
	}
	if res.Summary.TotalHours != float64(wantSec)/3600 {
		t.Fatalf("total hours %v != sum of net seconds %v", res.Summary.TotalHours, float64(wantSec)/3600)
	}
	if res.Summary.NetWorkHours != res.Summary.TotalHours {
		t.Fatalf("net work hours %v != total hours %v", res.Summary.NetWorkHours, res.Summary.TotalHours)
	}
}

func TestSummaryEmptySelection(t *testing.T) {
	res := ComputeView(sampleRecords(), FilterSelection{Employee: "нет", Month: FilterAll, Week: FilterAll})
	s := res.Summary
	if s.TotalHours != 0 || s.AvgPerDay != 0 || s.MaxPerDay != 0 || s.WorkDays != 0 {
		t.Fatalf("empty selection summary not zeroed: %+v", s)
	}
	if s.TopEmployee != "—" {
		t.Fatalf("empty selection leader = %q", s.TopEmployee)
	}
}

func TestTopEmployeeTieBreak(t *testing.T) {
	records := []AttendanceRecord{
		{Employee: "Первый", Date: "01.03.2025", NetSeconds: 7200},
		{Employee: "Второй", Date: "01.03.2025", NetSeconds: 7200},
	}
	res := ComputeView(records, DefaultFilter())
	if res.Summary.TopEmployee != "Первый (2 ч)" {
		t.Fatalf("tie must keep the first-encountered employee, got %q", res.Summary.TopEmployee)
	}
}

func TestTopEmployeeZeroHours(t *testing.T) {
	records := []AttendanceRecord{{Employee: "A", Date: "01.03.2025", NetSeconds: 0}}
	res := ComputeView(records, DefaultFilter())
	if res.Summary.TopEmployee != "—" {
		t.Fatalf("zero-hour maximum must report no leader, got %q", res.Summary.TopEmployee)
	}
}

func TestCalendarIgnoresMonthFilter(t *testing.T) {
	records := []AttendanceRecord{
		{Employee: "A", Date: "01.12.2025", NetSeconds: 28800},
		{Employee: "A", Date: "15.01.2026", NetSeconds: 14400},
	}
	// Month pinned to December; the calendar still shows the full month and
	// the lookup still sums records from it.
	res := ComputeView(records, FilterSelection{Employee: "A", Month: "12.2025", Week: FilterAll})
	if res.Calendar.Key != "12.2025" {
		t.Fatalf("calendar month = %q", res.Calendar.Key)
	}
	if len(res.Calendar.Cells) != 31 {
		t.Fatalf("December must have 31 cells, got %d", len(res.Calendar.Cells))
	}
	if res.Calendar.Offset != 0 { // December 1 2025 is a Monday
		t.Fatalf("calendar offset = %d", res.Calendar.Offset)
	}
	if got := res.Calendar.Cells[0].Hours; got != 8 {
		t.Fatalf("cell 1 hours = %v, want 8", got)
	}
	if got := res.Calendar.Cells[0].Color; got != "rgb(34, 197, 94)" {
		t.Fatalf("cell 1 color = %q", got)
	}
}

func TestCalendarDefaultsToEarliestMonth(t *testing.T) {
	records := []AttendanceRecord{
		{Employee: "A", Date: "15.01.2026", NetSeconds: 3600},
		{Employee: "A", Date: "01.12.2025", NetSeconds: 3600},
	}
	res := ComputeView(records, DefaultFilter())
	if res.Calendar.Key != "12.2025" {
		t.Fatalf("default calendar month = %q, want chronologically earliest", res.Calendar.Key)
	}
}

func TestComputeViewDoesNotMutateInput(t *testing.T) {
	records := sampleRecords()
	before := make([]AttendanceRecord, len(records))
	copy(before, records)
	_ = ComputeView(records, FilterSelection{Employee: "A", Month: FilterAll, Week: FilterAll})
	if !reflect.DeepEqual(records, before) {
		t.Fatalf("input records were mutated")
	}
}

func TestBubbles(t *testing.T) {
	records := []AttendanceRecord{
		{Employee: "A", Date: "01.03.2025", NetSeconds: 14400},
		{Employee: "B", Date: "01.03.2025", NetSeconds: 28800},
		{Employee: "A", Date: "03.03.2025", NetSeconds: 7200},
	}
	bubbles := Bubbles(records)
	if len(bubbles) != 2 {
		t.Fatalf("expected 2 bubbles, got %d", len(bubbles))
	}
	if bubbles[0].Name != "B" || bubbles[0].Hours != 8 {
		t.Fatalf("bubbles must sort by hours descending: %+v", bubbles)
	}
	if bubbles[0].Ratio != 1 {
		t.Fatalf("busiest employee ratio = %v, want 1", bubbles[0].Ratio)
	}
	if bubbles[1].Ratio != 0.75 {
		t.Fatalf("second ratio = %v, want 0.75", bubbles[1].Ratio)
	}
	if bubbles[0].Color != "rgb(34, 197, 94)" {
		t.Fatalf("8h bubble color = %q", bubbles[0].Color)
	}
}

func TestOptions(t *testing.T) {
	opts := Options(sampleRecords())
	if !reflect.DeepEqual(opts.Employees, []string{"A", "B"}) {
		t.Fatalf("employees = %v", opts.Employees)
	}
	if !reflect.DeepEqual(opts.Months, []string{"03.2025"}) {
		t.Fatalf("months = %v", opts.Months)
	}
	if !reflect.DeepEqual(opts.Weeks, []string{"2025-W09", "2025-W10"}) {
		t.Fatalf("weeks = %v", opts.Weeks)
	}
}
