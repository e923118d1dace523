package core

import (
	"sort"
	"strings"
)

type (
	// DayGroup collects the filtered records sharing one calendar date.
	DayGroup struct {
		Date    string
		Records []AttendanceRecord
		Hours   float64 // sum of NetSeconds over Records, in hours
	}

	// Summary holds the aggregate cards shown above the table.
	Summary struct {
		TotalHours         float64
		AvgPerDay          float64
		MaxPerDay          float64
		WorkDays           int
		NetWorkHours       float64
		NetMinusLunchHours float64
		NetMinusSmokeHours float64
		// TopEmployee is a display label like "Иванов Иван (8 ч)",
		// or "—" when nobody in the selection worked any hours.
		TopEmployee string
	}

	// TableRow is one rendered line of the per-day table. When the filter
	// pins a single employee the row shows that employee's own times and a
	// break summary; under "all employees" first-in/last-out are not
	// meaningful and stay as dashes.
	TableRow struct {
		Employee   string
		Date       string
		FirstIn    string
		LastOut    string
		NetHours   string
		MinusLunch string
		MinusSmoke string
		Breaks     string
	}

	// BreakRow is one line of the break detail table.
	BreakRow struct {
		Employee   string
		Date       string
		Kind       string
		ExitTime   string
		ReturnTime string
		Duration   string
	}

	// CalendarCell is one day of the heatmap month.
	CalendarCell struct {
		Day     int
		Hours   float64
		Color   string
		Weekend bool
	}

	// CalendarMonth is the heatmap for one displayed month. Offset is the
	// number of leading blanks in a Monday-first grid.
	CalendarMonth struct {
		Key    string // MM.YYYY
		Offset int
		Cells  []CalendarCell
	}

	// ChartSeries feeds the per-day bar chart.
	ChartSeries struct {
		Labels []string
		Values []float64
	}

	// EmployeeBubble is one circle of the bubble view: an employee's total
	// hours over the whole record set, with the shared color ramp and a
	// size ratio against the busiest employee.
	EmployeeBubble struct {
		Name  string
		Hours float64
		Ratio float64
		Color string
	}

	// FilterOptions enumerates the distinct selector values present in a
	// record set, each list sorted.
	FilterOptions struct {
		Employees []string
		Months    []string
		Weeks     []string
	}

	// ViewResult is everything the presentation layer renders for one
	// filter selection. All slices are freshly allocated; the input record
	// set is never mutated.
	ViewResult struct {
		Filter        FilterSelection
		Days          []DayGroup
		Summary       Summary
		Rows          []TableRow
		Breaks        []BreakRow
		Calendar      CalendarMonth
		Chart         ChartSeries
		EmployeeCount int
	}
)

// Filter retains the records matching every active part of the selection.
// An unmatched combination yields an empty slice, never an error.
func Filter(records []AttendanceRecord, f FilterSelection) []AttendanceRecord {
	out := make([]AttendanceRecord, 0, len(records))
	for _, r := range records {
		if !f.AllEmployees() && r.Employee != f.Employee {
			continue
		}
		if f.Month != "" && f.Month != FilterAll && MonthKey(r.Date) != f.Month {
			continue
		}
		if f.Week != "" && f.Week != FilterAll && YearWeek(r.Date) != f.Week {
			continue
		}
		if f.Date != "" && r.Date != f.Date {
			continue
		}
		out = append(out, r)
	}
	return out
}

// GroupByDate builds one DayGroup per distinct date, ordered by the raw
// DD.MM.YYYY key. The ordering is lexicographic on purpose: saved views and
// chart labels follow the historical string sort, not chronology.
func GroupByDate(records []AttendanceRecord) []DayGroup {
	byDate := make(map[string]*DayGroup)
	order := make([]string, 0)
	for _, r := range records {
		g, ok := byDate[r.Date]
		if !ok {
			g = &DayGroup{Date: r.Date}
			byDate[r.Date] = g
			order = append(order, r.Date)
		}
		g.Records = append(g.Records, r)
	}
	groups := make([]DayGroup, 0, len(order))
	for _, key := range order {
		g := byDate[key]
		var totalSec int
		for _, r := range g.Records {
			totalSec += r.NetSeconds
		}
		g.Hours = float64(totalSec) / 3600
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return strings.Compare(groups[i].Date, groups[j].Date) < 0
	})
	return groups
}

// ComputeView runs the whole aggregation pipeline for one selection.
func ComputeView(records []AttendanceRecord, f FilterSelection) ViewResult {
	filtered := Filter(records, f)
	days := GroupByDate(filtered)

	res := ViewResult{
		Filter:        f,
		Days:          days,
		Summary:       summarize(days, filtered),
		Rows:          tableRows(days, f),
		Breaks:        breakRows(days, f),
		Calendar:      calendarMonth(records, f),
		Chart:         chartSeries(days),
		EmployeeCount: countEmployees(records),
	}
	return res
}

func summarize(days []DayGroup, filtered []AttendanceRecord) Summary {
	s := Summary{WorkDays: len(days), TopEmployee: "—"}
	for _, g := range days {
		s.TotalHours += g.Hours
		if g.Hours > s.MaxPerDay {
			s.MaxPerDay = g.Hours
		}
	}
	if len(days) > 0 {
		s.AvgPerDay = s.TotalHours / float64(len(days))
	}

	var netSec, lunchSec, smokeSec int
	for _, r := range filtered {
		netSec += r.NetSeconds
		lunchSec += r.NetMinusLunchSeconds
		smokeSec += r.NetMinusSmokeSeconds
	}
	s.NetWorkHours = float64(netSec) / 3600
	s.NetMinusLunchHours = float64(lunchSec) / 3600
	s.NetMinusSmokeHours = float64(smokeSec) / 3600

	// Leader by net hours within the selection; ties keep the employee
	// encountered first, and a zero-hour maximum reports no leader.
	totals := make(map[string]int)
	order := make([]string, 0)
	for _, r := range filtered {
		if _, ok := totals[r.Employee]; !ok {
			order = append(order, r.Employee)
		}
		totals[r.Employee] += r.NetSeconds
	}
	var topName string
	var topSec int
	for _, name := range order {
		if totals[name] > topSec {
			topSec = totals[name]
			topName = name
		}
	}
	if topSec > 0 {
		s.TopEmployee = topName + " (" + FormatHours(float64(topSec)/3600) + ")"
	}
	return s
}

func tableRows(days []DayGroup, f FilterSelection) []TableRow {
	rows := make([]TableRow, 0, len(days))
	single := !f.AllEmployees()
	for _, g := range days {
		row := TableRow{
			Employee: "Все сотрудники",
			Date:     g.Date,
			FirstIn:  "-",
			LastOut:  "-",
			Breaks:   "-",
		}
		if single {
			row.Employee = f.Employee
		}
		if single && len(g.Records) > 0 {
			// One record per employee per day, so the first is the only one.
			item := g.Records[0]
			if item.FirstIn != "" {
				row.FirstIn = item.FirstIn
			}
			if item.LastOut != "" {
				row.LastOut = item.LastOut
			}
			row.NetHours = FormatHours(float64(item.NetSeconds) / 3600)
			row.MinusLunch = FormatHours(float64(item.NetMinusLunchSeconds) / 3600)
			row.MinusSmoke = FormatHours(float64(item.NetMinusSmokeSeconds) / 3600)
			if len(item.Breaks) > 0 {
				row.Breaks = breakSummary(item.Breaks)
			}
		} else {
			var netSec, lunchSec, smokeSec int
			for _, r := range g.Records {
				netSec += r.NetSeconds
				lunchSec += r.NetMinusLunchSeconds
				smokeSec += r.NetMinusSmokeSeconds
			}
			row.NetHours = FormatHours(float64(netSec) / 3600)
			row.MinusLunch = FormatHours(float64(lunchSec) / 3600)
			row.MinusSmoke = FormatHours(float64(smokeSec) / 3600)
		}
		rows = append(rows, row)
	}
	return rows
}

func breakSummary(breaks []BreakInterval) string {
	parts := make([]string, 0, len(breaks))
	for _, b := range breaks {
		parts = append(parts, BreakIcon(b.Kind)+" "+b.ExitTime+"-"+b.ReturnTime)
	}
	return strings.Join(parts, ", ")
}

// breakRows flattens every break of the filtered records, records visited in
// day-group order. The listing only exists for a single-employee selection;
// "all employees" hides it entirely.
func breakRows(days []DayGroup, f FilterSelection) []BreakRow {
	if f.AllEmployees() {
		return nil
	}
	var rows []BreakRow
	for _, g := range days {
		for _, r := range g.Records {
			for _, b := range r.Breaks {
				rows = append(rows, BreakRow{
					Employee:   r.Employee,
					Date:       r.Date,
					Kind:       b.Kind,
					ExitTime:   b.ExitTime,
					ReturnTime: b.ReturnTime,
					Duration:   FormatBreakDuration(b.DurationSeconds),
				})
			}
		}
	}
	return rows
}

// calendarMonth builds the heatmap for the displayed month. The per-day
// lookup honors the employee and week filters but not the month filter, so
// the calendar always shows a full month while the other selectors narrow
// it. With no month selected, the earliest month in the record set is shown.
func calendarMonth(records []AttendanceRecord, f FilterSelection) CalendarMonth {
	month, year, ok := displayedMonth(records, f)
	if !ok {
		return CalendarMonth{}
	}

	lookup := f
	lookup.Month = FilterAll
	lookup.Date = ""
	scoped := Filter(records, lookup)

	secondsByDate := make(map[string]int)
	for _, r := range scoped {
		secondsByDate[r.Date] += r.NetSeconds
	}

	key := monthYearKey(month, year)
	cm := CalendarMonth{
		Key:    key,
		Offset: FirstWeekdayOffset(month, year),
	}
	for day := 1; day <= DaysInMonth(month, year); day++ {
		date := dateKey(day, month, year)
		hours := float64(secondsByDate[date]) / 3600
		cm.Cells = append(cm.Cells, CalendarCell{
			Day:     day,
			Hours:   hours,
			Color:   HoursColor(hours),
			Weekend: IsWeekend(day, month, year),
		})
	}
	return cm
}

func displayedMonth(records []AttendanceRecord, f FilterSelection) (month, year int, ok bool) {
	if f.Month != "" && f.Month != FilterAll {
		if m, y, err := parseMonthKey(f.Month); err == nil {
			return m, y, true
		}
	}
	// Earliest month present, chronologically.
	found := false
	for _, r := range records {
		m, y, err := parseMonthKey(MonthKey(r.Date))
		if err != nil {
			continue
		}
		if !found || y < year || (y == year && m < month) {
			month, year = m, y
			found = true
		}
	}
	return month, year, found
}

func chartSeries(days []DayGroup) ChartSeries {
	cs := ChartSeries{
		Labels: make([]string, 0, len(days)),
		Values: make([]float64, 0, len(days)),
	}
	for _, g := range days {
		cs.Labels = append(cs.Labels, g.Date)
		cs.Values = append(cs.Values, g.Hours)
	}
	return cs
}

func countEmployees(records []AttendanceRecord) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.Employee] = struct{}{}
	}
	return len(seen)
}

// Bubbles aggregates the whole record set per employee for the bubble view,
// sorted by hours descending.
func Bubbles(records []AttendanceRecord) []EmployeeBubble {
	totals := make(map[string]int)
	order := make([]string, 0)
	for _, r := range records {
		if r.Employee == "" {
			continue
		}
		if _, ok := totals[r.Employee]; !ok {
			order = append(order, r.Employee)
		}
		totals[r.Employee] += r.NetSeconds
	}
	bubbles := make([]EmployeeBubble, 0, len(order))
	var maxHours float64
	for _, name := range order {
		h := float64(totals[name]) / 3600
		if h > maxHours {
			maxHours = h
		}
		bubbles = append(bubbles, EmployeeBubble{Name: name, Hours: h, Color: HoursColor(h)})
	}
	sort.SliceStable(bubbles, func(i, j int) bool {
		return bubbles[i].Hours > bubbles[j].Hours
	})
	for i := range bubbles {
		if maxHours > 0 {
			bubbles[i].Ratio = bubbles[i].Hours / maxHours
		}
	}
	return bubbles
}

// Options enumerates the distinct selector values present in the record set.
func Options(records []AttendanceRecord) FilterOptions {
	employees := make(map[string]struct{})
	months := make(map[string]struct{})
	weeks := make(map[string]struct{})
	for _, r := range records {
		employees[r.Employee] = struct{}{}
		if k := MonthKey(r.Date); k != "" {
			months[k] = struct{}{}
		}
		if w := YearWeek(r.Date); w != "" {
			weeks[w] = struct{}{}
		}
	}
	return FilterOptions{
		Employees: sortedKeys(employees),
		Months:    sortedKeys(months),
		Weeks:     sortedKeys(weeks),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
