package google

import "testing"

func TestParseRow(t *testing.T) {
	cols := []string{
		"Иванов Иван", "01.03.2025", "09:00", "18:00",
		"28800", "30600.0", "32400",
		`[{"Тип":"Обед","Время выхода":"12:00","Время возвращения":"12:30","Длительность_сек":1800}]`,
	}
	rec, ok := parseRow(cols)
	if !ok {
		t.Fatal("row rejected")
	}
	if rec.Employee != "Иванов Иван" || rec.Date != "01.03.2025" {
		t.Fatalf("identity columns: %+v", rec)
	}
	if rec.NetSeconds != 28800 || rec.NetMinusLunchSeconds != 30600 || rec.NetMinusSmokeSeconds != 32400 {
		t.Fatalf("numeric columns: %+v", rec)
	}
	if len(rec.Breaks) != 1 || rec.Breaks[0].DurationSeconds != 1800 {
		t.Fatalf("breaks column: %+v", rec.Breaks)
	}
}

func TestParseRowShort(t *testing.T) {
	rec, ok := parseRow([]string{"Иванов", "01.03.2025"})
	if !ok {
		t.Fatal("two-column row should still parse")
	}
	if rec.NetSeconds != 0 || rec.Breaks != nil {
		t.Fatalf("missing columns must stay zeroed: %+v", rec)
	}
}

func TestParseRowRejected(t *testing.T) {
	for _, cols := range [][]string{
		nil,
		{"Иванов"},
		{"", "01.03.2025"},
		{"Иванов", ""},
	} {
		if _, ok := parseRow(cols); ok {
			t.Errorf("row %v should be rejected", cols)
		}
	}
}

func TestParseRowBadBreaksJSON(t *testing.T) {
	rec, ok := parseRow([]string{"Иванов", "01.03.2025", "", "", "3600", "", "", "{broken"})
	if !ok {
		t.Fatal("row rejected")
	}
	if rec.Breaks != nil {
		t.Fatalf("malformed breaks must be dropped, got %+v", rec.Breaks)
	}
}

func TestParseSeconds(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"28800", 28800},
		{"28800.0", 28800},
		{" 3600 ", 3600},
		{"abc", 0},
	}
	for _, tc := range cases {
		if got := parseSeconds(tc.in); got != tc.want {
			t.Errorf("parseSeconds(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
