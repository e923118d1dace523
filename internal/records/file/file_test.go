package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work_summary.json")
	payload := `[
		{"Сотрудник":"Иванов","Дата":"01.03.2025","Первый вход":"09:00","Последний выход":"18:00","net_seconds":28800},
		{"Сотрудник":"Петров","Дата":"03.03.2025","net_seconds":14400}
	]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	recs, err := New(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[1].Employee != "Петров" || recs[1].Date != "03.03.2025" {
		t.Fatalf("unexpected record: %+v", recs[1])
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.json")).Load(context.Background())
	if err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "work_summary.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path).Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New("work_summary.json").Load(ctx); err == nil {
		t.Fatal("expected context error")
	}
}
