package worker

import (
	"context"
	"errors"
	"testing"

	"tabel/internal/amqp"
	"tabel/internal/core"
)

type fakeSource struct {
	recs  []core.AttendanceRecord
	err   error
	loads int
}

func (s *fakeSource) Load(ctx context.Context) ([]core.AttendanceRecord, error) {
	s.loads++
	return s.recs, s.err
}

type fakeStore struct {
	recs     []core.AttendanceRecord
	replaces int
	err      error
}

func (s *fakeStore) ReplaceAll(ctx context.Context, recs []core.AttendanceRecord) error {
	if s.err != nil {
		return s.err
	}
	s.recs = recs
	s.replaces++
	return nil
}

func (s *fakeStore) ListRecords(ctx context.Context) ([]core.AttendanceRecord, error) {
	return s.recs, nil
}

func TestRefresh(t *testing.T) {
	source := &fakeSource{recs: []core.AttendanceRecord{
		{Employee: "Иванов", Date: "01.03.2025", NetSeconds: 28800},
	}}
	store := &fakeStore{}
	w := NewImportWorker(source, store, 0)

	if err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if store.replaces != 1 || len(store.recs) != 1 {
		t.Fatalf("store not updated: %+v", store)
	}
}

func TestRefreshLoadFailureKeepsStore(t *testing.T) {
	store := &fakeStore{recs: []core.AttendanceRecord{{Employee: "Иванов", Date: "01.03.2025"}}}
	w := NewImportWorker(&fakeSource{err: errors.New("upstream down")}, store, 0)

	if err := w.Refresh(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if store.replaces != 0 || len(store.recs) != 1 {
		t.Fatalf("store must stay untouched on a failed load: %+v", store)
	}
}

func TestHandleRefreshMessage(t *testing.T) {
	source := &fakeSource{}
	store := &fakeStore{}
	w := NewImportWorker(source, store, 0)

	msg := amqp.NewRefreshMessage("manual")
	if err := w.HandleRefreshMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleRefreshMessage: %v", err)
	}
	if source.loads != 1 || store.replaces != 1 {
		t.Fatalf("message did not trigger a refresh: loads=%d replaces=%d", source.loads, store.replaces)
	}
}

func TestStartupCheckEmptyStore(t *testing.T) {
	source := &fakeSource{recs: []core.AttendanceRecord{{Employee: "Иванов", Date: "01.03.2025"}}}
	store := &fakeStore{}
	w := NewImportWorker(source, store, 0)

	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}
	if source.loads != 1 {
		t.Fatalf("empty store must trigger a load, got %d loads", source.loads)
	}
}

func TestStartupCheckPopulatedStore(t *testing.T) {
	source := &fakeSource{}
	store := &fakeStore{recs: []core.AttendanceRecord{{Employee: "Иванов", Date: "01.03.2025"}}}
	w := NewImportWorker(source, store, 0)

	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}
	if source.loads != 0 {
		t.Fatalf("populated store must skip the startup load, got %d loads", source.loads)
	}
}

type countingStore struct {
	fakeStore
	counts int
}

func (s *countingStore) Count(ctx context.Context) (int, error) {
	s.counts++
	return len(s.recs), nil
}

func TestStartupCheckPrefersCount(t *testing.T) {
	source := &fakeSource{}
	store := &countingStore{}
	store.recs = []core.AttendanceRecord{{Employee: "Иванов", Date: "01.03.2025"}}
	w := NewImportWorker(source, store, 0)

	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}
	if store.counts != 1 {
		t.Fatalf("Count was not used: %d calls", store.counts)
	}
}

func TestRunStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := NewImportWorker(&fakeSource{}, &fakeStore{}, 0)
	if err := w.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
}
