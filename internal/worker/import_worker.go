package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tabel/internal/amqp"
	"tabel/internal/records"
)

// ImportWorker refreshes the stored attendance record set from the upstream
// report source. Refreshes are triggered by AMQP messages, by the periodic
// schedule, or once at startup when the store is empty.
type ImportWorker struct {
	source   records.Source
	store    records.Store
	interval time.Duration
}

func NewImportWorker(source records.Source, store records.Store, interval time.Duration) *ImportWorker {
	return &ImportWorker{
		source:   source,
		store:    store,
		interval: interval,
	}
}

// Refresh loads the full record set from the source and swaps it into the
// store. A failed load leaves the stored data untouched.
func (w *ImportWorker) Refresh(ctx context.Context) error {
	start := time.Now()
	recs, err := w.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if err := w.store.ReplaceAll(ctx, recs); err != nil {
		return fmt.Errorf("store records: %w", err)
	}

	slog.InfoContext(ctx, "Attendance data refreshed",
		"count", len(recs),
		"elapsed", time.Since(start))
	return nil
}

// HandleRefreshMessage processes a single refresh request from AMQP.
func (w *ImportWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.RefreshMessage) error {
	slog.InfoContext(ctx, "Processing refresh message", "reason", msg.Reason)
	return w.Refresh(ctx)
}

// StartupCheck loads the report once if the store is empty. This recovers
// from a fresh database or a wiped volume without waiting for the first
// scheduled refresh.
func (w *ImportWorker) StartupCheck(ctx context.Context) error {
	n, err := w.storedCount(ctx)
	if err != nil {
		return fmt.Errorf("check stored records: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Store already populated, skipping startup load", "count", n)
		return nil
	}

	slog.InfoContext(ctx, "Store is empty, loading report on startup")
	return w.Refresh(ctx)
}

// Run refreshes on the configured interval until the context is done. A
// non-positive interval disables the schedule.
func (w *ImportWorker) Run(ctx context.Context) error {
	if w.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Periodic refresh enabled", "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				slog.ErrorContext(ctx, "Scheduled refresh failed", "error", err)
			}
		}
	}
}

func (w *ImportWorker) storedCount(ctx context.Context) (int, error) {
	// The SQLite store answers this with a cheap count query.
	if counter, ok := w.store.(interface {
		Count(ctx context.Context) (int, error)
	}); ok {
		return counter.Count(ctx)
	}
	recs, err := w.store.ListRecords(ctx)
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}
